package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/vaultshare/internal/domain"
	"github.com/mtlprog/vaultshare/internal/ledger"
	"github.com/mtlprog/vaultshare/internal/vault"
)

// ErrInvalidAddress indicates a vault or wallet address that is not a valid public key.
var ErrInvalidAddress = errors.New("invalid address")

// Ledger defines the ledger reads needed to value a position.
type Ledger interface {
	FetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error)
	FetchTokenSupply(ctx context.Context, mint solana.PublicKey) (ledger.TokenAmount, error)
	FetchMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	FetchTokenAccountBalance(ctx context.Context, account solana.PublicKey) (ledger.TokenAmount, error)
}

// Service values wallet positions in vaults.
type Service struct {
	ledger      Ledger
	pipeline    *vault.Pipeline
	concurrency int
}

// NewService creates a position Service. Concurrency bounds ValueMany; values below 1 mean 1.
func NewService(l Ledger, pipeline *vault.Pipeline, concurrency int) *Service {
	if pipeline == nil {
		pipeline = vault.NewPipeline()
	}
	return &Service{ledger: l, pipeline: pipeline, concurrency: max(concurrency, 1)}
}

// ParseKeys parses the vault and wallet addresses of a position.
func ParseKeys(p domain.TrackedPosition) (vaultKey, walletKey solana.PublicKey, err error) {
	vaultKey, err = solana.PublicKeyFromBase58(p.Vault)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("%w: vault %q: %v", ErrInvalidAddress, p.Vault, err)
	}
	walletKey, err = solana.PublicKeyFromBase58(p.Wallet)
	if err != nil {
		return solana.PublicKey{}, solana.PublicKey{}, fmt.Errorf("%w: wallet %q: %v", ErrInvalidAddress, p.Wallet, err)
	}
	return vaultKey, walletKey, nil
}

// Value computes the underlying-asset value of a wallet's LP balance in a vault.
func (s *Service) Value(ctx context.Context, p domain.TrackedPosition) (domain.PositionValuation, error) {
	vaultKey, walletKey, err := ParseKeys(p)
	if err != nil {
		return domain.PositionValuation{}, err
	}

	data, err := s.ledger.FetchAccountData(ctx, vaultKey)
	if err != nil {
		return domain.PositionValuation{}, fmt.Errorf("reading vault: %w", err)
	}
	state, err := vault.DecodeVaultState(data)
	if err != nil {
		return domain.PositionValuation{}, fmt.Errorf("vault %s: %w", p.Vault, err)
	}

	tokenAccount, err := ledger.AssociatedTokenAddress(walletKey, state.LPMint)
	if err != nil {
		return domain.PositionValuation{}, err
	}

	var supply, balance ledger.TokenAmount
	var tokenDecimals uint8
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		supply, err = s.ledger.FetchTokenSupply(gctx, state.LPMint)
		return err
	})
	g.Go(func() error {
		var err error
		tokenDecimals, err = s.ledger.FetchMintDecimals(gctx, state.TokenMint)
		return err
	})
	g.Go(func() error {
		var err error
		balance, err = s.ledger.FetchTokenAccountBalance(gctx, tokenAccount)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			slog.Info("wallet has no LP token account, treating balance as zero",
				"wallet", p.Wallet, "tokenAccount", tokenAccount.String())
			balance = ledger.TokenAmount{}
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.PositionValuation{}, fmt.Errorf("reading token amounts: %w", err)
	}

	result, err := s.pipeline.EvaluateState(state, supply.Amount, balance.Amount)
	if err != nil {
		return domain.PositionValuation{}, fmt.Errorf("valuing %s in vault %s: %w", p.Wallet, p.Vault, err)
	}
	for _, w := range result.Warnings {
		slog.Warn("valuation invariant warning",
			"vault", p.Vault, "wallet", p.Wallet, "warning", w,
			"userBalance", balance.Amount, "totalSupply", supply.Amount)
	}

	return domain.PositionValuation{
		Vault:              p.Vault,
		Wallet:             p.Wallet,
		Label:              p.Label,
		TokenAccount:       tokenAccount.String(),
		TokenMint:          state.TokenMint.String(),
		LPMint:             state.LPMint.String(),
		TotalAmount:        state.TotalAmount,
		LockedProfit:       result.LockedProfit,
		WithdrawableAmount: result.WithdrawableAmount,
		TotalSupply:        supply.Amount,
		UserBalance:        balance.Amount,
		UnderlyingShare:    result.UnderlyingShare,
		TokenDecimals:      tokenDecimals,
		LPDecimals:         supply.Decimals,
		WithdrawableUI:     domain.UIAmount(result.WithdrawableAmount, tokenDecimals),
		UnderlyingShareUI:  domain.UIAmount(result.UnderlyingShare, tokenDecimals),
		Warnings:           result.Warnings,
		ValuedAt:           time.Unix(int64(result.Timestamp), 0).UTC(),
	}, nil
}

// PositionError records a failed valuation within a batch.
type PositionError struct {
	Position domain.TrackedPosition
	Err      error
}

func (e PositionError) Error() string {
	return fmt.Sprintf("position %s: %v", e.Position.Key(), e.Err)
}

func (e PositionError) Unwrap() error {
	return e.Err
}

// ValueMany values positions concurrently, deduplicated by vault and wallet.
// Results keep input order; failed positions are reported in the returned errors.
func (s *Service) ValueMany(ctx context.Context, positions []domain.TrackedPosition) ([]domain.PositionValuation, []PositionError) {
	positions = lo.UniqBy(positions, domain.TrackedPosition.Key)

	results := make([]*domain.PositionValuation, len(positions))
	var mu sync.Mutex
	var errs []PositionError

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, p := range positions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			v, err := s.Value(ctx, p)
			if err != nil {
				slog.Warn("failed to value position", "vault", p.Vault, "wallet", p.Wallet, "error", err)
				mu.Lock()
				errs = append(errs, PositionError{Position: p, Err: err})
				mu.Unlock()
				return
			}
			results[i] = &v
		}()
	}

	wg.Wait()

	valuations := lo.FilterMap(results, func(v *domain.PositionValuation, _ int) (domain.PositionValuation, bool) {
		if v == nil {
			return domain.PositionValuation{}, false
		}
		return *v, true
	})
	return valuations, errs
}
