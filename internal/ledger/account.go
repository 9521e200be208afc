package ledger

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// codeInvalidParams is returned by getTokenAccountBalance for unknown accounts.
const codeInvalidParams = -32602

type commitmentConfig struct {
	Commitment string `json:"commitment"`
	Encoding   string `json:"encoding,omitempty"`
}

// FetchAccountData returns the raw data of an account.
func (c *Client) FetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	var result accountInfoResult
	cfg := commitmentConfig{Commitment: c.commitment, Encoding: "base64"}
	if err := c.call(ctx, "getAccountInfo", &result, address.String(), cfg); err != nil {
		return nil, fmt.Errorf("fetching account %s: %w", address, err)
	}
	if result.Value == nil {
		return nil, fmt.Errorf("fetching account %s: %w", address, ErrAccountNotFound)
	}
	if len(result.Value.Data) != 2 || result.Value.Data[1] != "base64" {
		return nil, fmt.Errorf("fetching account %s: unexpected data encoding %v", address, result.Value.Data)
	}

	data, err := base64.StdEncoding.DecodeString(result.Value.Data[0])
	if err != nil {
		return nil, fmt.Errorf("decoding account %s data: %w", address, err)
	}
	return data, nil
}

// FetchTokenSupply returns the total supply of a token mint.
func (c *Client) FetchTokenSupply(ctx context.Context, mint solana.PublicKey) (TokenAmount, error) {
	var result tokenAmountResult
	if err := c.call(ctx, "getTokenSupply", &result, mint.String(), commitmentConfig{Commitment: c.commitment}); err != nil {
		return TokenAmount{}, fmt.Errorf("fetching supply of %s: %w", mint, err)
	}
	amount, err := parseAmount(result.Value.Amount)
	if err != nil {
		return TokenAmount{}, fmt.Errorf("parsing supply of %s: %w", mint, err)
	}
	return TokenAmount{Amount: amount, Decimals: result.Value.Decimals}, nil
}

// FetchMintDecimals returns the decimals of a token mint, caching them per client.
func (c *Client) FetchMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if d, ok := c.decimals.get(mint); ok {
		return d, nil
	}
	supply, err := c.FetchTokenSupply(ctx, mint)
	if err != nil {
		return 0, err
	}
	c.decimals.set(mint, supply.Decimals)
	return supply.Decimals, nil
}

// FetchTokenAccountBalance returns the balance held by a token account.
func (c *Client) FetchTokenAccountBalance(ctx context.Context, account solana.PublicKey) (TokenAmount, error) {
	var result tokenAmountResult
	err := c.call(ctx, "getTokenAccountBalance", &result, account.String(), commitmentConfig{Commitment: c.commitment})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == codeInvalidParams && strings.Contains(rpcErr.Message, "could not find account") {
			return TokenAmount{}, fmt.Errorf("fetching balance of %s: %w", account, ErrAccountNotFound)
		}
		return TokenAmount{}, fmt.Errorf("fetching balance of %s: %w", account, err)
	}
	amount, err := parseAmount(result.Value.Amount)
	if err != nil {
		return TokenAmount{}, fmt.Errorf("parsing balance of %s: %w", account, err)
	}
	return TokenAmount{Amount: amount, Decimals: result.Value.Decimals}, nil
}

// AssociatedTokenAddress derives the wallet's default token account for mint.
func AssociatedTokenAddress(wallet, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving token account of %s for mint %s: %w", wallet, mint, err)
	}
	return addr, nil
}

func parseAmount(s string) (uint64, error) {
	if s == "" {
		return 0, errors.New("empty amount")
	}
	return strconv.ParseUint(s, 10, 64)
}
