package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/vaultshare/internal/domain"
)

// SheetName is the worksheet that holds exported valuations.
const SheetName = "VALUATIONS"

// valuationHeader names the exported columns A through M.
var valuationHeader = []any{
	"Valued At", "Label", "Vault", "Wallet", "Token Mint", "LP Mint",
	"Total Amount", "Locked Profit", "Withdrawable", "LP Supply", "LP Balance",
	"Underlying Share", "Warnings",
}

// ValuationRow is one exported position valuation in UI units.
type ValuationRow struct {
	ValuedAt        time.Time
	Label           string
	Vault           string
	Wallet          string
	TokenMint       string
	LPMint          string
	TotalAmount     decimal.Decimal
	LockedProfit    decimal.Decimal
	Withdrawable    decimal.Decimal
	LPSupply        decimal.Decimal
	LPBalance       decimal.Decimal
	UnderlyingShare decimal.Decimal
	Warnings        []domain.InvariantWarning
}

// NewValuationRow converts raw valuation amounts into UI units using the mint decimals.
func NewValuationRow(v domain.PositionValuation) ValuationRow {
	return ValuationRow{
		ValuedAt:        v.ValuedAt,
		Label:           v.Label,
		Vault:           v.Vault,
		Wallet:          v.Wallet,
		TokenMint:       v.TokenMint,
		LPMint:          v.LPMint,
		TotalAmount:     domain.UIAmount(v.TotalAmount, v.TokenDecimals),
		LockedProfit:    domain.UIAmount(v.LockedProfit, v.TokenDecimals),
		Withdrawable:    domain.UIAmount(v.WithdrawableAmount, v.TokenDecimals),
		LPSupply:        domain.UIAmount(v.TotalSupply, v.LPDecimals),
		LPBalance:       domain.UIAmount(v.UserBalance, v.LPDecimals),
		UnderlyingShare: domain.UIAmount(v.UnderlyingShare, v.TokenDecimals),
		Warnings:        v.Warnings,
	}
}

// SheetWriter writes valuation rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []ValuationRow) error
}

// MultiWriter writes the same rows to every destination and joins the failures.
type MultiWriter []SheetWriter

func (m MultiWriter) Write(ctx context.Context, rows []ValuationRow) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(ctx, rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Service converts valuations to rows and delegates writing to a SheetWriter.
type Service struct {
	writer SheetWriter
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer}
}

// Export writes the valuations to the configured destination.
// Implements worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context, valuations []domain.PositionValuation) error {
	rows := lo.Map(valuations, func(v domain.PositionValuation, _ int) ValuationRow {
		return NewValuationRow(v)
	})
	if err := s.writer.Write(ctx, rows); err != nil {
		return fmt.Errorf("exporting %d valuations: %w", len(rows), err)
	}
	return nil
}

// buildValuationSheet builds the sheet data including the header row.
func buildValuationSheet(rows []ValuationRow) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, valuationHeader)

	for _, row := range rows {
		warnings := lo.Map(row.Warnings, func(w domain.InvariantWarning, _ int) string { return string(w) })
		data = append(data, []any{
			row.ValuedAt.UTC().Format(time.RFC3339),
			row.Label,
			row.Vault,
			row.Wallet,
			row.TokenMint,
			row.LPMint,
			toFloat(row.TotalAmount),
			toFloat(row.LockedProfit),
			toFloat(row.Withdrawable),
			toFloat(row.LPSupply),
			toFloat(row.LPBalance),
			toFloat(row.UnderlyingShare),
			strings.Join(warnings, ","),
		})
	}

	return data
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
