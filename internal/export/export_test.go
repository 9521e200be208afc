package export

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtlprog/vaultshare/internal/domain"
)

type recordingWriter struct {
	rows []ValuationRow
	err  error
}

func (w *recordingWriter) Write(_ context.Context, rows []ValuationRow) error {
	w.rows = rows
	return w.err
}

func sampleValuation() domain.PositionValuation {
	return domain.PositionValuation{
		Vault:              "vault-a",
		Wallet:             "wallet-a",
		Label:              "msol",
		TokenMint:          "mint-a",
		LPMint:             "lp-a",
		TotalAmount:        1_000_000,
		LockedProfit:       500_000,
		WithdrawableAmount: 500_000,
		TotalSupply:        4_000_000_000,
		UserBalance:        1_000_000_000,
		UnderlyingShare:    125_000,
		TokenDecimals:      6,
		LPDecimals:         9,
		Warnings:           []domain.InvariantWarning{domain.WarningVaultDisabled},
		ValuedAt:           time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewValuationRow(t *testing.T) {
	row := NewValuationRow(sampleValuation())

	tests := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"total", row.TotalAmount, "1"},
		{"locked", row.LockedProfit, "0.5"},
		{"withdrawable", row.Withdrawable, "0.5"},
		{"lp supply", row.LPSupply, "4"},
		{"lp balance", row.LPBalance, "1"},
		{"share", row.UnderlyingShare, "0.125"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestBuildValuationSheet(t *testing.T) {
	data := buildValuationSheet([]ValuationRow{NewValuationRow(sampleValuation())})

	if len(data) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(data))
	}
	if len(data[0]) != 13 || len(data[1]) != 13 {
		t.Fatalf("column counts = %d/%d, want 13", len(data[0]), len(data[1]))
	}
	if data[1][0] != "2026-01-02T03:04:05Z" {
		t.Errorf("valued at = %v", data[1][0])
	}
	if data[1][11] != 0.125 {
		t.Errorf("underlying share = %v, want 0.125", data[1][11])
	}
	if data[1][12] != "vault_disabled" {
		t.Errorf("warnings = %v, want vault_disabled", data[1][12])
	}
}

func TestServiceExport(t *testing.T) {
	w := &recordingWriter{}
	svc := NewService(w)

	if err := svc.Export(context.Background(), []domain.PositionValuation{sampleValuation(), sampleValuation()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.rows) != 2 {
		t.Errorf("wrote %d rows, want 2", len(w.rows))
	}
}

func TestServiceExportWriterError(t *testing.T) {
	writeErr := errors.New("quota exceeded")
	svc := NewService(&recordingWriter{err: writeErr})

	err := svc.Export(context.Background(), []domain.PositionValuation{sampleValuation()})
	if !errors.Is(err, writeErr) {
		t.Errorf("error = %v, want wrapped writer error", err)
	}
}

func TestMultiWriter(t *testing.T) {
	ok := &recordingWriter{}
	failErr := errors.New("offline")
	failing := &recordingWriter{err: failErr}

	err := MultiWriter{failing, ok}.Write(context.Background(), []ValuationRow{{Label: "x"}})
	if !errors.Is(err, failErr) {
		t.Errorf("error = %v, want joined failure", err)
	}
	if len(ok.rows) != 1 {
		t.Error("second writer should still receive rows after the first fails")
	}
}

func TestXLSXWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuations.xlsx")
	w := NewXLSXWriter(path)

	if err := w.Write(context.Background(), []ValuationRow{NewValuationRow(sampleValuation())}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][0] != "Valued At" || rows[0][12] != "Warnings" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "msol" || rows[1][2] != "vault-a" {
		t.Errorf("data row = %v", rows[1])
	}
}
