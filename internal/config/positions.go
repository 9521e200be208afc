package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/mtlprog/vaultshare/internal/domain"
)

type positionsFile struct {
	Positions []domain.TrackedPosition `yaml:"positions"`
}

// LoadPositions reads tracked vault positions from a YAML file.
// A missing file yields no positions. Duplicate vault/wallet pairs keep the first entry.
func LoadPositions(path string) ([]domain.TrackedPosition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("positions file not found, no positions tracked", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading positions file: %w", err)
	}
	return ParsePositions(data)
}

// ParsePositions parses and validates a positions YAML document.
func ParsePositions(data []byte) ([]domain.TrackedPosition, error) {
	var f positionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing positions: %w", err)
	}

	for i, p := range f.Positions {
		if _, err := solana.PublicKeyFromBase58(p.Vault); err != nil {
			return nil, fmt.Errorf("position %d: invalid vault %q: %w", i, p.Vault, err)
		}
		if _, err := solana.PublicKeyFromBase58(p.Wallet); err != nil {
			return nil, fmt.Errorf("position %d: invalid wallet %q: %w", i, p.Wallet, err)
		}
	}

	unique := lo.UniqBy(f.Positions, domain.TrackedPosition.Key)
	if dropped := len(f.Positions) - len(unique); dropped > 0 {
		slog.Info("dropping duplicate positions", "count", dropped)
	}
	return unique, nil
}
