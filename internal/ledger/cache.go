package ledger

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// decimalsCache remembers mint decimals, which are fixed at mint creation.
type decimalsCache struct {
	mu      sync.RWMutex
	entries map[solana.PublicKey]uint8
}

func newDecimalsCache() *decimalsCache {
	return &decimalsCache{
		entries: make(map[solana.PublicKey]uint8),
	}
}

func (c *decimalsCache) get(mint solana.PublicKey) (uint8, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.entries[mint]
	return d, ok
}

func (c *decimalsCache) set(mint solana.PublicKey, decimals uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[mint] = decimals
}
