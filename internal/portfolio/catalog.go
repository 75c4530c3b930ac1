// Package portfolio implements the simulated trading session: the asset
// catalog, the holdings ledger, and analysis snapshots.
package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/bobmcallan/rebal/internal/interfaces"
	"github.com/bobmcallan/rebal/internal/models"
)

// Catalog is the loaded portfolio definition. It is reloadable so a session
// reset picks up edits to the definition file.
type Catalog struct {
	path string

	mu     sync.RWMutex
	config *models.PortfolioConfig
}

// LoadCatalog reads and validates the portfolio definition file.
func LoadCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the definition file, replacing the in-memory catalog only
// when the new content is valid.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read portfolio file %s: %w", c.path, err)
	}

	var config models.PortfolioConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse portfolio file %s: %w", c.path, err)
	}

	if len(config.Assets) == 0 {
		return fmt.Errorf("portfolio file %s defines no assets", c.path)
	}
	seen := make(map[string]struct{}, len(config.Assets))
	for _, a := range config.Assets {
		if a.ID == "" {
			return fmt.Errorf("portfolio file %s contains an asset without an id", c.path)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("portfolio file %s contains duplicate asset id '%s'", c.path, a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	c.mu.Lock()
	c.config = &config
	c.mu.Unlock()
	return nil
}

// Asset returns the asset with the given id, or nil when unknown.
func (c *Catalog) Asset(id string) *models.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Asset(id)
}

// Assets returns all assets in definition order.
func (c *Catalog) Assets() []models.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Assets
}

// Name returns the portfolio name.
func (c *Catalog) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Name
}

// TradingFeeRate returns the per-trade fee rate from the definition.
func (c *Catalog) TradingFeeRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.TradingFeeRate
}

// InvestorProfile returns the free-text investor profile.
func (c *Catalog) InvestorProfile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.InvestorProfile
}

// Ensure Catalog implements AssetSource
var _ interfaces.AssetSource = (*Catalog)(nil)
