package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/rebal/internal/models"
)

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalogFile(t, testConfig()))
	require.NoError(t, err)

	assert.Equal(t, "Growth", catalog.Name())
	assert.Equal(t, 0.002, catalog.TradingFeeRate())
	assert.Equal(t, "long-horizon, risk tolerant", catalog.InvestorProfile())
	assert.Len(t, catalog.Assets(), 3)

	asset := catalog.Asset("us-stock")
	require.NotNil(t, asset)
	assert.Equal(t, "AAPL", asset.MarketTicker())

	assert.Nil(t, catalog.Asset("missing"))
}

func TestLoadCatalog_PolygonDescriptor(t *testing.T) {
	raw := `{
  "name": "Descriptors",
  "trading_fee": 0.001,
  "assets": [
    {"id": "aapl", "name": "Apple", "type": "stock", "currency": "USD",
     "quantity": 4, "unit_purchase_price": 150, "polygon": {"ticker": "AAPL"}},
    {"id": "flat", "name": "Flat", "type": "real_estate", "currency": "EUR",
     "quantity": 1, "unit_purchase_price": 250000, "unit_current_price": 280000}
  ]
}`
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", catalog.Asset("aapl").MarketTicker())
	assert.Equal(t, "", catalog.Asset("flat").MarketTicker(), "no descriptor means no ticker")
	assert.True(t, catalog.Asset("flat").HasManualPrice())
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadCatalog_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadCatalog(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoadCatalog_NoAssets(t *testing.T) {
	config := models.PortfolioConfig{Name: "Empty"}
	_, err := LoadCatalog(writeCatalogFile(t, config))
	assert.ErrorContains(t, err, "no assets")
}

func TestLoadCatalog_DuplicateID(t *testing.T) {
	config := testConfig()
	config.Assets = append(config.Assets, models.Asset{ID: "us-stock", Name: "Dupe", Category: models.CategoryStock})

	_, err := LoadCatalog(writeCatalogFile(t, config))
	assert.ErrorContains(t, err, "duplicate asset id 'us-stock'")
}

func TestLoadCatalog_MissingID(t *testing.T) {
	config := testConfig()
	config.Assets = append(config.Assets, models.Asset{Name: "Anonymous", Category: models.CategoryStock})

	_, err := LoadCatalog(writeCatalogFile(t, config))
	assert.ErrorContains(t, err, "without an id")
}

func TestCatalog_Reload(t *testing.T) {
	path := writeCatalogFile(t, testConfig())
	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Assets(), 3)

	updated := testConfig()
	updated.Name = "Updated"
	updated.Assets = updated.Assets[:2]
	data, err := os.ReadFile(writeCatalogFile(t, updated))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	require.NoError(t, catalog.Reload())
	assert.Equal(t, "Updated", catalog.Name())
	assert.Len(t, catalog.Assets(), 2)
}

func TestCatalog_ReloadKeepsOldOnError(t *testing.T) {
	path := writeCatalogFile(t, testConfig())
	catalog, err := LoadCatalog(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("broken"), 0644))

	assert.Error(t, catalog.Reload())
	// The previously loaded definition survives a bad reload
	assert.Equal(t, "Growth", catalog.Name())
	assert.Len(t, catalog.Assets(), 3)
}
