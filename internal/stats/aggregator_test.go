package stats

import (
	"testing"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/catalog"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/verify"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/config"
	"github.com/singhkevin/ProductCodeScanner2-docker2/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedScans mints codes for two companies and runs a known mix of scans:
// Acme gets 2 genuine + 1 repeat, Beta gets 1 genuine, plus 2 unknown-code
// scans that belong to nobody.
func seedScans(t *testing.T) (*Aggregator, *gorm.DB, uint, uint) {
	t.Helper()
	db := database.NewTestDB(t)

	store := catalog.NewStore(db, config.CodesConfig{CollisionRetries: 5, MaxBatchQuantity: 10000})
	acme, err := store.CreateCompany("Acme")
	require.NoError(t, err)
	beta, err := store.CreateCompany("Beta")
	require.NoError(t, err)

	acmeProduct, err := store.Mint(catalog.MintSpec{
		CompanyID: acme.ID, Name: "Gadget", SKU: "G-1", Quantity: 2, Kind: model.CodeKindAlphanumeric,
	})
	require.NoError(t, err)
	betaProduct, err := store.Mint(catalog.MintSpec{
		CompanyID: beta.ID, Name: "Gizmo", SKU: "Z-1", Quantity: 1, Kind: model.CodeKindAlphanumeric,
	})
	require.NoError(t, err)

	verifier := verify.NewVerifier(db)
	mustScan := func(value string, lat, lng float64) {
		t.Helper()
		_, err := verifier.Verify(value, lat, lng)
		require.NoError(t, err)
	}

	mustScan(acmeProduct.Codes[0].Value, 1, 1)  // genuine
	mustScan(acmeProduct.Codes[0].Value, 2, 2)  // repeat
	mustScan(acmeProduct.Codes[1].Value, 3, 3)  // genuine
	mustScan(betaProduct.Codes[0].Value, 4, 4)  // genuine
	mustScan("BOGUS-01", 5, 5)                  // unknown
	mustScan("BOGUS-02", 6, 6)                  // unknown

	return NewAggregator(db), db, acme.ID, beta.ID
}

func TestOverviewGlobal(t *testing.T) {
	aggregator, _, _, _ := seedScans(t)

	overview, err := aggregator.Overview(nil)
	require.NoError(t, err)

	assert.EqualValues(t, 6, overview.TotalScans)
	assert.EqualValues(t, 3, overview.GenuineScans)
	assert.EqualValues(t, 3, overview.FakeScans)
	assert.EqualValues(t, 2, overview.RegisteredProducts)
}

func TestOverviewScopedToCompany(t *testing.T) {
	aggregator, _, acmeID, betaID := seedScans(t)

	acme, err := aggregator.Overview(&acmeID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, acme.TotalScans)
	assert.EqualValues(t, 2, acme.GenuineScans)
	assert.EqualValues(t, 1, acme.FakeScans)
	assert.EqualValues(t, 1, acme.RegisteredProducts)

	beta, err := aggregator.Overview(&betaID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, beta.TotalScans)
	assert.EqualValues(t, 1, beta.GenuineScans)
	assert.EqualValues(t, 0, beta.FakeScans)
	assert.EqualValues(t, 1, beta.RegisteredProducts)

	// Unknown-code scans count globally but against no company
	assert.EqualValues(t, 4, acme.TotalScans+beta.TotalScans)
}

func TestHotspotsExcludeGenuine(t *testing.T) {
	aggregator, _, _, _ := seedScans(t)

	hotspots, err := aggregator.Hotspots()
	require.NoError(t, err)

	require.Len(t, hotspots, 3)
	seen := map[float64]bool{}
	for _, h := range hotspots {
		seen[h.Latitude] = true
		assert.False(t, h.CreatedAt.IsZero())
	}
	// The repeat at (2,2) and the two unknowns at (5,5) and (6,6)
	assert.True(t, seen[2])
	assert.True(t, seen[5])
	assert.True(t, seen[6])
}

func TestHotspotsEmptyLedger(t *testing.T) {
	db := database.NewTestDB(t)

	hotspots, err := NewAggregator(db).Hotspots()
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}

func TestActivityNewestFirst(t *testing.T) {
	aggregator, _, _, _ := seedScans(t)

	scans, err := aggregator.Activity(4)
	require.NoError(t, err)
	require.Len(t, scans, 4)
	for i := 1; i < len(scans); i++ {
		assert.Greater(t, scans[i-1].ID, scans[i].ID)
	}
	assert.Equal(t, "BOGUS-02", scans[0].CodeValue)
}

func TestActivityLimitDefaults(t *testing.T) {
	aggregator, _, _, _ := seedScans(t)

	scans, err := aggregator.Activity(0)
	require.NoError(t, err)
	assert.Len(t, scans, 6)

	scans, err = aggregator.Activity(500)
	require.NoError(t, err)
	assert.Len(t, scans, 6)
}
