package stats

import (
	"time"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"

	"gorm.io/gorm"
)

// hotspotBatchSize bounds how much of the scan ledger is held in memory at
// once while streaming fraud points.
const hotspotBatchSize = 500

// Aggregator derives geospatial fraud summaries and dashboard counters from
// the scan ledger and the catalog. It is a pure read projection with no state
// of its own.
type Aggregator struct {
	db *gorm.DB
}

// NewAggregator creates an aggregator backed by the given database
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// Hotspot is one geolocated fraud signal for the map
type Hotspot struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// Overview holds the dashboard counters, globally or scoped to one company
type Overview struct {
	TotalScans         int64 `json:"totalScans"`
	GenuineScans       int64 `json:"genuineScans"`
	FakeScans          int64 `json:"fakeScans"`
	RegisteredProducts int64 `json:"registeredProducts"`
}

// Hotspots returns every scan whose outcome is not genuine. Repeat scans and
// unknown codes are both fraud signals. The ledger is read in batches so an
// unbounded scan history never has to fit in one query buffer.
func (a *Aggregator) Hotspots() ([]Hotspot, error) {
	hotspots := []Hotspot{}
	var batch []model.Scan
	result := a.db.
		Where("outcome <> ?", model.ScanOutcomeGenuine).
		Order("id").
		FindInBatches(&batch, hotspotBatchSize, func(tx *gorm.DB, _ int) error {
			for _, scan := range batch {
				hotspots = append(hotspots, Hotspot{
					Latitude:  scan.Latitude,
					Longitude: scan.Longitude,
					CreatedAt: scan.CreatedAt,
				})
			}
			return nil
		})
	if result.Error != nil {
		return nil, result.Error
	}
	return hotspots, nil
}

// Overview computes the dashboard counters. With a company ID the scan counts
// cover only scans of that company's codes, which means unknown-code scans
// never count against any company; with nil it covers the whole ledger.
func (a *Aggregator) Overview(companyID *uint) (*Overview, error) {
	overview := &Overview{}

	scans := a.db.Model(&model.Scan{})
	products := a.db.Model(&model.Product{})
	if companyID != nil {
		scans = scans.
			Joins("JOIN codes ON codes.value = scans.code_value").
			Joins("JOIN products ON products.id = codes.product_id").
			Where("products.company_id = ?", *companyID)
		products = products.Where("company_id = ?", *companyID)
	}

	if err := scans.Session(&gorm.Session{}).Count(&overview.TotalScans).Error; err != nil {
		return nil, err
	}
	if err := scans.Session(&gorm.Session{}).
		Where("scans.outcome = ?", model.ScanOutcomeGenuine).
		Count(&overview.GenuineScans).Error; err != nil {
		return nil, err
	}
	overview.FakeScans = overview.TotalScans - overview.GenuineScans

	if err := products.Count(&overview.RegisteredProducts).Error; err != nil {
		return nil, err
	}
	return overview, nil
}

// Activity returns the most recent ledger entries for the dashboard feed
func (a *Aggregator) Activity(limit int) ([]model.Scan, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var scans []model.Scan
	if err := a.db.Order("id DESC").Limit(limit).Find(&scans).Error; err != nil {
		return nil, err
	}
	return scans, nil
}
