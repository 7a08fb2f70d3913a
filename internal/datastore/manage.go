package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cropsevai/cropsevai-hub/internal/logger"
)

// migrationTimeout bounds schema changes, which may take longer than a query.
const migrationTimeout = 2 * time.Minute

// Migrate creates or updates the schema for every table, including foreign
// keys and the unique index on users.email.
func (ds *DataStore) Migrate(ctx context.Context) error {
	if ds.DB == nil {
		return ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	start := time.Now()
	if err := ds.DB.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return ds.mapError(ctx, "migrate", err, nil)
	}

	ds.logger.Info("Database schema migrated",
		logger.Int("tables", len(allModels())),
		logger.Duration("duration", time.Since(start)))
	return nil
}

// Seed inserts demo reference data when the crops table is empty. It is
// safe to run repeatedly.
func (ds *DataStore) Seed(ctx context.Context) error {
	if ds.DB == nil {
		return ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()

	seeded := false
	err := ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&Crop{}).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		for i := range seedData {
			crop := seedData[i].crop
			if err := tx.Create(&crop).Error; err != nil {
				return err
			}
			for _, d := range seedData[i].diseases {
				disease := Disease{CropID: crop.ID, DiseaseName: d.name, Severity: d.severity}
				if err := tx.Create(&disease).Error; err != nil {
					return err
				}
				for _, s := range d.solutions {
					s.DiseaseID = disease.ID
					if err := tx.Create(&s).Error; err != nil {
						return err
					}
				}
			}
			for _, f := range seedData[i].fertilizers {
				f.CropID = crop.ID
				if err := tx.Create(&f).Error; err != nil {
					return err
				}
			}
			for _, a := range seedData[i].advisory {
				a.CropID = crop.ID
				if err := tx.Create(&a).Error; err != nil {
					return err
				}
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return ds.mapError(ctx, "seed", err, nil)
	}

	if seeded {
		ds.logger.Info("Demo data seeded", logger.Int("crops", len(seedData)))
	} else {
		ds.logger.Info("Crops table not empty, seed skipped")
	}
	return nil
}

type seedDisease struct {
	name      string
	severity  string
	solutions []Solution
}

type seedCrop struct {
	crop        Crop
	diseases    []seedDisease
	fertilizers []Fertilizer
	advisory    []Advisory
}

var seedData = []seedCrop{
	{
		crop: Crop{Name: "Wheat"},
		diseases: []seedDisease{
			{name: "Rust", severity: "High", solutions: []Solution{
				{Solution: "Spray propiconazole 25 EC at 0.1% at first appearance of pustules", Type: "chemical"},
				{Solution: "Grow resistant varieties and remove volunteer wheat", Type: "organic"},
			}},
			{name: "Blight", severity: "Low", solutions: []Solution{
				{Solution: "Treat seed with carbendazim at 2 g/kg before sowing", Type: "chemical"},
			}},
		},
		fertilizers: []Fertilizer{
			{Name: "Urea", Dosage: "120 kg/ha", ApplicationStage: "Split: sowing and crown root initiation"},
			{Name: "DAP", Dosage: "100 kg/ha", ApplicationStage: "Basal"},
		},
		advisory: []Advisory{
			{Title: "Irrigation at crown root initiation", Recommendation: "Give the first irrigation 20 to 25 days after sowing.", Season: "Rabi"},
		},
	},
	{
		crop: Crop{Name: "Rice"},
		diseases: []seedDisease{
			{name: "Blast", severity: "High", solutions: []Solution{
				{Solution: "Spray tricyclazole 75 WP at 0.6 g/l", Type: "chemical"},
				{Solution: "Avoid excess nitrogen and apply Pseudomonas fluorescens", Type: "organic"},
			}},
		},
		fertilizers: []Fertilizer{
			{Name: "Urea", Dosage: "100 kg/ha", ApplicationStage: "Tillering and panicle initiation"},
		},
		advisory: []Advisory{
			{Title: "Transplanting window", Recommendation: "Transplant 21 to 25 day old seedlings at 2 to 3 per hill.", Season: "Kharif"},
		},
	},
	{
		crop: Crop{Name: "Tomato"},
		fertilizers: []Fertilizer{
			{Name: "NPK 19:19:19", Dosage: "5 g/l foliar", ApplicationStage: "Flowering"},
		},
		advisory: []Advisory{
			{Title: "Staking", Recommendation: "Stake plants 30 days after transplanting to keep fruit off the soil.", Season: "Rabi"},
		},
	},
}
