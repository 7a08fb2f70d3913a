package datastore

import (
	"context"

	"gorm.io/gorm"
)

// ListCrops returns all crops ordered by id.
func (ds *DataStore) ListCrops(ctx context.Context) ([]Crop, error) {
	var crops []Crop
	err := ds.run(ctx, "list_crops", nil, func(db *gorm.DB) error {
		return db.Order("id").Find(&crops).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(crops), nil
}

// GetCrop returns a single crop or ErrCropNotFound.
func (ds *DataStore) GetCrop(ctx context.Context, id uint) (*Crop, error) {
	var crop Crop
	err := ds.run(ctx, "get_crop", ErrCropNotFound, func(db *gorm.DB) error {
		return db.First(&crop, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &crop, nil
}

// ListDiseases returns all diseases ordered by id.
func (ds *DataStore) ListDiseases(ctx context.Context) ([]Disease, error) {
	var diseases []Disease
	err := ds.run(ctx, "list_diseases", nil, func(db *gorm.DB) error {
		return db.Order("id").Find(&diseases).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(diseases), nil
}

// ListDiseasesByCrop returns the diseases recorded for a crop. An unknown
// crop id yields an empty list.
func (ds *DataStore) ListDiseasesByCrop(ctx context.Context, cropID uint) ([]Disease, error) {
	var diseases []Disease
	err := ds.run(ctx, "list_diseases_by_crop", nil, func(db *gorm.DB) error {
		return db.Where("crop_id = ?", cropID).Order("id").Find(&diseases).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(diseases), nil
}

// GetDiseaseWithCrop returns a disease joined with its crop name or
// ErrDiseaseNotFound.
func (ds *DataStore) GetDiseaseWithCrop(ctx context.Context, id uint) (*DiseaseWithCrop, error) {
	var row DiseaseWithCrop
	err := ds.run(ctx, "get_disease_with_crop", ErrDiseaseNotFound, func(db *gorm.DB) error {
		result := db.Table("diseases AS d").
			Select("d.id, d.crop_id, d.disease_name, d.severity, c.name AS crop").
			Joins("JOIN crops AS c ON c.id = d.crop_id").
			Where("d.id = ?", id).
			Limit(1).
			Scan(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListSolutionsByDisease returns the treatments recorded for a disease.
func (ds *DataStore) ListSolutionsByDisease(ctx context.Context, diseaseID uint) ([]Solution, error) {
	var solutions []Solution
	err := ds.run(ctx, "list_solutions_by_disease", nil, func(db *gorm.DB) error {
		return db.Where("disease_id = ?", diseaseID).Order("id").Find(&solutions).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(solutions), nil
}

// ListFertilizers returns all fertilizers ordered by id.
func (ds *DataStore) ListFertilizers(ctx context.Context) ([]Fertilizer, error) {
	var fertilizers []Fertilizer
	err := ds.run(ctx, "list_fertilizers", nil, func(db *gorm.DB) error {
		return db.Order("id").Find(&fertilizers).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(fertilizers), nil
}

// ListFertilizersByCrop returns the fertilizers recommended for a crop.
func (ds *DataStore) ListFertilizersByCrop(ctx context.Context, cropID uint) ([]Fertilizer, error) {
	var fertilizers []Fertilizer
	err := ds.run(ctx, "list_fertilizers_by_crop", nil, func(db *gorm.DB) error {
		return db.Where("crop_id = ?", cropID).Order("id").Find(&fertilizers).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(fertilizers), nil
}

// ListAdvisoryByCrop returns the advisory entries attached to a crop.
func (ds *DataStore) ListAdvisoryByCrop(ctx context.Context, cropID uint) ([]Advisory, error) {
	var entries []Advisory
	err := ds.run(ctx, "list_advisory_by_crop", nil, func(db *gorm.DB) error {
		return db.Where("crop_id = ?", cropID).Order("id").Find(&entries).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(entries), nil
}

// CountCrops counts the crops table on its own, independent of any join.
func (ds *DataStore) CountCrops(ctx context.Context) (int64, error) {
	var n int64
	err := ds.run(ctx, "count_crops", nil, func(db *gorm.DB) error {
		return db.Model(&Crop{}).Count(&n).Error
	})
	return n, err
}

// CountDiseases counts the diseases table on its own, independent of any join.
func (ds *DataStore) CountDiseases(ctx context.Context) (int64, error) {
	var n int64
	err := ds.run(ctx, "count_diseases", nil, func(db *gorm.DB) error {
		return db.Model(&Disease{}).Count(&n).Error
	})
	return n, err
}

// CropDiseaseCounts returns every crop with the number of diseases recorded
// for it, zero included, ordered by crop id.
func (ds *DataStore) CropDiseaseCounts(ctx context.Context) ([]CropDiseaseCount, error) {
	var counts []CropDiseaseCount
	err := ds.run(ctx, "crop_disease_counts", nil, func(db *gorm.DB) error {
		return db.Table("crops AS c").
			Select("c.id AS crop_id, c.name AS name, COUNT(d.id) AS disease_count").
			Joins("LEFT JOIN diseases AS d ON d.crop_id = c.id").
			Group("c.id, c.name").
			Order("c.id").
			Scan(&counts).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(counts), nil
}

// ListAlerts returns every disease joined with its crop name.
func (ds *DataStore) ListAlerts(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	err := ds.run(ctx, "list_alerts", nil, func(db *gorm.DB) error {
		return db.Table("diseases AS d").
			Select("c.name AS crop, d.disease_name, d.severity").
			Joins("JOIN crops AS c ON c.id = d.crop_id").
			Order("d.id").
			Scan(&alerts).Error
	})
	if err != nil {
		return nil, err
	}
	return nonNil(alerts), nil
}
