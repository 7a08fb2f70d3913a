package datastore

import "time"

// User is an account that can log in. Password holds a bcrypt hash and is
// never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:32;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Crop is a cultivated crop.
type Crop struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
}

// Disease is a disease that affects a crop.
type Disease struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CropID      uint   `gorm:"not null;index" json:"crop_id"`
	Crop        *Crop  `gorm:"foreignKey:CropID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	DiseaseName string `gorm:"size:150;not null" json:"disease_name"`
	Severity    string `gorm:"size:32" json:"severity"`
}

// Solution is a treatment for a disease. Type is e.g. "organic" or "chemical".
type Solution struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	DiseaseID uint     `gorm:"not null;index" json:"disease_id"`
	Disease   *Disease `gorm:"foreignKey:DiseaseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Solution  string   `gorm:"type:text" json:"solution"`
	Type      string   `gorm:"size:32" json:"type"`
}

// Fertilizer is a fertilizer recommendation for a crop.
type Fertilizer struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	CropID           uint   `gorm:"not null;index" json:"crop_id"`
	Crop             *Crop  `gorm:"foreignKey:CropID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name             string `gorm:"size:150;not null" json:"name"`
	Dosage           string `gorm:"size:100" json:"dosage"`
	ApplicationStage string `gorm:"size:100" json:"application_stage"`
}

// Advisory is a recommendation record attached to a crop.
type Advisory struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	CropID         uint   `gorm:"not null;index" json:"crop_id"`
	Crop           *Crop  `gorm:"foreignKey:CropID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Title          string `gorm:"size:200" json:"title"`
	Recommendation string `gorm:"type:text" json:"recommendation"`
	Season         string `gorm:"size:50" json:"season"`
}

// TableName keeps the singular table name the schema has always used.
func (Advisory) TableName() string { return "advisory" }

// DiseaseWithCrop is a disease row joined with the name of its crop.
type DiseaseWithCrop struct {
	ID          uint   `json:"id"`
	CropID      uint   `json:"crop_id"`
	DiseaseName string `json:"disease_name"`
	Severity    string `json:"severity"`
	Crop        string `json:"crop"`
}

// CropDiseaseCount is the number of diseases recorded for one crop. Crops
// without diseases are included with a zero count.
type CropDiseaseCount struct {
	CropID       uint   `json:"crop_id"`
	Name         string `json:"name"`
	DiseaseCount int64  `json:"disease_count"`
}

// Alert is a disease enriched with its crop name.
type Alert struct {
	Crop        string `json:"crop"`
	DiseaseName string `json:"disease_name"`
	Severity    string `json:"severity"`
}

// allModels lists the tables managed by Migrate, parents first.
func allModels() []any {
	return []any{
		&User{},
		&Crop{},
		&Disease{},
		&Solution{},
		&Fertilizer{},
		&Advisory{},
	}
}
