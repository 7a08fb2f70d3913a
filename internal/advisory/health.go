// Package advisory derives the dashboard view: crop health scores, their
// status labels and the disease alert list.
package advisory

import "github.com/cropsevai/cropsevai-hub/internal/datastore"

// Health score parameters.
const (
	MaxHealthScore    = 100
	MinHealthScore    = 30
	PenaltyPerDisease = 25
)

// Health status labels.
const (
	StatusHealthy  = "Healthy"
	StatusWarning  = "Warning"
	StatusCritical = "Critical"
)

// CropHealth is the derived health of a single crop.
type CropHealth struct {
	Name        string `json:"name"`
	HealthScore int    `json:"healthScore"`
	Status      string `json:"status"`
}

// Dashboard is the response of the dashboard endpoint.
type Dashboard struct {
	TotalCrops    int64             `json:"totalCrops"`
	DiseaseAlerts int64             `json:"diseaseAlerts"`
	CropHealth    []CropHealth      `json:"cropHealth"`
	Alerts        []datastore.Alert `json:"alerts"`
}

// HealthScore returns max(30, 100 - 25n) for a crop with n diseases.
// Negative counts are treated as zero.
func HealthScore(n int) int {
	if n < 0 {
		n = 0
	}
	return max(MinHealthScore, MaxHealthScore-n*PenaltyPerDisease)
}

// HealthStatus classifies a crop by its disease count.
func HealthStatus(n int) string {
	switch {
	case n <= 0:
		return StatusHealthy
	case n == 1:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// BuildDashboard derives the dashboard from query results. Totals come from
// independent counts and are never recomputed from the per-crop rows.
func BuildDashboard(totalCrops, totalDiseases int64, counts []datastore.CropDiseaseCount, alerts []datastore.Alert) Dashboard {
	health := make([]CropHealth, 0, len(counts))
	for _, c := range counts {
		n := int(c.DiseaseCount)
		health = append(health, CropHealth{
			Name:        c.Name,
			HealthScore: HealthScore(n),
			Status:      HealthStatus(n),
		})
	}

	if alerts == nil {
		alerts = []datastore.Alert{}
	}

	return Dashboard{
		TotalCrops:    totalCrops,
		DiseaseAlerts: totalDiseases,
		CropHealth:    health,
		Alerts:        alerts,
	}
}
