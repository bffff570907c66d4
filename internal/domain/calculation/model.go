package calculation

import (
	"time"
)

// SIRSThreshold is the number of met criteria at which SIRS is present.
const SIRSThreshold = 2

// MaxCriteria is the number of SIRS criteria (temperature, heart rate,
// respiratory rate, white cell count).
const MaxCriteria = 4

// Calculation maps to the sirs_calculations table.
type Calculation struct {
	ID              int64                      `db:"id" json:"id"`
	Temperature     float64                    `db:"temperature" json:"temperature"`
	HeartRate       int                        `db:"heart_rate" json:"heart_rate"`
	RespiratoryRate int                        `db:"respiratory_rate" json:"respiratory_rate"`
	WBC             float64                    `db:"wbc" json:"wbc"`
	SIRSMet         bool                       `db:"sirs_met" json:"sirs_met"`
	CriteriaCount   int                        `db:"criteria_count" json:"criteria_count"`
	CriteriaDetails map[string]CriterionDetail `db:"criteria_details" json:"criteria_details"`
	CreatedAt       time.Time                  `db:"created_at" json:"created_at"`
}

// CriterionDetail records how one SIRS criterion was evaluated, e.g.
// {"value": 38.6, "criterion": "> 38 Cel", "met": true}.
type CriterionDetail struct {
	Value     float64 `json:"value"`
	Criterion string  `json:"criterion,omitempty"`
	Met       bool    `json:"met"`
}

// MetCriteria returns the names of met criteria.
func (c *Calculation) MetCriteria() []string {
	var names []string
	for name, d := range c.CriteriaDetails {
		if d.Met {
			names = append(names, name)
		}
	}
	return names
}
