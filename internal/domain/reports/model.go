// Package reports builds managerial analytics over appointments and exposes
// saved report definitions. Generation is JSON by default with a CSV export
// for spreadsheet handoff.
package reports

import (
	"encoding/json"
	"time"
)

// Report is a saved report definition.
type Report struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	CreatedBy   int             `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Period bounds a report query. Both ends are required.
type Period struct {
	Start time.Time
	End   time.Time
}

// ProfessionalHours aggregates worked hours per professional, broken down by
// planning and free-time blocks.
type ProfessionalHours struct {
	ProfessionalID int     `json:"professionalId"`
	TotalHours     float64 `json:"totalHours"`
	PlanningHours  float64 `json:"planningHours"`
	FreeTimeHours  float64 `json:"freeTimeHours"`
}

// ProcedureCount counts appointments per procedure type.
type ProcedureCount struct {
	ProcedureType string `json:"procedureType"`
	Count         int    `json:"count"`
}

// FacilityPatients counts distinct patients seen per facility.
type FacilityPatients struct {
	FacilityID int `json:"facilityId"`
	Count      int `json:"count"`
}
