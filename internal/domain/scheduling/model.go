// Package scheduling manages appointments. Status transitions are allowed to
// the assigned professional or elevated roles; full-field rescheduling is an
// elevated-role operation.
package scheduling

import "time"

// Appointment status values.
const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
	StatusPending   = "pending"
	StatusAttended  = "attended"
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID             int       `json:"id"`
	PatientID      int       `json:"patientId"`
	ProfessionalID int       `json:"professionalId"`
	RoomID         int       `json:"roomId"`
	FacilityID     int       `json:"facilityId"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
	ProcedureType  string    `json:"procedureType"`
	Status         string    `json:"status"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedBy      int       `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UpdateInput carries a partial appointment update. A payload whose only
// field is Status is treated as a status change and follows the looser
// status-change authorization rule.
type UpdateInput struct {
	PatientID      *int       `json:"patientId,omitempty"`
	ProfessionalID *int       `json:"professionalId,omitempty"`
	RoomID         *int       `json:"roomId,omitempty"`
	FacilityID     *int       `json:"facilityId,omitempty"`
	StartTime      *time.Time `json:"startTime,omitempty"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	ProcedureType  *string    `json:"procedureType,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// StatusOnly reports whether the payload changes nothing but the status.
func (in UpdateInput) StatusOnly() bool {
	return in.Status != nil &&
		in.PatientID == nil && in.ProfessionalID == nil && in.RoomID == nil &&
		in.FacilityID == nil && in.StartTime == nil && in.EndTime == nil &&
		in.ProcedureType == nil && in.Notes == nil
}

// Filter narrows appointment listings.
type Filter struct {
	ProfessionalID *int
	PatientID      *int
	FacilityID     *int
	From           *time.Time
	To             *time.Time
}
