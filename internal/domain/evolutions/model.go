// Package evolutions manages clinical session notes. Interns' notes start in
// a pending state and must be approved by their supervisor; authorship rules
// restrict who may change which fields.
package evolutions

import "time"

// Evolution status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
)

// Evolution maps to the evolutions table.
type Evolution struct {
	ID              int       `json:"id"`
	AppointmentID   int       `json:"appointmentId"`
	ProfessionalID  int       `json:"professionalId"`
	Content         string    `json:"content"`
	Status          string    `json:"status"`
	SupervisorID    *int      `json:"supervisorId,omitempty"`
	SupervisorNotes *string   `json:"supervisorNotes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CreateInput is the client payload for a new evolution. The author and the
// initial status are derived from the authenticated principal, never taken
// from the payload.
type CreateInput struct {
	AppointmentID int  `json:"appointmentId"`
	Content       string `json:"content"`
	SupervisorID  *int `json:"supervisorId,omitempty"`
}

// UpdateInput carries a partial evolution update. Each field has its own
// authorization rule.
type UpdateInput struct {
	Content         *string `json:"content,omitempty"`
	Status          *string `json:"status,omitempty"`
	SupervisorNotes *string `json:"supervisorNotes,omitempty"`
}

// Filter narrows evolution listings.
type Filter struct {
	AppointmentID  *int
	ProfessionalID *int
	Status         *string
}
