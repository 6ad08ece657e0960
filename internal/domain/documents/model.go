// Package documents manages clinical document records and their signing and
// sharing flows. Every document must be linked to at least one clinical
// entity; signing is a one-way status transition.
package documents

import "time"

// Document categories.
const (
	CategoryMedicalReport  = "medical_report"
	CategoryExamResult     = "exam_result"
	CategoryTreatmentPlan  = "treatment_plan"
	CategoryReferral       = "referral"
	CategoryLegalDocument  = "legal_document"
	CategoryConsentForm    = "consent_form"
	CategoryEvolutionNote  = "evolution_note"
	CategoryAdministrative = "administrative"
	CategoryOther          = "other"
)

// Document status values.
const (
	StatusDraft            = "draft"
	StatusPendingSignature = "pending_signature"
	StatusSigned           = "signed"
	StatusArchived         = "archived"
	StatusActive           = "active"
)

// Document maps to the documents table.
type Document struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	FileURL       string    `json:"fileUrl"`
	FileType      string    `json:"fileType"`
	FileSize      int       `json:"fileSize"`
	Description   *string   `json:"description,omitempty"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	PatientID     *int      `json:"patientId,omitempty"`
	FacilityID    *int      `json:"facilityId,omitempty"`
	EvolutionID   *int      `json:"evolutionId,omitempty"`
	AppointmentID *int      `json:"appointmentId,omitempty"`
	UploadedBy    int       `json:"uploadedBy"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Linked reports whether the document is associated with at least one
// clinical entity.
func (d *Document) Linked() bool {
	return d.PatientID != nil || d.FacilityID != nil || d.EvolutionID != nil || d.AppointmentID != nil
}

// UpdateInput carries a partial document metadata update.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Filter narrows document listings.
type Filter struct {
	PatientID     *int
	FacilityID    *int
	EvolutionID   *int
	AppointmentID *int
	Category      *string
	UploadedBy    *int
}
