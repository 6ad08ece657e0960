// Package patients manages the patient registry. Professionals may only
// update patients they treat; elevated roles and secretaries manage the
// whole registry.
package patients

import "time"

// Patient maps to the patients table.
type Patient struct {
	ID                   int       `json:"id"`
	FullName             string    `json:"fullName"`
	DateOfBirth          string    `json:"dateOfBirth"`
	Gender               *string   `json:"gender,omitempty"`
	CPF                  *string   `json:"cpf,omitempty"`
	Address              *string   `json:"address,omitempty"`
	City                 *string   `json:"city,omitempty"`
	State                *string   `json:"state,omitempty"`
	ZipCode              *string   `json:"zipCode,omitempty"`
	Phone                *string   `json:"phone,omitempty"`
	Email                *string   `json:"email,omitempty"`
	EmergencyContact     *string   `json:"emergencyContact,omitempty"`
	EmergencyPhone       *string   `json:"emergencyPhone,omitempty"`
	GuardianName         *string   `json:"guardianName,omitempty"`
	GuardianPhone        *string   `json:"guardianPhone,omitempty"`
	GuardianEmail        *string   `json:"guardianEmail,omitempty"`
	GuardianRelationship *string   `json:"guardianRelationship,omitempty"`
	InsurancePlanID      *int      `json:"insurancePlanId,omitempty"`
	InsuranceNumber      *string   `json:"insuranceNumber,omitempty"`
	Diagnosis            *string   `json:"diagnosis,omitempty"`
	Notes                *string   `json:"notes,omitempty"`
	ProfileImageURL      *string   `json:"profileImageUrl,omitempty"`
	IsActive             bool      `json:"isActive"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
