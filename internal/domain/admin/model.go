// Package admin groups the administrative registries: facilities, their
// rooms, and the insurance plans accepted by the clinic.
package admin

import "time"

// Facility maps to the facilities table.
type Facility struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zipCode"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	CNPJ          *string   `json:"cnpj,omitempty"`
	LicenseNumber *string   `json:"licenseNumber,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Room maps to the rooms table. Every room belongs to a facility.
type Room struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	FacilityID  int       `json:"facilityId"`
	Capacity    *int      `json:"capacity,omitempty"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// InsurancePlan maps to the insurance_plans table.
type InsurancePlan struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Provider        string    `json:"provider"`
	CoverageDetails *string   `json:"coverageDetails,omitempty"`
	ContactInfo     *string   `json:"contactInfo,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
