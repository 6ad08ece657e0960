// Package identity manages user accounts, their professional profiles and
// the session endpoints (login, logout, register).
package identity

import "time"

// User maps to the users table. The password hash never leaves the server;
// it is excluded from JSON serialization.
type User struct {
	ID              int        `json:"id"`
	Username        string     `json:"username"`
	Password        string     `json:"-"`
	Email           string     `json:"email"`
	FullName        string     `json:"fullName"`
	Role            string     `json:"role"`
	FacilityID      *int       `json:"facilityId,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	ProfileImageURL *string    `json:"profileImageUrl,omitempty"`
	IsActive        bool       `json:"isActive"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Professional maps to the professionals table. One user account may carry
// one professional profile; interns reference their supervisor's profile.
type Professional struct {
	ID               int       `json:"id"`
	UserID           int       `json:"userId"`
	ProfessionalType string    `json:"professionalType"`
	LicenseNumber    *string   `json:"licenseNumber,omitempty"`
	LicenseType      *string   `json:"licenseType,omitempty"`
	Specialization   *string   `json:"specialization,omitempty"`
	EmploymentType   string    `json:"employmentType"`
	HourlyRate       *int      `json:"hourlyRate,omitempty"`
	SupervisorID     *int      `json:"supervisorId,omitempty"`
	FacilityID       *int      `json:"facilityId,omitempty"`
	Bio              *string   `json:"bio,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Credentials is the login request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput is the self-service registration payload.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Phone    *string `json:"phone,omitempty"`
}

// UpdateUserInput carries the mutable user fields. Pointers distinguish
// "not sent" from zero values.
type UpdateUserInput struct {
	Email           *string `json:"email,omitempty"`
	FullName        *string `json:"fullName,omitempty"`
	Role            *string `json:"role,omitempty"`
	FacilityID      *int    `json:"facilityId,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
	IsActive        *bool   `json:"isActive,omitempty"`
	Password        *string `json:"password,omitempty"`
}
