package auth

import "context"

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated user attached to a request after the JWT
// middleware runs. ProfessionalID is set when the user has a linked
// professional profile; it drives ownership checks on appointments,
// evolutions and patients.
type Principal struct {
	UserID         int    `json:"user_id"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	ProfessionalID *int   `json:"professional_id,omitempty"`
	FacilityID     *int   `json:"facility_id,omitempty"`
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the authenticated principal, or nil when the
// request is anonymous.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
