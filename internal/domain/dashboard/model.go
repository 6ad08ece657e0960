// Package dashboard serves the landing-page counters. The shape of the
// response depends on the caller's dashboard grant: elevated roles get
// clinic-wide numbers, clinical roles get their own caseload.
package dashboard

// Summary is the clinic-wide view for elevated and secretary roles.
type Summary struct {
	View                 string `json:"view"`
	ActivePatients       int    `json:"activePatients"`
	ActiveProfessionals  int    `json:"activeProfessionals"`
	AppointmentsToday    int    `json:"appointmentsToday"`
	PendingEvolutions    int    `json:"pendingEvolutions"`
	UpcomingAppointments int    `json:"upcomingAppointments"`
}

// CaseloadSummary is the own-scoped view for professionals and interns.
type CaseloadSummary struct {
	View                 string `json:"view"`
	ProfessionalID       int    `json:"professionalId"`
	PatientsTreated      int    `json:"patientsTreated"`
	AppointmentsToday    int    `json:"appointmentsToday"`
	PendingEvolutions    int    `json:"pendingEvolutions"`
	UpcomingAppointments int    `json:"upcomingAppointments"`
}
