package reports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

var (
	ErrNotFound = errors.New("relatório não encontrado")
	// ErrMissingPeriod marks a generation request without both period bounds.
	ErrMissingPeriod = errors.New("datas de início e fim são obrigatórias")
)

type Service struct {
	repo  Repository
	stats StatsRepository
}

func NewService(repo Repository, stats StatsRepository) *Service {
	return &Service{repo: repo, stats: stats}
}

func (s *Service) Create(ctx context.Context, r *Report) error {
	if err := s.repo.Create(ctx, r); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int) (*Report, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, createdBy *int, limit, offset int) ([]*Report, int, error) {
	return s.repo.List(ctx, createdBy, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func validPeriod(p Period) error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ErrMissingPeriod
	}
	return nil
}

func (s *Service) ProfessionalHours(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProfessionalHours, error) {
	if err := validPeriod(period); err != nil {
		return nil, err
	}
	return s.stats.ProfessionalHours(ctx, period, facilityID, professionalID)
}

func (s *Service) AppointmentsByProcedure(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProcedureCount, error) {
	if err := validPeriod(period); err != nil {
		return nil, err
	}
	return s.stats.AppointmentsByProcedure(ctx, period, facilityID, professionalID)
}

func (s *Service) PatientsByFacility(ctx context.Context) ([]*FacilityPatients, error) {
	return s.stats.PatientsByFacility(ctx)
}

// ExportProfessionalHoursCSV writes the professional hours report as CSV.
func (s *Service) ExportProfessionalHoursCSV(ctx context.Context, period Period, facilityID, professionalID *int, w io.Writer) error {
	rows, err := s.ProfessionalHours(ctx, period, facilityID, professionalID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"ProfessionalID", "TotalHours", "PlanningHours", "FreeTimeHours", "PeriodStart", "PeriodEnd"}); err != nil {
		return fmt.Errorf("hours export csv: write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.ProfessionalID),
			strconv.FormatFloat(row.TotalHours, 'f', 2, 64),
			strconv.FormatFloat(row.PlanningHours, 'f', 2, 64),
			strconv.FormatFloat(row.FreeTimeHours, 'f', 2, 64),
			period.Start.Format(time.RFC3339),
			period.End.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("hours export csv: write record: %w", err)
		}
	}
	return nil
}

// ExportProceduresCSV writes the appointments-by-procedure report as CSV.
func (s *Service) ExportProceduresCSV(ctx context.Context, period Period, facilityID, professionalID *int, w io.Writer) error {
	rows, err := s.AppointmentsByProcedure(ctx, period, facilityID, professionalID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"ProcedureType", "Count"}); err != nil {
		return fmt.Errorf("procedures export csv: write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.ProcedureType, strconv.Itoa(row.Count)}); err != nil {
			return fmt.Errorf("procedures export csv: write record: %w", err)
		}
	}
	return nil
}
