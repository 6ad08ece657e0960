package reports

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc   *Service
	guard *rbac.Guard
}

func NewHandler(svc *Service, guard *rbac.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	reports := api.Group("/reports")
	reports.GET("", h.List, h.guard.CheckPermission(rbac.ResourceReports, "read"))
	reports.GET("/:id", h.Get, h.guard.CheckPermission(rbac.ResourceReports, "read"))
	reports.POST("", h.Create, h.guard.CheckPermission(rbac.ResourceReports, "create"))
	reports.DELETE("/:id", h.Delete, h.guard.CheckPermission(rbac.ResourceReports, "delete"))

	reports.GET("/professionals-hours", h.ProfessionalHours, h.guard.CheckPermission(rbac.ResourceReports, "generate"))
	reports.GET("/appointments-by-procedure", h.AppointmentsByProcedure, h.guard.CheckPermission(rbac.ResourceReports, "generate"))
	reports.GET("/patients-by-facility", h.PatientsByFacility, h.guard.CheckPermission(rbac.ResourceReports, "generate"))
	reports.GET("/professionals-hours/export", h.ExportProfessionalHours, h.guard.CheckPermission(rbac.ResourceReports, "export"))
	reports.GET("/appointments-by-procedure/export", h.ExportProcedures, h.guard.CheckPermission(rbac.ResourceReports, "export"))
}

// scope narrows generated reports to the principal's own appointments when
// the generate grant is ownership-qualified.
func (h *Handler) scope(c echo.Context) (Period, *int, *int, error) {
	var period Period
	if v := c.QueryParam("startDate"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return period, nil, nil, echo.NewHTTPError(http.StatusBadRequest, "startDate inválido")
		}
		period.Start = ts
	}
	if v := c.QueryParam("endDate"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return period, nil, nil, echo.NewHTTPError(http.StatusBadRequest, "endDate inválido")
		}
		period.End = ts
	}

	var facilityID *int
	if v := c.QueryParam("facilityId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			facilityID = &id
		}
	}

	var professionalID *int
	principal := auth.PrincipalFromContext(c.Request().Context())
	if h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceReports, "generate") {
		if principal.ProfessionalID == nil {
			return period, nil, nil, echo.NewHTTPError(http.StatusForbidden, "Acesso não autorizado")
		}
		professionalID = principal.ProfessionalID
	}
	return period, facilityID, professionalID, nil
}

func (h *Handler) ProfessionalHours(c echo.Context) error {
	period, facilityID, professionalID, err := h.scope(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.ProfessionalHours(c.Request().Context(), period, facilityID, professionalID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) AppointmentsByProcedure(c echo.Context) error {
	period, facilityID, professionalID, err := h.scope(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.AppointmentsByProcedure(c.Request().Context(), period, facilityID, professionalID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) PatientsByFacility(c echo.Context) error {
	rows, err := h.svc.PatientsByFacility(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) ExportProfessionalHours(c echo.Context) error {
	period, facilityID, professionalID, err := h.scope(c)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="horas-profissionais.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := h.svc.ExportProfessionalHoursCSV(c.Request().Context(), period, facilityID, professionalID, c.Response()); err != nil {
		return h.mapError(c, err)
	}
	return nil
}

func (h *Handler) ExportProcedures(c echo.Context) error {
	period, facilityID, professionalID, err := h.scope(c)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="atendimentos-por-procedimento.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := h.svc.ExportProceduresCSV(c.Request().Context(), period, facilityID, professionalID, c.Response()); err != nil {
		return h.mapError(c, err)
	}
	return nil
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	// Own-scoped readers only see their saved reports.
	var createdBy *int
	principal := auth.PrincipalFromContext(c.Request().Context())
	if h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceReports, "read") {
		createdBy = &principal.UserID
	}

	items, total, err := h.svc.List(c.Request().Context(), createdBy, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reports":    items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Relatório não encontrado"})
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Create(c echo.Context) error {
	var r Report
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	principal := auth.PrincipalFromContext(c.Request().Context())
	r.CreatedBy = principal.UserID

	if err := h.svc.Create(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Relatório não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapError(c echo.Context, err error) error {
	if errors.Is(err, ErrMissingPeriod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Datas de início e fim são obrigatórias"})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
