package scheduling

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
	appointments := api.Group("/appointments")
	appointments.GET("", h.List, h.guard.CheckPermission(rbac.ResourceAppointments, "read"))
	appointments.GET("/:id", h.Get, h.guard.CheckPermission(rbac.ResourceAppointments, "read"))
	appointments.POST("", h.Create, h.guard.CheckPermission(rbac.ResourceAppointments, "create"))
	appointments.PATCH("/:id", h.Update, h.guard.CheckPermission(rbac.ResourceAppointments, "update"))
	appointments.POST("/:id/confirm", h.Confirm, h.guard.CheckPermission(rbac.ResourceAppointments, "confirm"))
	appointments.POST("/:id/cancel", h.Cancel, h.guard.CheckPermission(rbac.ResourceAppointments, "cancel"))
	appointments.DELETE("/:id", h.Delete, h.guard.CheckPermission(rbac.ResourceAppointments, "delete"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var filter Filter
	if v := c.QueryParam("professionalId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.ProfessionalID = &id
		}
	}
	if v := c.QueryParam("patientId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.PatientID = &id
		}
	}
	if v := c.QueryParam("facilityId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.FacilityID = &id
		}
	}
	if v := c.QueryParam("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &ts
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &ts
		}
	}

	// Interns only see their own schedule.
	principal := auth.PrincipalFromContext(c.Request().Context())
	if h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceAppointments, "read") {
		if principal.ProfessionalID == nil {
			return c.JSON(http.StatusOK, echo.Map{
				"appointments": []*Appointment{},
				"pagination":   pagination.NewMeta(pg, 0),
			})
		}
		filter.ProfessionalID = principal.ProfessionalID
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"appointments": items,
		"pagination":   pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Agendamento não encontrado"})
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	principal := auth.PrincipalFromContext(c.Request().Context())
	a.CreatedBy = principal.UserID

	if err := h.svc.Create(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	a, err := h.svc.Update(c.Request().Context(), principal, id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusChangeForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Você não tem permissão para alterar o status deste agendamento"})
		case errors.Is(err, ErrFullUpdateForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Apenas administradores e coordenadores podem atualizar agendamentos"})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Agendamento não encontrado"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Confirm(c echo.Context) error {
	return h.setStatus(c, StatusConfirmed, "confirm")
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.setStatus(c, StatusCancelled, "cancel")
}

func (h *Handler) setStatus(c echo.Context, status, action string) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	ownPolicy := h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceAppointments, action)

	a, err := h.svc.SetStatus(c.Request().Context(), principal, id, status, ownPolicy)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusChangeForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Você não tem permissão para alterar o status deste agendamento"})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Agendamento não encontrado"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Agendamento não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
