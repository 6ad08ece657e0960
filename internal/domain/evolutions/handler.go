package evolutions

import (
	"errors"
	"net/http"
	"strconv"

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
	evolutions := api.Group("/evolutions")
	evolutions.GET("", h.List, h.guard.CheckPermission(rbac.ResourceEvolutions, "read"))
	evolutions.GET("/:id", h.Get, h.guard.CheckPermission(rbac.ResourceEvolutions, "read"))
	evolutions.POST("", h.Create, h.guard.CheckPermission(rbac.ResourceEvolutions, "create"))
	evolutions.PATCH("/:id", h.Update, h.guard.CheckPermission(rbac.ResourceEvolutions, "update"))
	evolutions.POST("/:id/approve", h.Approve, h.guard.CheckPermission(rbac.ResourceEvolutions, "approve"))
	evolutions.POST("/:id/reject", h.Reject, h.guard.CheckPermission(rbac.ResourceEvolutions, "reject"))
	evolutions.DELETE("/:id", h.Delete,
		h.guard.CheckPermission(rbac.ResourceEvolutions, "delete"),
		h.guard.RequireApproval(rbac.ResourceEvolutions, "delete"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var filter Filter
	if v := c.QueryParam("appointmentId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.AppointmentID = &id
		}
	}
	if v := c.QueryParam("professionalId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.ProfessionalID = &id
		}
	}
	if v := c.QueryParam("status"); v != "" {
		filter.Status = &v
	}

	// Own-scoped readers only see their own notes.
	principal := auth.PrincipalFromContext(c.Request().Context())
	if h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceEvolutions, "read") {
		if principal.ProfessionalID == nil {
			return c.JSON(http.StatusOK, echo.Map{
				"evolutions": []*Evolution{},
				"pagination": pagination.NewMeta(pg, 0),
			})
		}
		filter.ProfessionalID = principal.ProfessionalID
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"evolutions": items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Evolução não encontrada"})
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	e, err := h.svc.Create(c.Request().Context(), principal, in)
	if err != nil {
		if errors.Is(err, ErrNotProfessional) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Apenas profissionais podem criar evoluções"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, e)
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
	e, err := h.svc.Update(c.Request().Context(), principal, id, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Apenas supervisores podem alterar o status da evolução"})
		case errors.Is(err, ErrContentForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Apenas o autor pode editar o conteúdo da evolução"})
		case errors.Is(err, ErrNotesForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Apenas supervisores podem adicionar notas de supervisão"})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Evolução não encontrada"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, e)
}

type reviewRequest struct {
	SupervisorNotes *string `json:"supervisorNotes,omitempty"`
}

func (h *Handler) Approve(c echo.Context) error {
	return h.review(c, StatusApproved)
}

func (h *Handler) Reject(c echo.Context) error {
	return h.review(c, StatusRejected)
}

func (h *Handler) review(c echo.Context, status string) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reviewRequest
	_ = c.Bind(&req)

	e, err := h.svc.SetStatus(c.Request().Context(), id, status, req.SupervisorNotes)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Evolução não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) Delete(c echo.Context) error {
	// Lower-privilege roles get a pending approval marker instead of the
	// deletion itself.
	if pending := rbac.DecisionFromContext(c.Request().Context()); pending != nil {
		return c.JSON(http.StatusAccepted, echo.Map{"approval": pending})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Evolução não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
