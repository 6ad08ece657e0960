package documents

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
	documents := api.Group("/documents")
	documents.GET("", h.List, h.guard.CheckPermission(rbac.ResourceDocuments, "read"))
	documents.GET("/:id", h.Get, h.guard.CheckPermission(rbac.ResourceDocuments, "read"))
	documents.POST("", h.Create, h.guard.CheckPermission(rbac.ResourceDocuments, "create"))
	documents.PATCH("/:id", h.Update, h.guard.CheckPermission(rbac.ResourceDocuments, "update"))
	documents.PUT("/:id/sign", h.Sign, h.guard.CheckPermission(rbac.ResourceDocuments, "sign"))
	documents.POST("/:id/share", h.Share, h.guard.CheckPermission(rbac.ResourceDocuments, "share"))
	documents.DELETE("/:id", h.Delete,
		h.guard.CheckPermission(rbac.ResourceDocuments, "delete"),
		h.guard.RequireApproval(rbac.ResourceDocuments, "delete"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var filter Filter
	intParam := func(name string) *int {
		if v := c.QueryParam(name); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				return &id
			}
		}
		return nil
	}
	filter.PatientID = intParam("patientId")
	filter.FacilityID = intParam("facilityId")
	filter.EvolutionID = intParam("evolutionId")
	filter.AppointmentID = intParam("appointmentId")
	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}

	// Own-scoped readers only see what they uploaded.
	principal := auth.PrincipalFromContext(c.Request().Context())
	if h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceDocuments, "read") {
		filter.UploadedBy = &principal.UserID
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"documents":  items,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Documento não encontrado"})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Create(c echo.Context) error {
	var d Document
	if err := c.Bind(&d); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), principal, &d); err != nil {
		if errors.Is(err, ErrUnlinked) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "É necessário associar o documento a um paciente, unidade, evolução ou consulta",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, d)
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
	ownPolicy := h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceDocuments, "update")

	d, err := h.svc.Update(c.Request().Context(), principal, id, in, ownPolicy)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Sign(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	ownPolicy := h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceDocuments, "sign")

	d, err := h.svc.Sign(c.Request().Context(), principal, id, ownPolicy)
	if err != nil {
		if errors.Is(err, ErrAlreadySigned) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Documento já foi assinado"})
		}
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

type shareRequest struct {
	UserID int `json:"userId"`
}

func (h *Handler) Share(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req shareRequest
	if err := c.Bind(&req); err != nil || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	ownPolicy := h.guard.RequiresOwnership(rbac.Role(principal.Role), rbac.ResourceDocuments, "share")

	d, err := h.svc.Share(c.Request().Context(), principal, id, req.UserID, ownPolicy)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) Delete(c echo.Context) error {
	if pending := rbac.DecisionFromContext(c.Request().Context()); pending != nil {
		return c.JSON(http.StatusAccepted, echo.Map{"approval": pending})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Documento não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Acesso não autorizado"})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Documento não encontrado"})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
