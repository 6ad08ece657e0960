package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

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
	facilities := api.Group("/facilities")
	facilities.GET("", h.ListFacilities, h.guard.CheckPermission(rbac.ResourceFacilities, "read"))
	facilities.GET("/:id", h.GetFacility, h.guard.CheckPermission(rbac.ResourceFacilities, "read"))
	facilities.GET("/:id/rooms", h.ListFacilityRooms, h.guard.CheckPermission(rbac.ResourceRooms, "read"))
	facilities.POST("", h.CreateFacility, h.guard.CheckPermission(rbac.ResourceFacilities, "create"))
	facilities.PATCH("/:id", h.UpdateFacility, h.guard.CheckPermission(rbac.ResourceFacilities, "update"))
	facilities.DELETE("/:id", h.DeleteFacility, h.guard.CheckPermission(rbac.ResourceFacilities, "delete"))

	rooms := api.Group("/rooms")
	rooms.GET("", h.ListRooms, h.guard.CheckPermission(rbac.ResourceRooms, "read"))
	rooms.GET("/:id", h.GetRoom, h.guard.CheckPermission(rbac.ResourceRooms, "read"))
	rooms.POST("", h.CreateRoom, h.guard.CheckPermission(rbac.ResourceRooms, "create"))
	rooms.PATCH("/:id", h.UpdateRoom, h.guard.CheckPermission(rbac.ResourceRooms, "update"))
	rooms.DELETE("/:id", h.DeleteRoom, h.guard.CheckPermission(rbac.ResourceRooms, "delete"))

	plans := api.Group("/insurance-plans")
	plans.GET("", h.ListInsurancePlans, h.guard.CheckPermission(rbac.ResourceInsurancePlans, "read"))
	plans.GET("/:id", h.GetInsurancePlan, h.guard.CheckPermission(rbac.ResourceInsurancePlans, "read"))
	plans.POST("", h.CreateInsurancePlan, h.guard.CheckPermission(rbac.ResourceInsurancePlans, "create"))
	plans.PATCH("/:id", h.UpdateInsurancePlan, h.guard.CheckPermission(rbac.ResourceInsurancePlans, "update"))
	plans.DELETE("/:id", h.DeleteInsurancePlan, h.guard.CheckPermission(rbac.ResourceInsurancePlans, "delete"))
}

func idParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

func (h *Handler) ListFacilities(c echo.Context) error {
	pg := pagination.FromContext(c)
	facilities, total, err := h.svc.ListFacilities(c.Request().Context(), pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facilities": facilities,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) GetFacility(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFacility(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Unidade não encontrada"})
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListFacilityRooms(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rooms, err := h.svc.ListRoomsByFacility(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rooms)
}

func (h *Handler) CreateFacility(c echo.Context) error {
	var f Facility
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	if err := h.svc.CreateFacility(c.Request().Context(), &f); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFacility(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var f Facility
	if err := c.Bind(&f); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	f.ID = id
	if err := h.svc.UpdateFacility(c.Request().Context(), &f); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Unidade não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFacility(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteFacility(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Unidade não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRooms(c echo.Context) error {
	pg := pagination.FromContext(c)
	rooms, total, err := h.svc.ListRooms(c.Request().Context(), pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"rooms":      rooms,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) GetRoom(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetRoom(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Sala não encontrada"})
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) CreateRoom(c echo.Context) error {
	var r Room
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	r.IsActive = true
	if err := h.svc.CreateRoom(c.Request().Context(), &r); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateRoom(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var r Room
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	r.ID = id
	if err := h.svc.UpdateRoom(c.Request().Context(), &r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Sala não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteRoom(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRoom(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Sala não encontrada"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListInsurancePlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	plans, total, err := h.svc.ListInsurancePlans(c.Request().Context(), pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"insurancePlans": plans,
		"pagination":     pagination.NewMeta(pg, total),
	})
}

func (h *Handler) GetInsurancePlan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetInsurancePlan(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Plano de saúde não encontrado"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreateInsurancePlan(c echo.Context) error {
	var p InsurancePlan
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	if err := h.svc.CreateInsurancePlan(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateInsurancePlan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p InsurancePlan
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	p.ID = id
	if err := h.svc.UpdateInsurancePlan(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Plano de saúde não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteInsurancePlan(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteInsurancePlan(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Plano de saúde não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
