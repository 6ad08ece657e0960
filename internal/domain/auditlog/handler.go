package auditlog

import (
	"net/http"
	"strconv"
	"time"

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
	api.GET("/audit-logs", h.List, h.guard.CheckPermission(rbac.ResourceAuditLogs, "read"))
	api.GET("/meta/translations", h.Translations, h.guard.CheckPermission(rbac.ResourceAuditLogs, "read"))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	var filter Filter
	if v := c.QueryParam("userId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			filter.UserID = &id
		}
	}
	if v := c.QueryParam("resource"); v != "" {
		filter.Resource = &v
	}
	if v := c.QueryParam("action"); v != "" {
		filter.Action = &v
	}
	if v := c.QueryParam("startDate"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &ts
		}
	}
	if v := c.QueryParam("endDate"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &ts
		}
	}

	logs, total, err := h.svc.Search(c.Request().Context(), filter, pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if logs == nil {
		logs = []*LogEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"logs":       logs,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) Translations(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Translations())
}
