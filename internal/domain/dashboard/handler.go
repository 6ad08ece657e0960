package dashboard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

type Handler struct {
	svc   *Service
	guard *rbac.Guard
}

func NewHandler(svc *Service, guard *rbac.Guard) *Handler {
	return &Handler{svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Every known role has some dashboard grant; the service picks the view.
	api.GET("/dashboard", h.Overview, h.guard.CheckResourceAccess(rbac.ResourceDashboard))
}

func (h *Handler) Overview(c echo.Context) error {
	principal := auth.PrincipalFromContext(c.Request().Context())

	out, err := h.svc.Overview(c.Request().Context(), principal)
	if err != nil {
		if errors.Is(err, ErrNoView) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Acesso não autorizado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}
