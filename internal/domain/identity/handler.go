package identity

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
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/register", h.Register)
	api.GET("/user", h.CurrentUser)

	users := api.Group("/users")
	users.GET("", h.ListUsers, h.guard.CheckPermission(rbac.ResourceUsers, "read"))
	users.GET("/:id", h.GetUser, h.guard.CheckPermission(rbac.ResourceUsers, "read"))
	users.POST("", h.CreateUser, h.guard.CheckPermission(rbac.ResourceUsers, "create"))
	users.PATCH("/:id", h.UpdateUser, h.guard.CheckPermission(rbac.ResourceUsers, "update"))
	users.DELETE("/:id", h.DeleteUser, h.guard.CheckPermission(rbac.ResourceUsers, "delete"))

	professionals := api.Group("/professionals")
	professionals.GET("", h.ListProfessionals, h.guard.CheckPermission(rbac.ResourceProfessionals, "read"))
	professionals.GET("/:id", h.GetProfessional, h.guard.CheckPermission(rbac.ResourceProfessionals, "read"))
	professionals.GET("/:id/supervisees", h.ListSupervisees, h.guard.CheckPermission(rbac.ResourceProfessionals, "read"))
	professionals.POST("", h.CreateProfessional, h.guard.CheckPermission(rbac.ResourceProfessionals, "create"))
	professionals.PATCH("/:id", h.UpdateProfessional, h.guard.CheckPermission(rbac.ResourceProfessionals, "update"))
	professionals.DELETE("/:id", h.DeleteProfessional, h.guard.CheckPermission(rbac.ResourceProfessionals, "delete"))
}

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados de login inválidos"})
	}

	result, err := h.svc.Login(c.Request().Context(), creds, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Credenciais inválidas"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Logout(c echo.Context) error {
	if principal := auth.PrincipalFromContext(c.Request().Context()); principal != nil {
		h.svc.Logout(c.Request().Context(), principal, c.RealIP(), c.Request().UserAgent())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logout bem-sucedido"})
}

func (h *Handler) Register(c echo.Context) error {
	var input RegisterInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados de registro inválidos"})
	}
	if input.Username == "" || input.Password == "" || input.Email == "" || input.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados de registro inválidos"})
	}

	user, err := h.svc.Register(c.Request().Context(), input, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nome de usuário já existe"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}
	return c.JSON(http.StatusCreated, user)
}

// CurrentUser returns the account behind the session token.
func (h *Handler) CurrentUser(c echo.Context) error {
	principal := auth.PrincipalFromContext(c.Request().Context())
	if principal == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Não autenticado"})
	}
	user, err := h.svc.GetUser(c.Request().Context(), principal.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Não autenticado"})
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListUsers(c.Request().Context(), pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": pagination.NewMeta(pg, total),
	})
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Usuário não encontrado"})
	}
	return c.JSON(http.StatusOK, user)
}

type createUserRequest struct {
	User
	PlainPassword string `json:"password"`
}

func (h *Handler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	req.User.IsActive = true

	if err := h.svc.CreateUser(c.Request().Context(), &req.User, req.PlainPassword); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Nome de usuário já existe"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, req.User)
}

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var input UpdateUserInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}

	principal := auth.PrincipalFromContext(c.Request().Context())
	user, err := h.svc.UpdateUser(c.Request().Context(), principal, id, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfPrivilegeChange):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Acesso não autorizado"})
		case errors.Is(err, ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Usuário não encontrado"})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Usuário não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListProfessionals(c echo.Context) error {
	pg := pagination.FromContext(c)
	professionals, total, err := h.svc.ListProfessionals(c.Request().Context(), pg.PageSize, pg.Offset())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"professionals": professionals,
		"pagination":    pagination.NewMeta(pg, total),
	})
}

func (h *Handler) GetProfessional(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetProfessional(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Profissional não encontrado"})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListSupervisees(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	supervisees, err := h.svc.ListSupervisees(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, supervisees)
}

func (h *Handler) CreateProfessional(c echo.Context) error {
	var p Professional
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	p.IsActive = true
	if err := h.svc.CreateProfessional(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProfessional(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Professional
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Dados inválidos"})
	}
	p.ID = id
	if err := h.svc.UpdateProfessional(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Profissional não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProfessional(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteProfessional(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Profissional não encontrado"})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
