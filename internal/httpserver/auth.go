package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Register(ctx, req); err != nil {
		return mapAuthErr(err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"msg": "Successfully registered"})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return mapAuthErr(err)
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) FreshLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	access, err := h.Svc.FreshLogin(ctx, req.Username, req.Password)
	if err != nil {
		return mapAuthErr(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}

// Refresh runs behind the refresh-token middleware: the claims are already
// verified and revocation-checked by the time the handler runs.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	access, err := h.Svc.Refresh(ctx, claims)
	if err != nil {
		return mapAuthErr(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}

func (h *AuthHTTP) LogoutAccess(c echo.Context) error {
	return h.logout(c)
}

func (h *AuthHTTP) LogoutRefresh(c echo.Context) error {
	return h.logout(c)
}

func (h *AuthHTTP) logout(c echo.Context) error {
	ctx := c.Request().Context()

	claims := middleware.TokenClaims(c)
	user := middleware.CurrentUser(c)
	if claims == nil || user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	if err := h.Svc.Logout(ctx, claims, user.Username); err != nil {
		return mapAuthErr(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Successfully logged out"})
}

func mapAuthErr(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, repo.ErrDuplicateUsername),
		errors.Is(err, repo.ErrDuplicateEmail):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
