package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/repo"
)

type UserHTTP struct {
	Repo *repo.GormRepo
}

func (h *UserHTTP) Profile(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *UserHTTP) ProfileByUsername(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.Repo.GetUserByUsername(ctx, c.Param("username"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
