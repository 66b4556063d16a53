package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/service"
)

type TaskHTTP struct {
	Svc *service.TaskService
}

// CountSeconds launches the demo background job and acknowledges
// immediately; the job runs out of band.
func (h *TaskHTTP) CountSeconds(c echo.Context) error {
	ctx := c.Request().Context()

	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "number must be a positive integer")
	}

	user := middleware.CurrentUser(c)
	if _, err := h.Svc.LaunchCountSeconds(ctx, user, n); err != nil {
		if errors.Is(err, repo.ErrTaskInProgress) {
			return echo.NewHTTPError(http.StatusBadRequest, "Task already in progress")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Launched background task"})
}

func (h *TaskHTTP) Active(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	tasks, err := h.Svc.ActiveTasks(ctx, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHTTP) Finished(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	tasks, err := h.Svc.FinishedTasks(ctx, user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, tasks)
}
