package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/search"
)

// PostsDemoURL is the upstream used by the fan-out demo endpoint.
var PostsDemoURL = "https://jsonplaceholder.typicode.com/posts"

type PostHTTP struct {
	Repo  *repo.GormRepo
	Index *search.PostIndex
}

func (h *PostHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	posts, err := h.Repo.PostsByUser(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *PostHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.Repo.GetPost(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "No post found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *PostHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil || req.Body == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "body is required")
	}

	post := models.Post{Body: req.Body, UserID: user.ID}
	if err := h.Repo.CreatePost(ctx, &post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	h.Index.Index(ctx, &post)

	return c.JSON(http.StatusCreated, echo.Map{"msg": "Post successfully submitted"})
}

func (h *PostHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.Repo.GetPost(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Unauthorized")
	}

	if err := h.Repo.DeletePost(ctx, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	h.Index.Delete(ctx, post.ID)

	return c.JSON(http.StatusOK, echo.Map{"msg": "Post successfully deleted"})
}

func (h *PostHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	total, posts, err := h.Index.Search(ctx, q, 0, 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search unavailable")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "posts": posts})
}

// FanOut calls the demo upstream five times concurrently and joins on all
// calls before responding.
func (h *PostHTTP) FanOut(c echo.Context) error {
	ctx := c.Request().Context()

	results, err := fanOut(ctx, repeatURL(PostsDemoURL, 5))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream fetch failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": results})
}
