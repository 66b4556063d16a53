package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
)

// CommentsDemoURL is the upstream used by the fan-out demo endpoint.
var CommentsDemoURL = "https://jsonplaceholder.typicode.com/comments"

type CommentHTTP struct {
	Repo *repo.GormRepo
}

func (h *CommentHTTP) ListByPost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	comments, err := h.Repo.CommentsByPost(ctx, uint(postID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, comments)
}

// Create adds a comment to one of the caller's own posts.
func (h *CommentHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	var req struct {
		Body   string `json:"body"`
		PostID uint   `json:"post_id"`
	}
	if err := c.Bind(&req); err != nil || req.Body == "" || req.PostID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "body and post_id are required")
	}

	post, err := h.Repo.GetPost(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if post.UserID != user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Unauthorized")
	}

	comment := models.Comment{Body: req.Body, PostID: post.ID, UserID: user.ID}
	if err := h.Repo.CreateComment(ctx, &comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusCreated, echo.Map{"msg": "Comment successfully submitted"})
}

func (h *CommentHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid comment id")
	}

	comment, err := h.Repo.GetComment(ctx, uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if comment.UserID != user.ID {
		return echo.NewHTTPError(http.StatusBadRequest, "Unauthorized")
	}

	if err := h.Repo.DeleteComment(ctx, comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"msg": "Comment successfully deleted"})
}

func (h *CommentHTTP) FanOut(c echo.Context) error {
	ctx := c.Request().Context()

	results, err := fanOut(ctx, repeatURL(CommentsDemoURL, 5))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream fetch failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": results})
}
