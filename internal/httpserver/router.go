package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rlammers/microblog-api/internal/middleware"
)

type Deps struct {
	Auth     *AuthHTTP
	Tasks    *TaskHTTP
	Users    *UserHTTP
	Posts    *PostHTTP
	Comments *CommentHTTP
	AuthMW   *middleware.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = HTTPErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/fresh-login", d.Auth.FreshLogin)
	auth.POST("/refresh", d.Auth.Refresh, d.AuthMW.RequireRefresh)
	auth.DELETE("/logout/token", d.Auth.LogoutAccess, d.AuthMW.RequireAccess)
	auth.DELETE("/logout/fresh", d.Auth.LogoutRefresh, d.AuthMW.RequireRefresh)

	tasks := e.Group("/tasks", d.AuthMW.RequireAccess)
	tasks.GET("/background-task/count-seconds/:number", d.Tasks.CountSeconds)
	tasks.GET("/active", d.Tasks.Active)
	tasks.GET("/finished", d.Tasks.Finished)

	users := e.Group("/users", d.AuthMW.RequireAccess)
	users.GET("/profile", d.Users.Profile)
	users.GET("/profile/:username", d.Users.ProfileByUsername)

	posts := e.Group("/posts", d.AuthMW.RequireAccess)
	posts.GET("", d.Posts.List)
	posts.POST("", d.Posts.Create)
	posts.GET("/search", d.Posts.Search)
	posts.GET("/fanout", d.Posts.FanOut)
	posts.GET("/:id", d.Posts.Get)
	posts.DELETE("/:id", d.Posts.Delete)
	posts.GET("/:id/comments", d.Comments.ListByPost)

	comments := e.Group("/comments", d.AuthMW.RequireAccess)
	comments.POST("", d.Comments.Create)
	comments.DELETE("/:id", d.Comments.Delete)
	comments.GET("/fanout", d.Comments.FanOut)
}
