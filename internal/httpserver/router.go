package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/middleware"
	"github.com/Gigatchad/e-learning/internal/models"
)

type Deps struct {
	Auth   *middleware.Authenticator
	Policy *middleware.Policy

	AuthHandler   *AuthHTTP
	CourseHandler *CourseHTTP
	AdminHandler  *AdminHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh, d.Auth.RequireRefresh)
	auth.POST("/logout", d.AuthHandler.Logout, d.Auth.RequireAuth)
	auth.POST("/password", d.AuthHandler.ChangePassword, d.Auth.RequireAuth)

	courses := api.Group("/courses/:course_id")
	courses.GET("/lessons/:id", d.CourseHandler.GetLesson,
		d.Auth.RequireAuth, d.Policy.RequireEnrolledOrInstructor)
	courses.GET("/lessons/:id/preview", d.CourseHandler.PreviewLesson, d.Auth.OptionalAuth)
	courses.GET("/students", d.CourseHandler.ListStudents,
		d.Auth.RequireAuth, d.Policy.RequireCourseOwner)

	admin := api.Group("/admin", d.Auth.RequireAuth, middleware.RequireMinRole(models.RoleAdmin))
	admin.PATCH("/users/:uuid/active", d.AdminHandler.SetUserActive)
	admin.GET("/audit-events", d.AdminHandler.ListAuditEvents)
}
