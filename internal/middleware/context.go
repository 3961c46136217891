package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/models"
)

// View modes produced by RequireEnrolledOrInstructor.
const (
	ViewInstructor = "instructor"
	ViewEnrolled   = "enrolled"
)

const (
	ctxIdentity     = "auth_identity"
	ctxRefreshToken = "presented_refresh_token"
	ctxCourse       = "resolved_course"
	ctxViewMode     = "course_view_mode"
)

// IdentityFrom returns the authenticated caller, if any middleware
// attached one.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	ident, ok := c.Get(ctxIdentity).(domain.Identity)
	return ident, ok
}

// RefreshTokenFrom returns the raw token RequireRefresh validated, for
// the rotation operation to consume.
func RefreshTokenFrom(c echo.Context) string {
	raw, _ := c.Get(ctxRefreshToken).(string)
	return raw
}

// CourseFrom returns the course an ownership check already resolved, so
// handlers do not look it up twice.
func CourseFrom(c echo.Context) (*models.Course, bool) {
	course, ok := c.Get(ctxCourse).(*models.Course)
	return course, ok
}

// ViewModeFrom returns ViewInstructor or ViewEnrolled after
// RequireEnrolledOrInstructor, "" otherwise.
func ViewModeFrom(c echo.Context) string {
	mode, _ := c.Get(ctxViewMode).(string)
	return mode
}
