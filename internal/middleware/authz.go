package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/repo"
)

// RequireRoles admits identities whose role is in the allowed set.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return domain.HTTPError(domain.ErrUnauthenticated)
			}
			if !slices.Contains(roles, ident.Role) {
				return domain.HTTPError(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

// RequireMinRole admits identities ranking at or above min. Unknown
// roles rank zero and never pass.
func RequireMinRole(min models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFrom(c)
			if !ok {
				return domain.HTTPError(domain.ErrUnauthenticated)
			}
			if !ident.Role.AtLeast(min) {
				return domain.HTTPError(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

// Policy holds the ownership checks that need a store round-trip.
type Policy struct {
	Repo *repo.GormRepo
}

func NewPolicy(r *repo.GormRepo) *Policy {
	return &Policy{Repo: r}
}

// RequireCourseOwner admits the course's instructor and any admin. The
// resolved course is attached for the handler.
func (p *Policy) RequireCourseOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := IdentityFrom(c)
		if !ok {
			return domain.HTTPError(domain.ErrUnauthenticated)
		}

		course, err := p.courseFromParam(c)
		if err != nil {
			return err
		}

		if ident.Role != models.RoleAdmin && course.InstructorID != ident.ID {
			return domain.HTTPError(domain.ErrForbidden)
		}

		c.Set(ctxCourse, course)
		return next(c)
	}
}

// RequireEnrolledOrInstructor admits the course's instructor (and
// admins) tagged with the instructor view, and actively enrolled users
// tagged with the enrolled view. The tag is an authorization annotation:
// downstream filtering decides from it what content to reveal.
func (p *Policy) RequireEnrolledOrInstructor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := IdentityFrom(c)
		if !ok {
			return domain.HTTPError(domain.ErrUnauthenticated)
		}

		course, err := p.courseFromParam(c)
		if err != nil {
			return err
		}

		mode, err := p.ViewModeFor(c.Request().Context(), ident, course)
		if err != nil {
			return domain.HTTPError(err)
		}

		c.Set(ctxCourse, course)
		c.Set(ctxViewMode, mode)
		return next(c)
	}
}

// ViewModeFor classifies an identity against a course: instructor view
// for admins and the owning instructor, enrolled view for an active
// enrollment, ErrForbidden otherwise. Also consulted directly by the
// lesson preview handler for its optional identity.
func (p *Policy) ViewModeFor(ctx context.Context, ident domain.Identity, course *models.Course) (string, error) {
	if ident.Role == models.RoleAdmin || course.InstructorID == ident.ID {
		return ViewInstructor, nil
	}

	enrolled, err := p.Repo.IsEnrolled(ctx, ident.ID, course.ID)
	if err != nil {
		return "", err
	}
	if !enrolled {
		return "", domain.ErrForbidden
	}
	return ViewEnrolled, nil
}

func (p *Policy) courseFromParam(c echo.Context) (*models.Course, error) {
	id, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}

	course, err := p.Repo.CourseByUUID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return nil, domain.HTTPError(err)
	}
	return course, nil
}
