package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/middleware"
	"github.com/Gigatchad/e-learning/internal/models"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/util"
)

type CourseHTTP struct {
	Repo   *repo.GormRepo
	Policy *middleware.Policy
}

func lessonPayload(l *models.Lesson, withVideo bool) echo.Map {
	p := echo.Map{
		"id":           l.ID,
		"title":        l.Title,
		"position":     l.Position,
		"free_preview": l.FreePreview,
	}
	if withVideo {
		p["video_url"] = l.VideoURL
	}
	return p
}

// GetLesson runs behind RequireEnrolledOrInstructor, so the course and the
// caller's view mode are already on the context.
func (h *CourseHTTP) GetLesson(c echo.Context) error {
	ctx := c.Request().Context()

	course, ok := middleware.CourseFrom(c)
	if !ok {
		return domain.HTTPError(domain.ErrForbidden)
	}

	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lesson id")
	}

	lesson, err := h.Repo.LessonByID(ctx, course.ID, uint(lessonID))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lesson not found")
		}
		return domain.HTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"view":   middleware.ViewModeFrom(c),
		"lesson": lessonPayload(lesson, true),
	})
}

// PreviewLesson is reachable without logging in. The video URL is included
// only for free-preview lessons, or when the optional identity would pass
// the enrolled-or-instructor check anyway.
func (h *CourseHTTP) PreviewLesson(c echo.Context) error {
	ctx := c.Request().Context()

	courseID, err := uuid.Parse(c.Param("course_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid course id")
	}
	course, err := h.Repo.CourseByUUID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "course not found")
		}
		return domain.HTTPError(err)
	}

	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid lesson id")
	}
	lesson, err := h.Repo.LessonByID(ctx, course.ID, uint(lessonID))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "lesson not found")
		}
		return domain.HTTPError(err)
	}

	withVideo := lesson.FreePreview
	if !withVideo {
		if ident, ok := middleware.IdentityFrom(c); ok {
			switch _, err := h.Policy.ViewModeFor(ctx, ident, course); {
			case err == nil:
				withVideo = true
			case !errors.Is(err, domain.ErrForbidden):
				return domain.HTTPError(err)
			}
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"lesson": lessonPayload(lesson, withVideo),
	})
}

// ListStudents runs behind RequireCourseOwner.
func (h *CourseHTTP) ListStudents(c echo.Context) error {
	ctx := c.Request().Context()

	course, ok := middleware.CourseFrom(c)
	if !ok {
		return domain.HTTPError(domain.ErrForbidden)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	users, total, err := h.Repo.StudentsByCourse(ctx, course.ID, from, limit)
	if err != nil {
		return domain.HTTPError(err)
	}

	students := make([]models.UserView, 0, len(users))
	for _, u := range users {
		students = append(students, u.View())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":    total,
		"students": students,
	})
}
