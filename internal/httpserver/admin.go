package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Gigatchad/e-learning/internal/audit"
	"github.com/Gigatchad/e-learning/internal/domain"
	"github.com/Gigatchad/e-learning/internal/logging"
	"github.com/Gigatchad/e-learning/internal/repo"
	"github.com/Gigatchad/e-learning/internal/service"
	"github.com/Gigatchad/e-learning/internal/util"
)

// AdminHTTP is mounted behind RequireMinRole(admin). Trail is nil when
// elasticsearch is not configured.
type AdminHTTP struct {
	Svc   *service.AuthService
	Trail *audit.Trail
}

func (h *AdminHTTP) SetUserActive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_set_active")

	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req SetActiveRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_active_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.Validate(); err != nil {
		l.Warn("set_active_rejected", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.Svc.SetUserActive(ctx, id, *req.Active)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return domain.HTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"user": user.View()})
}

func (h *AdminHTTP) ListAuditEvents(c echo.Context) error {
	ctx := c.Request().Context()

	if h.Trail == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "audit trail unavailable")
	}

	userID := c.QueryParam("user_id")
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, events, err := h.Trail.Search(ctx, userID, from, limit)
	if err != nil {
		return domain.HTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"total":  total,
		"events": events,
	})
}
