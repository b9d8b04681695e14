package reward

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/platform/auth"
	"github.com/cliniq/cliniq/internal/platform/clinicerr"
	"github.com/cliniq/cliniq/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	provider := api.Group("", auth.RequireRole("eps"))
	provider.POST("/rewards", h.Create)
	provider.PATCH("/rewards/:id", h.Update)
	provider.DELETE("/rewards/:id", h.Delete)
	provider.POST("/rewards/:id/activate", h.Activate)
	provider.POST("/rewards/:id/deactivate", h.Deactivate)
	provider.POST("/rewards/:id/deplete", h.Deplete)

	any := api.Group("", auth.RequireRole("doctor", "eps", "patient"))
	any.GET("/rewards/:id", h.Get)
	any.GET("/rewards", h.List)
	any.GET("/rewards/available", h.Available)
	any.GET("/eps/:id/rewards", h.ListByProvider)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rw, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, rw)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rw, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rw)
}

// List handles the query-parameter driven reward searches: by status,
// by points range, or by creation-date range.
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	pg := pagination.FromContext(c)

	if status := c.QueryParam("status"); status != "" {
		items, total, err := h.svc.ListByStatus(ctx, status, pg.Limit, pg.Offset)
		if err != nil {
			return clinicerr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	if minRaw, maxRaw := c.QueryParam("min_points"), c.QueryParam("max_points"); minRaw != "" || maxRaw != "" {
		min, err := strconv.Atoi(minRaw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_points")
		}
		max, err := strconv.Atoi(maxRaw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_points")
		}
		items, err := h.svc.ListByPointsRange(ctx, min, max)
		if err != nil {
			return clinicerr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" || to != "" {
		items, err := h.svc.ListByDateRange(ctx, from, to)
		if err != nil {
			return clinicerr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
	}

	items, total, err := h.svc.Available(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Available(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Available(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByProvider(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByProvider(c.Request().Context(), providerID, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rw, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rw)
}

func (h *Handler) Activate(c echo.Context) error   { return h.doTransition(c, h.svc.Activate) }
func (h *Handler) Deactivate(c echo.Context) error { return h.doTransition(c, h.svc.Deactivate) }
func (h *Handler) Deplete(c echo.Context) error    { return h.doTransition(c, h.svc.Deplete) }

func (h *Handler) doTransition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Reward, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rw, err := fn(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rw)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
