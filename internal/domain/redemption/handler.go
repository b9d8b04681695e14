package redemption

import (
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
	any := api.Group("", auth.RequireRole("doctor", "eps", "patient"))
	any.POST("/redemptions", h.Create)
	any.GET("/redemptions/:id", h.Get)
	any.GET("/patients/:id/redemptions", h.ListByPatient)

	staff := api.Group("", auth.RequireRole("doctor", "eps"))
	staff.GET("/redemptions", h.List)
	staff.PATCH("/redemptions/:id", h.Update)
	staff.DELETE("/redemptions/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rd, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, rd)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rd, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rd)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// List handles the query-parameter driven redemption searches: by status,
// by date range, or by points range.
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

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" || to != "" {
		items, err := h.svc.ListByDateRange(ctx, from, to)
		if err != nil {
			return clinicerr.HTTPError(err)
		}
		return c.JSON(http.StatusOK, items)
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

	return echo.NewHTTPError(http.StatusBadRequest, "provide status, from/to or min_points/max_points")
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
	rd, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, rd)
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
