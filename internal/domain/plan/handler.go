package plan

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
	doctor := api.Group("", auth.RequireRole("doctor"))
	doctor.POST("/plans", h.Create)
	doctor.PATCH("/plans/:id", h.Update)
	doctor.DELETE("/plans/:id", h.Delete)
	doctor.POST("/plans/:id/activate", h.Activate)
	doctor.POST("/plans/:id/deactivate", h.Deactivate)
	doctor.POST("/plans/:id/complete", h.Complete)
	doctor.POST("/plans/:id/cancel", h.Cancel)
	doctor.GET("/doctors/:id/plans", h.ListByDoctor)

	staff := api.Group("", auth.RequireRole("doctor", "eps"))
	staff.GET("/plans", h.List)
	staff.GET("/plans/expired", h.Expired)
	staff.GET("/plans/expiring-soon", h.ExpiringSoon)
	staff.GET("/plans/overlapping", h.Overlapping)

	any := api.Group("", auth.RequireRole("doctor", "eps", "patient"))
	any.GET("/plans/:id", h.Get)
	any.GET("/patients/:id/plans", h.ListByPatient)
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

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
	items, total, err := h.svc.ListAll(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
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

func (h *Handler) ListByDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Expired(c echo.Context) error {
	items, err := h.svc.Expired(c.Request().Context())
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ExpiringSoon(c echo.Context) error {
	n := 0
	if raw := c.QueryParam("days"); raw != "" {
		var err error
		if n, err = strconv.Atoi(raw); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days")
		}
	}
	items, err := h.svc.ExpiringSoon(c.Request().Context(), n)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Overlapping(c echo.Context) error {
	items, err := h.svc.Overlapping(c.Request().Context(), c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
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
	p, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Activate(c echo.Context) error   { return h.doTransition(c, h.svc.Activate) }
func (h *Handler) Deactivate(c echo.Context) error { return h.doTransition(c, h.svc.Deactivate) }
func (h *Handler) Complete(c echo.Context) error   { return h.doTransition(c, h.svc.Complete) }
func (h *Handler) Cancel(c echo.Context) error     { return h.doTransition(c, h.svc.Cancel) }

func (h *Handler) doTransition(c echo.Context, fn func(ctx context.Context, id uuid.UUID) (*Plan, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := fn(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
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
