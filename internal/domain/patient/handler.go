package patient

import (
	"net/http"
	"strconv"
	"time"

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
	staff := api.Group("", auth.RequireRole("doctor", "eps"))
	staff.POST("/patients", h.Create)
	staff.GET("/patients/eligible", h.ListEligible)
	staff.GET("/patients/low-balance", h.ListBelow)
	staff.GET("/eps/:id/patients", h.ListByEPS)
	staff.POST("/patients/:id/credit", h.Credit)
	staff.POST("/patients/:id/debit", h.Debit)
	staff.POST("/patients/:id/visit", h.RecordVisit)
	staff.PATCH("/patients/:id", h.Update)

	any := api.Group("", auth.RequireRole("doctor", "eps", "patient"))
	any.GET("/patients/:id", h.Get)
	any.GET("/users/:id/patient", h.GetByUser)
	any.GET("/patients/:id/balance", h.Balance)
	any.GET("/patients/:id/points", h.PointHistory)
}

func (h *Handler) Create(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateProfile(c.Request().Context(), &p); err != nil {
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

func (h *Handler) GetByUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), id, in)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListByEPS(c echo.Context) error {
	epsID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByEPS(c.Request().Context(), epsID, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListEligible(c echo.Context) error {
	cost, err := strconv.Atoi(c.QueryParam("cost"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cost")
	}
	items, err := h.svc.ListEligible(c.Request().Context(), cost)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListBelow(c echo.Context) error {
	n, err := strconv.Atoi(c.QueryParam("points"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid points")
	}
	items, err := h.svc.ListBelow(c.Request().Context(), n)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Balance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	points, err := h.svc.Balance(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"points": points})
}

func (h *Handler) PointHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PointHistory(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type adjustRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (h *Handler) Credit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Credit(c.Request().Context(), id, req.Amount, req.Reason); err != nil {
		return clinicerr.HTTPError(err)
	}
	points, err := h.svc.Balance(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"points": points})
}

func (h *Handler) Debit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req adjustRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Debit(c.Request().Context(), id, req.Amount, req.Reason); err != nil {
		return clinicerr.HTTPError(err)
	}
	points, err := h.svc.Balance(c.Request().Context(), id)
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"points": points})
}

func (h *Handler) RecordVisit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.RecordVisit(c.Request().Context(), id, time.Now().UTC())
	if err != nil {
		return clinicerr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}
