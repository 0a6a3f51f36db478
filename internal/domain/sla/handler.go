package sla

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patientflow/internal/domain/emergency"
	"github.com/ehr/patientflow/internal/platform/auth"
)

// PatientReader is the repository surface the handler reads from.
type PatientReader interface {
	PatientLister
	GetByID(ctx context.Context, id uuid.UUID) (*emergency.Patient, error)
}

type Handler struct {
	patients PatientReader
	eval     *Evaluator
}

func NewHandler(patients PatientReader, eval *Evaluator) *Handler {
	return &Handler{patients: patients, eval: eval}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleNurse, auth.RoleReceptionist, auth.RolePhysician))
	read.GET("/patients/:id/sla", h.GetPatientSLA)
	read.GET("/sla/breaches", h.ListBreaches)
}

func (h *Handler) GetPatientSLA(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.patients.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, emergency.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.eval.Snapshot(p))
}

// ListBreaches reports every active patient currently over a budget.
func (h *Handler) ListBreaches(c echo.Context) error {
	patients, err := h.patients.ListByStatus(c.Request().Context(), activeStatuses()...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	reports := []Report{}
	for _, p := range patients {
		if h.eval.IsOverSLA(p).Any() {
			reports = append(reports, h.eval.Snapshot(p))
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":    len(reports),
		"patients": reports,
	})
}
