package emergency

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patientflow/internal/platform/auth"
	"github.com/ehr/patientflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the patient flow endpoints. ticketMW runs after the
// role check on POST /tickets only, so the public totem can be throttled.
func (h *Handler) RegisterRoutes(api *echo.Group, ticketMW ...echo.MiddlewareFunc) {
	// Totem and reception issue tickets
	tickets := api.Group("", append([]echo.MiddlewareFunc{auth.RequireRole(auth.RoleTotem, auth.RoleReceptionist)}, ticketMW...)...)
	tickets.POST("/tickets", h.IssueTicket)

	// Read endpoints – any staff
	read := api.Group("", auth.RequireRole(auth.RoleNurse, auth.RoleReceptionist, auth.RolePhysician))
	read.GET("/patients", h.ListPatients)
	read.GET("/patients/:id", h.GetPatient)
	read.GET("/queues/:stage", h.GetQueue)

	triage := api.Group("", auth.RequireRole(auth.RoleNurse))
	triage.POST("/patients/:id/triage/start", h.StartTriage)
	triage.POST("/patients/:id/triage/complete", h.CompleteTriage)

	admin := api.Group("", auth.RequireRole(auth.RoleReceptionist))
	admin.POST("/patients/:id/admin/start", h.StartAdmin)
	admin.POST("/patients/:id/admin/complete", h.CompleteAdmin)

	consult := api.Group("", auth.RequireRole(auth.RolePhysician))
	consult.POST("/patients/:id/consultation/start", h.StartConsultation)
	consult.POST("/patients/:id/consultation/complete", h.CompleteConsultation)

	staff := api.Group("", auth.RequireRole(auth.RoleNurse, auth.RoleReceptionist, auth.RolePhysician))
	staff.POST("/patients/:id/cancel", h.Cancel)
	staff.POST("/queues/:stage/next", h.CallNext)
}

// httpError maps service errors to HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type ticketRequest struct {
	Category Category `json:"category"`
	Phone    string   `json:"phone"`
}

func (h *Handler) IssueTicket(c echo.Context) error {
	var req ticketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.IssueTicket(c.Request().Context(), req.Category, req.Phone)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// ListPatients pages through all patients, newest first. With ?status=a,b it
// returns every patient in those statuses instead, oldest first.
func (h *Handler) ListPatients(c echo.Context) error {
	ctx := c.Request().Context()
	if raw := c.QueryParam("status"); raw != "" {
		var statuses []Status
		for _, s := range strings.Split(raw, ",") {
			st, err := ParseStatus(strings.TrimSpace(s))
			if err != nil {
				return httpError(err)
			}
			statuses = append(statuses, st)
		}
		items, err := h.svc.ListByStatus(ctx, statuses...)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, len(items), len(items), 0))
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(ctx, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) StartTriage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.StartTriage(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteTriage(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var data TriageData
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CompleteTriage(c.Request().Context(), id, data)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) StartAdmin(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.StartAdmin(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteAdmin(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var data PersonalData
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CompleteAdmin(c.Request().Context(), id, data)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) StartConsultation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.StartConsultation(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CompleteConsultation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var data ConsultationData
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.CompleteConsultation(c.Request().Context(), id, data)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req cancelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Cancel(c.Request().Context(), id, req.Reason)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) GetQueue(c echo.Context) error {
	stage, err := ParseStage(c.Param("stage"))
	if err != nil {
		return httpError(err)
	}
	items, err := h.svc.Queue(c.Request().Context(), stage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"stage":    stage,
		"patients": items,
	})
}

func (h *Handler) CallNext(c echo.Context) error {
	stage, err := ParseStage(c.Param("stage"))
	if err != nil {
		return httpError(err)
	}
	p, err := h.svc.CallNext(c.Request().Context(), stage)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
