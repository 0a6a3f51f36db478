package manchester

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/patientflow/internal/platform/auth"
)

type Handler struct {
	matcher *Matcher
}

func NewHandler(matcher *Matcher) *Handler {
	return &Handler{matcher: matcher}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole(auth.RoleNurse, auth.RoleReceptionist, auth.RolePhysician))
	readGroup.GET("/flows", h.ListFlows)
	readGroup.GET("/flows/:id", h.GetFlow)
	readGroup.GET("/specialties", h.ListSpecialties)
	readGroup.GET("/specialties/:key", h.GetSpecialty)

	triageGroup := api.Group("", auth.RequireRole(auth.RoleNurse, auth.RolePhysician))
	triageGroup.POST("/triage/suggest", h.Suggest)
}

// SuggestRequest carries the free text typed into the triage form.
type SuggestRequest struct {
	Complaints string `json:"complaints"`
	Symptoms   string `json:"symptoms"`
	Vitals     Vitals `json:"vitals"`
	PainScale  *int   `json:"pain_scale,omitempty"`
}

// FlowSuggestion is a ranked flow annotated for display.
type FlowSuggestion struct {
	ClinicalFlow
	SpecialtyLabel    string   `json:"specialty_label,omitempty"`
	SuggestedPriority Priority `json:"suggested_priority"`
}

func (h *Handler) Suggest(c echo.Context) error {
	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	flows := h.matcher.Suggest(req.Complaints, req.Symptoms)
	items := make([]FlowSuggestion, 0, len(flows))
	for _, f := range flows {
		s := FlowSuggestion{
			ClinicalFlow:      f,
			SuggestedPriority: SuggestPriority(f, req.Vitals, req.PainScale),
		}
		if f.Specialty != "" {
			s.SpecialtyLabel = SpecialtyLabel(f.Specialty)
		}
		items = append(items, s)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"flows": items})
}

func (h *Handler) ListFlows(c echo.Context) error {
	return c.JSON(http.StatusOK, Catalog())
}

func (h *Handler) GetFlow(c echo.Context) error {
	f, ok := FlowByID(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "clinical flow not found")
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) ListSpecialties(c echo.Context) error {
	return c.JSON(http.StatusOK, Specialties())
}

func (h *Handler) GetSpecialty(c echo.Context) error {
	key := c.Param("key")
	if !KnownSpecialty(key) {
		return echo.NewHTTPError(http.StatusNotFound, "specialty not found")
	}
	return c.JSON(http.StatusOK, Specialty{Key: key, Label: SpecialtyLabel(key)})
}
