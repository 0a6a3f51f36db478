package manchester

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/patientflow/internal/platform/auth"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	m, err := NewMatcher(16, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return NewHandler(m), echo.New()
}

func TestHandler_Suggest(t *testing.T) {
	h, e := newTestHandler(t)

	body := `{"complaints":"dor no peito","symptoms":"","vitals":{"oxygen_saturation":85}}`
	req := httptest.NewRequest(http.MethodPost, "/triage/suggest", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Suggest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Flows []FlowSuggestion `json:"flows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Flows) == 0 {
		t.Fatal("expected suggestions")
	}
	first := resp.Flows[0]
	if first.ID != "chest_pain" {
		t.Errorf("expected chest_pain, got %s", first.ID)
	}
	if first.SpecialtyLabel != "Clínica Médica" {
		t.Errorf("expected Clínica Médica, got %q", first.SpecialtyLabel)
	}
	if first.SuggestedPriority != PriorityRed {
		t.Errorf("expected vermelho for SpO2 85, got %s", first.SuggestedPriority)
	}
}

func TestHandler_Suggest_NoMatch(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/triage/suggest", strings.NewReader(`{"complaints":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Suggest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"flows":[]}` {
		t.Errorf("expected empty flows, got %s", got)
	}
}

func TestHandler_Suggest_BadJSON(t *testing.T) {
	h, e := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/triage/suggest", strings.NewReader(`{"complaints":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Suggest(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_ListFlows(t *testing.T) {
	h, e := newTestHandler(t)
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/flows", nil), rec)

	if err := h.ListFlows(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var flows []ClinicalFlow
	if err := json.Unmarshal(rec.Body.Bytes(), &flows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(flows) != len(Catalog()) {
		t.Errorf("expected %d flows, got %d", len(Catalog()), len(flows))
	}
}

func TestHandler_GetFlow(t *testing.T) {
	h, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("chest_pain")
	if err := h.GetFlow(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var f ClinicalFlow
	_ = json.Unmarshal(rec.Body.Bytes(), &f)
	if f.ID != "chest_pain" || f.DefaultPriority != PriorityOrange {
		t.Errorf("unexpected flow %+v", f)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("no_such_flow")
	err := h.GetFlow(c)
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_GetSpecialty(t *testing.T) {
	h, e := newTestHandler(t)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("key")
	c.SetParamValues(SpecialtyPediatria)
	if err := h.GetSpecialty(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var s Specialty
	_ = json.Unmarshal(rec.Body.Bytes(), &s)
	if s.Label != "Pediatria" {
		t.Errorf("expected Pediatria, got %q", s.Label)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("key")
	c.SetParamValues("cardiologia")
	err := h.GetSpecialty(c)
	if httpErr, ok := err.(*echo.HTTPError); !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_RegisterRoutes_RoleEnforcement(t *testing.T) {
	h, e := newTestHandler(t)

	var roles []string
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.WithUser(c.Request().Context(), "u1", roles...)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	h.RegisterRoutes(api)

	tests := []struct {
		roles  []string
		method string
		path   string
		want   int
	}{
		{[]string{auth.RoleNurse}, http.MethodGet, "/api/v1/flows", http.StatusOK},
		{[]string{auth.RoleTotem}, http.MethodGet, "/api/v1/flows", http.StatusForbidden},
		{[]string{auth.RoleReceptionist}, http.MethodPost, "/api/v1/triage/suggest", http.StatusForbidden},
		{[]string{auth.RoleNurse}, http.MethodPost, "/api/v1/triage/suggest", http.StatusOK},
	}
	for _, tt := range tests {
		roles = tt.roles
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"complaints":"febre"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%v %s %s: expected %d, got %d", tt.roles, tt.method, tt.path, tt.want, rec.Code)
		}
	}
}
