package sla

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/patientflow/internal/domain/emergency"
)

func newTestHandler(t *testing.T, patients ...*emergency.Patient) (*Handler, *echo.Echo) {
	repo := emergency.NewMemoryRepo()
	seed(t, repo, patients...)
	return NewHandler(repo, fixedEvaluator(now)), echo.New()
}

func TestHandler_GetPatientSLA(t *testing.T) {
	p := patientWith(emergency.StatusWaitingTriage, emergency.Timestamps{emergency.EventGenerated: ago(15)})
	h, e := newTestHandler(t, p)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.GetPatientSLA(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		SLA    map[string]bool `json:"sla"`
		Phases []Phase         `json:"phases"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.SLA["triageSLA"] || body.SLA["totalSLA"] {
		t.Errorf("unexpected sla flags %v", body.SLA)
	}
	if len(body.Phases) != 2 {
		t.Errorf("expected wait_triage and total phases, got %+v", body.Phases)
	}
}

func TestHandler_GetPatientSLA_Errors(t *testing.T) {
	h, e := newTestHandler(t)

	tests := []struct {
		id   string
		code int
	}{
		{"nope", http.StatusBadRequest},
		{uuid.New().String(), http.StatusNotFound},
	}
	for _, tt := range tests {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(tt.id)
		err := h.GetPatientSLA(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != tt.code {
			t.Errorf("id %s: expected %d, got %v", tt.id, tt.code, err)
		}
	}
}

func TestHandler_ListBreaches(t *testing.T) {
	over := patientWith(emergency.StatusWaitingTriage, emergency.Timestamps{emergency.EventGenerated: ago(15)})
	ok := patientWith(emergency.StatusWaitingTriage, emergency.Timestamps{emergency.EventGenerated: ago(5)})
	h, e := newTestHandler(t, over, ok)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := h.ListBreaches(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Total    int      `json:"total"`
		Patients []Report `json:"patients"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Total != 1 || body.Patients[0].PatientID != over.ID.String() {
		t.Errorf("unexpected body %+v", body)
	}
}
