package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-trailview/internal/view/elevation"

	"github.com/gofiber/fiber/v2"
)

func newApp(t *testing.T) (*fiber.App, *Manager) {
	t.Helper()
	m, _ := newManager(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), m)
	return app, m
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestSessionHandlersFlow(t *testing.T) {
	app, m := newApp(t)

	resp := do(t, app, http.MethodPost, "/sessions/", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.ID == "" {
		t.Fatalf("decode session: %v", err)
	}
	base := "/sessions/" + created.ID

	resp = do(t, app, http.MethodPut, base+"/selection", map[string]string{"name": "A"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select status: %d", resp.StatusCode)
	}
	var chart elevation.Model
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if chart.Empty || chart.Trail != "A" {
		t.Fatalf("unexpected chart %+v", chart)
	}

	resp = do(t, app, http.MethodPost, base+"/hover", map[string]float64{"x": 150})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("hover status: %d", resp.StatusCode)
	}
	resp = do(t, app, http.MethodGet, base+"/views/elevation", nil)
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if chart.Label != "Elevation - 150ft" {
		t.Fatalf("unexpected label %q", chart.Label)
	}

	for _, view := range []string{"map", "terrain"} {
		resp = do(t, app, http.MethodGet, base+"/views/"+view, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s view status: %d", view, resp.StatusCode)
		}
	}

	resp = do(t, app, http.MethodDelete, base+"/hover", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("leave status: %d", resp.StatusCode)
	}
	resp = do(t, app, http.MethodDelete, base+"/selection", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("deselect status: %d", resp.StatusCode)
	}

	resp = do(t, app, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("close status: %d", resp.StatusCode)
	}
	if m.Len() != 0 {
		t.Fatalf("expected session removed")
	}
	resp = do(t, app, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second close status: %d", resp.StatusCode)
	}
}

func TestSessionHandlersErrors(t *testing.T) {
	app, m := newApp(t)
	s := m.Create()
	base := "/sessions/" + s.ID

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown session", http.MethodGet, "/sessions/nope/views/map", nil, http.StatusNotFound},
		{"unknown trail", http.MethodPut, base + "/selection", map[string]string{"name": "Z"}, http.StatusNotFound},
		{"missing name", http.MethodPut, base + "/selection", map[string]string{}, http.StatusBadRequest},
		{"missing x", http.MethodPost, base + "/hover", map[string]string{}, http.StatusBadRequest},
		{"hover without session", http.MethodPost, "/sessions/nope/hover", map[string]float64{"x": 1}, http.StatusNotFound},
	}
	for _, tc := range cases {
		resp := do(t, app, tc.method, tc.path, tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, resp.StatusCode)
		}
	}
}
