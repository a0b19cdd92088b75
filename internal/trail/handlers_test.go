package trail

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func passThrough(c *fiber.Ctx) error { return c.Next() }

func newTrailApp(svc *Service) (*fiber.App, *Catalog) {
	catalog := NewCatalog(NewStore([]Trail{
		{Name: "A", GeoJSON: lineA, TotalRealDistance: 2.4},
		{Name: "Old Rag", GeoJSON: lineA, TotalRealDistance: 9.1},
		{Name: "Broken", GeoJSON: "{"},
	}))
	app := fiber.New()
	RegisterRoutes(app.Group("/trails"), catalog, svc, passThrough)
	return app, catalog
}

func TestTrailHandlersRead(t *testing.T) {
	app, _ := newTrailApp(NewService(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/trails/", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("list status: %v", err)
	}
	var sums []Summary
	if err := json.NewDecoder(resp.Body).Decode(&sums); err != nil || len(sums) != 3 {
		t.Fatalf("decode list: %v (%d)", err, len(sums))
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/trails/Old%20Rag", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("escaped name status: %d", resp.StatusCode)
	}
	var tr Trail
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || tr.Name != "Old Rag" {
		t.Fatalf("decode trail: %v %+v", err, tr)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/trails/A/profile", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status: %d", resp.StatusCode)
	}
	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil || p.Waypoints != 3 || p.DomainEnd != 3 {
		t.Fatalf("decode profile: %v %+v", err, p)
	}

	cases := map[string]int{
		"/trails/Nope":           http.StatusNotFound,
		"/trails/Nope/profile":   http.StatusNotFound,
		"/trails/Broken/profile": http.StatusUnprocessableEntity,
	}
	for path, status := range cases {
		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if resp.StatusCode != status {
			t.Fatalf("%s: expected %d, got %d", path, status, resp.StatusCode)
		}
	}
}

func TestTrailHandlersImport(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO trails`).
		WithArgs("New", lineA, 3.0, pgxmock.AnyArg(), 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT name, geo_json`).
		WillReturnRows(pgxmock.NewRows(trailColumns).
			AddRow("A", lineA, 2.4, []byte(`{}`)).
			AddRow("New", lineA, 3.0, []byte(`{}`)))

	app, catalog := newTrailApp(NewService(mock))
	held := catalog.Current()

	body := "name,geoJson,total_real_distance\nNew," + csvQuote(lineA) + ",3\n"
	req := httptest.NewRequest(http.MethodPost, "/trails/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status: %v %d", err, resp.StatusCode)
	}
	var result struct {
		Imported int `json:"imported"`
		Total    int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Imported != 1 || result.Total != 2 {
		t.Fatalf("unexpected result %+v (%v)", result, err)
	}

	if _, err := catalog.Current().Lookup("New"); err != nil {
		t.Fatalf("catalog not replaced")
	}
	if _, err := catalog.Current().Lookup("Broken"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replaced catalog mirrors the table")
	}
	if held.Len() != 3 {
		t.Fatalf("previous store must be untouched")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrailHandlersImportErrors(t *testing.T) {
	app, _ := newTrailApp(NewService(nil))
	req := httptest.NewRequest(http.MethodPost, "/trails/import", strings.NewReader("name,geoJson\nA,{}\n"))
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database, got %d", resp.StatusCode)
	}

	mock := newMock(t)
	app, _ = newTrailApp(NewService(mock))
	for body, status := range map[string]int{
		"name,distance\nA,1\n": http.StatusBadRequest,
		"name,geoJson\n":       http.StatusBadRequest,
	} {
		resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/trails/import", strings.NewReader(body)))
		if resp.StatusCode != status {
			t.Fatalf("%q: expected %d, got %d", body, status, resp.StatusCode)
		}
	}

	mock.ExpectBegin().WillReturnError(errors.New("down"))
	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/trails/import", strings.NewReader("name,geoJson\nA,{}\n")))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 on storage error, got %d", resp.StatusCode)
	}

	guarded := fiber.New()
	RegisterRoutes(guarded.Group("/trails"), NewCatalog(nil), NewService(mock), func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	})
	resp, _ = guarded.Test(httptest.NewRequest(http.MethodPost, "/trails/import", strings.NewReader("")))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
