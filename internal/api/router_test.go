package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/services"
	"deliwaste/server/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	store  store.Store
	hub    *Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	st := store.NewMemoryStore()
	cache := services.NopCache{}
	hub := NewHub(log)

	dashboard := services.NewDashboardService(st, cache, time.UTC, log)
	plan := services.NewTomorrowPlanService(st, cache, services.DefaultPlanSettings(), time.UTC, log)
	items := services.NewItemService(st, cache, log)
	waste := services.NewWasteService(st, cache, nil, log)
	export := services.NewExportService(st, log)

	today := func() string { return services.FormatDate(dashboard.Today()) }
	router := NewRouter(Controllers{
		Analytics: NewAnalyticsController(dashboard, plan, log),
		Items:     NewItemController(items, log),
		Waste:     NewWasteController(waste, export, today, log),
		WS:        NewWSController(hub, []string{"*"}, log),
	}, []string{"http://localhost:3000"}, log)

	return &testServer{router: router, store: st, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		default:
			var err error
			if raw, err = json.Marshal(b); err != nil {
				t.Fatalf("marshal body: %v", err)
			}
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) addItem(t *testing.T, name string, unit models.Unit) models.Item {
	t.Helper()
	item := models.Item{Name: name, Unit: unit, IsActive: true}
	if err := s.store.CreateItem(context.Background(), &item); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return item
}

func (s *testServer) addWaste(t *testing.T, itemID, date string, qty float64) {
	t.Helper()
	entry := models.WasteEntry{ItemID: itemID, EntryDate: date, Quantity: qty}
	if err := s.store.CreateWaste(context.Background(), &entry); err != nil {
		t.Fatalf("CreateWaste: %v", err)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	decode(t, w, &body)
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
}

func TestItems_CreateListUpdate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/items", map[string]interface{}{"name": "  Bagel ", "unit": "pieces"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %s", w.Code, w.Body.String())
	}
	var created models.Item
	decode(t, w, &created)
	if created.Name != "Bagel" || !created.IsActive || created.ID == "" {
		t.Fatalf("created = %+v", created)
	}

	w = s.do(t, http.MethodPost, "/api/v1/items", map[string]interface{}{"name": "Bagel", "unit": "kg"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", w.Code)
	}

	w = s.do(t, http.MethodPut, "/api/v1/items", map[string]interface{}{
		"id": created.ID, "name": "Bagel", "unit": "pieces", "is_active": false,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d body %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/api/v1/items", nil)
	var all []models.Item
	decode(t, w, &all)
	if len(all) != 1 || all[0].IsActive {
		t.Fatalf("items = %+v, want one inactive item", all)
	}

	w = s.do(t, http.MethodGet, "/api/v1/items?include_inactive=false", nil)
	var active []models.Item
	decode(t, w, &active)
	if len(active) != 0 {
		t.Fatalf("active items = %+v, want none", active)
	}

	w = s.do(t, http.MethodGet, "/api/v1/items?include_inactive=maybe", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad flag status = %d, want 400", w.Code)
	}
}

func TestItems_UpdateUnknown(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodPut, "/api/v1/items", map[string]interface{}{
		"id": "missing", "name": "Wrap", "unit": "pieces", "is_active": true,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] == "" || body["details"] == "" {
		t.Errorf("error body = %v", body)
	}
}

func TestWaste_LogAndList(t *testing.T) {
	s := newTestServer(t)
	item := s.addItem(t, "Croissant", models.UnitPieces)

	w := s.do(t, http.MethodPost, "/api/v1/waste", map[string]interface{}{
		"entry_date": "2024-03-04", "item_id": item.ID, "quantity": 3, "note": "  burnt ",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("log status = %d body %s", w.Code, w.Body.String())
	}
	var created map[string]string
	decode(t, w, &created)
	if created["id"] == "" {
		t.Fatal("missing id in response")
	}

	w = s.do(t, http.MethodGet, "/api/v1/waste?start_date=2024-03-01&end_date=2024-03-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list services.WasteList
	decode(t, w, &list)
	if list.Total != 1 || len(list.Rows) != 1 {
		t.Fatalf("list = %+v", list)
	}
	row := list.Rows[0]
	if row.ItemName != "Croissant" || row.Quantity != 3 || row.Note == nil || *row.Note != "burnt" {
		t.Errorf("row = %+v", row)
	}
}

func TestWaste_Errors(t *testing.T) {
	s := newTestServer(t)
	item := s.addItem(t, "Soup", models.UnitKg)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/v1/waste", "{", http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/v1/waste", map[string]interface{}{"entry_date": "2024-3-4", "item_id": item.ID, "quantity": 1}, http.StatusBadRequest},
		{"zero quantity", http.MethodPost, "/api/v1/waste", map[string]interface{}{"entry_date": "2024-03-04", "item_id": item.ID, "quantity": 0}, http.StatusBadRequest},
		{"unknown item", http.MethodPost, "/api/v1/waste", map[string]interface{}{"entry_date": "2024-03-04", "item_id": "nope", "quantity": 1}, http.StatusNotFound},
		{"limit too big", http.MethodGet, "/api/v1/waste?limit=500", nil, http.StatusBadRequest},
		{"limit not a number", http.MethodGet, "/api/v1/waste?limit=abc", nil, http.StatusBadRequest},
		{"negative offset", http.MethodGet, "/api/v1/waste?offset=-1", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	bagel := s.addItem(t, "Bagel", models.UnitPieces)
	s.addWaste(t, bagel.ID, "2024-03-04", 4)
	s.addWaste(t, bagel.ID, "2024-03-06", 2)
	s.addWaste(t, bagel.ID, "2024-02-27", 3)

	w := s.do(t, http.MethodGet, "/api/v1/dashboard?view=week&anchor_date=2024-03-06", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var d services.Dashboard
	decode(t, w, &d)
	if d.RangeStart != "2024-03-04" || d.RangeEnd != "2024-03-10" {
		t.Errorf("range = %s..%s", d.RangeStart, d.RangeEnd)
	}
	if d.TotalWaste != 6 {
		t.Errorf("total = %v, want 6", d.TotalWaste)
	}
	if len(d.Trend) != 7 {
		t.Errorf("trend points = %d, want 7", len(d.Trend))
	}
	if len(d.Comparisons) != 3 {
		t.Fatalf("comparisons = %d, want 3", len(d.Comparisons))
	}
	week := d.Comparisons[1]
	if week.Label != services.LabelWeekComparison || week.CurrentTotal != 6 || week.PreviousTotal != 3 {
		t.Errorf("week comparison = %+v", week)
	}

	w = s.do(t, http.MethodGet, "/api/v1/dashboard?view=year", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad view status = %d, want 400", w.Code)
	}
	w = s.do(t, http.MethodGet, "/api/v1/dashboard?anchor_date=06-03-2024", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad anchor status = %d, want 400", w.Code)
	}
}

func TestTomorrowPlan(t *testing.T) {
	s := newTestServer(t)
	s.addItem(t, "Salad", models.UnitKg)

	w := s.do(t, http.MethodGet, "/api/v1/tomorrow-plan?target_date=2024-03-08", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	var plan services.PlanResult
	decode(t, w, &plan)
	if plan.TargetDate != "2024-03-08" || len(plan.Items) != 1 {
		t.Fatalf("plan = %+v", plan)
	}
	if plan.Items[0].Confidence != services.ConfidenceLow {
		t.Errorf("confidence = %s, want low", plan.Items[0].Confidence)
	}

	w = s.do(t, http.MethodGet, "/api/v1/tomorrow-plan?target_date=tomorrow", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad target status = %d, want 400", w.Code)
	}
}

func TestExportWaste(t *testing.T) {
	s := newTestServer(t)
	item := s.addItem(t, "Muffin", models.UnitPieces)
	s.addWaste(t, item.ID, "2024-03-04", 2)

	w := s.do(t, http.MethodGet, "/api/v1/waste/export?start_date=2024-03-01&end_date=2024-03-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "waste_2024-03-01_2024-03-31.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}
	if w.Body.Len() == 0 {
		t.Error("empty workbook")
	}

	w = s.do(t, http.MethodGet, "/api/v1/waste/export?start_date=2024-03-31&end_date=2024-03-01", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("reversed range status = %d, want 400", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/waste", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}
