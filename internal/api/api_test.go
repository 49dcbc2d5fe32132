package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/deepfsd/costing-sheet/internal/domain/costing"
	"github.com/deepfsd/costing-sheet/internal/domain/materials"
)

type fakeMatStore struct {
	mats []materials.Material
	hist []materials.HistoryEntry
}

func (s *fakeMatStore) Insert(_ context.Context, name string, value float64, unit string) (*materials.Material, error) {
	m := materials.Material{ID: uuid.New(), Name: name, Value: value, Unit: unit, CreatedAt: time.Now()}
	s.mats = append(s.mats, m)
	return &m, nil
}

func (s *fakeMatStore) Get(_ context.Context, id uuid.UUID) (*materials.Material, error) {
	for i := range s.mats {
		if s.mats[i].ID == id {
			m := s.mats[i]
			return &m, nil
		}
	}
	return nil, nil
}

func (s *fakeMatStore) UpdatePrice(_ context.Context, id uuid.UUID, value float64, unit string, updatedAt time.Time) error {
	for i := range s.mats {
		if s.mats[i].ID == id {
			s.mats[i].Value = value
			s.mats[i].Unit = unit
			s.mats[i].UpdatedAt = &updatedAt
		}
	}
	return nil
}

func (s *fakeMatStore) Delete(_ context.Context, id uuid.UUID) error {
	out := s.mats[:0]
	for _, m := range s.mats {
		if m.ID != id {
			out = append(out, m)
		}
	}
	s.mats = out
	return nil
}

func (s *fakeMatStore) DeleteAll(context.Context) error { s.mats = nil; return nil }

func (s *fakeMatStore) List(context.Context) ([]materials.Material, error) {
	out := make([]materials.Material, len(s.mats))
	copy(out, s.mats)
	return out, nil
}

func (s *fakeMatStore) InsertHistory(_ context.Context, materialID uuid.UUID, value float64, unit string) (*materials.HistoryEntry, error) {
	h := materials.HistoryEntry{ID: uuid.New(), MaterialID: materialID, Value: value, Unit: unit, CreatedAt: time.Now()}
	s.hist = append(s.hist, h)
	return &h, nil
}

func (s *fakeMatStore) ListHistory(_ context.Context, materialID uuid.UUID) ([]materials.HistoryEntry, error) {
	var out []materials.HistoryEntry
	for _, h := range s.hist {
		if h.MaterialID == materialID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *fakeMatStore) DeleteHistoryFor(_ context.Context, materialID uuid.UUID) error {
	out := s.hist[:0]
	for _, h := range s.hist {
		if h.MaterialID != materialID {
			out = append(out, h)
		}
	}
	s.hist = out
	return nil
}

func (s *fakeMatStore) DeleteAllHistory(context.Context) error { s.hist = nil; return nil }

type fakeCostStore struct {
	entries []costing.Entry
}

func (s *fakeCostStore) Insert(_ context.Context, d costing.Draft) (*costing.Entry, error) {
	e := costing.Entry{
		ID:                 uuid.New(),
		ProductDescription: d.ProductDescription,
		Packaging:          d.Packaging,
		Materials:          d.Materials,
		Comments:           d.Comments,
		ImageURL:           d.ImageURL,
		CreatedAt:          time.Now(),
	}
	s.entries = append(s.entries, e)
	return &e, nil
}

func (s *fakeCostStore) Get(_ context.Context, id uuid.UUID) (*costing.Entry, error) {
	for i := range s.entries {
		if s.entries[i].ID == id {
			e := s.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (s *fakeCostStore) Update(_ context.Context, id uuid.UUID, d costing.Draft) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].ProductDescription = d.ProductDescription
			s.entries[i].Packaging = d.Packaging
			s.entries[i].Materials = d.Materials
			s.entries[i].Comments = d.Comments
			s.entries[i].ImageURL = d.ImageURL
			return nil
		}
	}
	return costing.ErrNotFound
}

func (s *fakeCostStore) Delete(_ context.Context, id uuid.UUID) error {
	out := s.entries[:0]
	for _, e := range s.entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	s.entries = out
	return nil
}

func (s *fakeCostStore) List(context.Context) ([]costing.Entry, error) {
	out := make([]costing.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func newTestHandler() (*Handler, *fakeMatStore, *fakeCostStore) {
	mats := &fakeMatStore{}
	costs := &fakeCostStore{}
	svc := materials.NewService(mats, slog.Default())
	return New(slog.Default(), svc, costs, nil), mats, costs
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListMaterials(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/materials", `{"name":"Wood","value":200,"unit":"kg"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var created materials.Material
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Name != "wood" {
		t.Errorf("name = %q, want lowercase %q", created.Name, "wood")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/materials", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []materials.Material
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("list = %d items, want 1", len(list))
	}
}

func TestCreateMaterialValidation(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/materials", `{"name":"","value":10,"unit":"kg"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateMaterialIdempotent(t *testing.T) {
	h, store, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/materials", `{"name":"wood","value":10,"unit":"kg"}`)
	var created materials.Material
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, h, http.MethodPut, "/api/materials/"+created.ID.String(), `{"value":12,"unit":"kg"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var res materials.UpdateResult
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if !res.Changed {
		t.Error("first update should be Changed")
	}

	rec = doJSON(t, h, http.MethodPut, "/api/materials/"+created.ID.String(), `{"value":12,"unit":"kg"}`)
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Changed {
		t.Error("repeat update should be a no-op")
	}
	if len(store.hist) != 2 {
		t.Fatalf("history count = %d, want 2", len(store.hist))
	}
}

func TestUpdateMissingMaterial(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPut, "/api/materials/"+uuid.NewString(), `{"value":1,"unit":"kg"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListCostingsComputesCurrentCosts(t *testing.T) {
	h, _, costs := newTestHandler()

	_ = doJSON(t, h, http.MethodPost, "/api/materials", `{"name":"wood","value":200,"unit":"kg"}`)
	_ = doJSON(t, h, http.MethodPost, "/api/materials", `{"name":"paper","value":100,"unit":"kg"}`)

	rec := doJSON(t, h, http.MethodPost, "/api/costings",
		`{"product_description":"coffee set","materials":[{"name":"Wood","unit":2,"inUnit":"kg"},{"name":"paper","unit":1,"inUnit":"kg"},{"name":"ghost","unit":9,"inUnit":"kg"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	if len(costs.entries) != 1 {
		t.Fatalf("entries = %d", len(costs.entries))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/costings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var out []costing.Costed
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("costed entries = %d, want 1", len(out))
	}
	if out[0].TotalCost != 500 {
		t.Errorf("total = %v, want 500 (ghost line contributes 0)", out[0].TotalCost)
	}
	if out[0].LineCosts[2] != nil {
		t.Error("unresolved line must have nil cost")
	}
}

func TestGetCostingNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodGet, "/api/costings/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestUploadImageWithoutBlobStore(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doJSON(t, h, http.MethodPost, "/api/images", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
