package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/deepfsd/costing-sheet/internal/domain/costing"
	"github.com/deepfsd/costing-sheet/internal/domain/materials"
)

// Uploader — контракт blob-хранилища для картинок товаров.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Handler struct {
	log   *slog.Logger
	mats  *materials.Service
	costs costing.Store
	blobs Uploader // nil — загрузка картинок выключена
	mux   *http.ServeMux
}

func New(log *slog.Logger, mats *materials.Service, costs costing.Store, blobs Uploader) *Handler {
	h := &Handler{log: log, mats: mats, costs: costs, blobs: blobs, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/materials", h.listMaterials)
	h.mux.HandleFunc("POST /api/materials", h.createMaterial)
	h.mux.HandleFunc("DELETE /api/materials", h.deleteAllMaterials)
	h.mux.HandleFunc("POST /api/materials/import", h.importMaterials)
	h.mux.HandleFunc("GET /api/materials/{id}", h.getMaterial)
	h.mux.HandleFunc("PUT /api/materials/{id}", h.updateMaterial)
	h.mux.HandleFunc("DELETE /api/materials/{id}", h.deleteMaterial)
	h.mux.HandleFunc("GET /api/materials/{id}/history", h.listHistory)

	h.mux.HandleFunc("GET /api/costings", h.listCostings)
	h.mux.HandleFunc("POST /api/costings", h.createCosting)
	h.mux.HandleFunc("POST /api/costings/import", h.importCostings)
	h.mux.HandleFunc("GET /api/costings/{id}", h.getCosting)
	h.mux.HandleFunc("PUT /api/costings/{id}", h.updateCosting)
	h.mux.HandleFunc("DELETE /api/costings/{id}", h.deleteCosting)

	h.mux.HandleFunc("POST /api/images", h.uploadImage)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response failed", "err", err)
	}
}

// fail транслирует доменные ошибки в статусы: валидация — 400, не найдено —
// 404, остальное логируем и отдаём общий 500 без деталей и без ретраев.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *materials.ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, materials.ErrNotFound), errors.Is(err, costing.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
