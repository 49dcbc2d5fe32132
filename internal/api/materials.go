package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/deepfsd/costing-sheet/internal/domain/materials"
	"github.com/deepfsd/costing-sheet/internal/importer"
)

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	mats, err := h.mats.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if mats == nil {
		mats = []materials.Material{}
	}
	h.writeJSON(w, http.StatusOK, mats)
}

func (h *Handler) createMaterial(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	m, err := h.mats.Create(r.Context(), req.Name, req.Value, req.Unit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.mats.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.mats.UpdateWithHistory(r.Context(), id, req.Value, req.Unit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.mats.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteAllMaterials(w http.ResponseWriter, r *http.Request) {
	if err := h.mats.DeleteAll(r.Context()); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	hist, err := h.mats.ListHistory(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if hist == nil {
		hist = []materials.HistoryEntry{}
	}
	h.writeJSON(w, http.StatusOK, hist)
}

func (h *Handler) importMaterials(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	reports, err := importer.ImportMaterials(r.Context(), h.mats, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}
