package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deepfsd/costing-sheet/internal/domain/costing"
	"github.com/deepfsd/costing-sheet/internal/importer"
)

// Стоимости считаются на каждое чтение от текущих цен материалов —
// итог записи меняется вместе с прайсом, так и задумано.
func (h *Handler) listCostings(w http.ResponseWriter, r *http.Request) {
	entries, err := h.costs.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mats, err := h.mats.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]costing.Costed, 0, len(entries))
	for _, e := range entries {
		out = append(out, costing.CostEntry(e, mats))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCosting(w http.ResponseWriter, r *http.Request) {
	var d costing.Draft
	if !h.decode(w, r, &d) {
		return
	}
	e, err := h.costs.Insert(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) getCosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.costs.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if e == nil {
		h.fail(w, r, costing.ErrNotFound)
		return
	}
	mats, err := h.mats.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, costing.CostEntry(*e, mats))
}

func (h *Handler) updateCosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var d costing.Draft
	if !h.decode(w, r, &d) {
		return
	}
	if err := h.costs.Update(r.Context(), id, d); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteCosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.costs.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) importCostings(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	reports, err := importer.ImportCostings(r.Context(), h.costs, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	if h.blobs == nil {
		http.Error(w, "image storage is not configured", http.StatusServiceUnavailable)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	key := fmt.Sprintf("uploads/%d-%s", time.Now().UnixMilli(), header.Filename)
	url, err := h.blobs.Upload(r.Context(), key, data, header.Header.Get("Content-Type"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
