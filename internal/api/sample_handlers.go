package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"biodiversity/internal/db"
)

// getNames returns every sample column of the abundance table
func (h *Handlers) getNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.SampleNames(r.Context())
	if err != nil {
		h.respondError(w, r, "Failed to fetch sample names", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// getOTUs returns the lineage of every OTU in row order
func (h *Handlers) getOTUs(w http.ResponseWriter, r *http.Request) {
	descriptions, err := h.store.OTUDescriptions(r.Context())
	if err != nil {
		h.respondError(w, r, "Failed to fetch OTU descriptions", err)
		return
	}
	writeJSON(w, http.StatusOK, descriptions)
}

// getSampleMetadata returns the metadata record for a sample such as BB_940
func (h *Handlers) getSampleMetadata(w http.ResponseWriter, r *http.Request) {
	sampleID, err := db.ParseSampleID(chi.URLParam(r, "sample"))
	if err != nil {
		h.respondError(w, r, "Invalid sample name", err)
		return
	}

	metadata, err := h.store.SampleMetadata(r.Context(), sampleID)
	if err != nil {
		h.respondError(w, r, "Failed to fetch sample metadata", err)
		return
	}
	writeJSON(w, http.StatusOK, metadata)
}

// getWashingFrequency returns {"WFREQ": n} for a sample such as BB_940
func (h *Handlers) getWashingFrequency(w http.ResponseWriter, r *http.Request) {
	sampleID, err := db.ParseSampleID(chi.URLParam(r, "sample"))
	if err != nil {
		h.respondError(w, r, "Invalid sample name", err)
		return
	}

	wfreq, err := h.store.WashingFrequency(r.Context(), sampleID)
	if err != nil {
		h.respondError(w, r, "Failed to fetch washing frequency", err)
		return
	}
	writeJSON(w, http.StatusOK, wfreq)
}

// getSampleValues returns the OTU ids and abundances of one sample column,
// highest abundance first
func (h *Handlers) getSampleValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.store.SampleValues(r.Context(), chi.URLParam(r, "sampleName"))
	if err != nil {
		h.respondError(w, r, "Failed to fetch sample values", err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}
