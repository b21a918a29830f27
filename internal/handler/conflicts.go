package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// ListConflicts returns detected conflicts, unresolved ones by default
func (h *Handler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	unresolvedOnly := true
	if v := r.URL.Query().Get("unresolved"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, "Invalid unresolved filter", err.Error(), http.StatusBadRequest)
			return
		}
		unresolvedOnly = parsed
	}

	conflicts, err := h.corr.ListConflicts(r.Context(), unresolvedOnly)
	if err != nil {
		log.Printf("Failed to list conflicts: %v", err)
		writeError(w, "Failed to list conflicts", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, conflicts, http.StatusOK)
}

// resolveRequest carries the operator's resolution note
type resolveRequest struct {
	Resolution string `json:"resolution"`
	ResolvedBy string `json:"resolved_by"`
}

// ResolveConflict marks one conflict resolved
func (h *Handler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid conflict ID", "Conflict ID is required", http.StatusBadRequest)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.ResolvedBy == "" {
		req.ResolvedBy = "operator"
	}

	conflict, err := h.corr.ResolveConflict(r.Context(), id, req.Resolution, req.ResolvedBy)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to resolve conflict: %v", err)
		writeError(w, "Failed to resolve conflict", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, conflict, http.StatusOK)
}

// ListIdentities returns device identities
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	activeOnly := true
	if v := r.URL.Query().Get("active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, "Invalid active filter", err.Error(), http.StatusBadRequest)
			return
		}
		activeOnly = parsed
	}

	identities, err := h.topo.ListIdentities(r.Context(), activeOnly)
	if err != nil {
		log.Printf("Failed to list identities: %v", err)
		writeError(w, "Failed to list identities", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, identities, http.StatusOK)
}

// TriggerCorrelation runs one correlation pass
func (h *Handler) TriggerCorrelation(w http.ResponseWriter, r *http.Request) {
	result, err := h.corr.Correlate(r.Context())
	if err != nil {
		log.Printf("Correlation failed: %v", err)
		writeError(w, "Correlation failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, result, http.StatusOK)
}
