package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"netograph/internal/domain"
	"netograph/internal/repository"
)

// ListHosts returns the canonical host set
func (h *Handler) ListHosts(w http.ResponseWriter, r *http.Request) {
	var filter repository.HostFilter
	q := r.URL.Query()

	if v := q.Get("vlan"); v != "" {
		vlan, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, "Invalid vlan filter", err.Error(), http.StatusBadRequest)
			return
		}
		filter.VLANID = vlan
	}
	if v := q.Get("include_inactive"); v != "" {
		inactive, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, "Invalid include_inactive", err.Error(), http.StatusBadRequest)
			return
		}
		filter.IncludeInactive = inactive
	}

	hosts, err := h.topo.ListHosts(r.Context(), filter)
	if err != nil {
		log.Printf("Failed to list hosts: %v", err)
		writeError(w, "Failed to list hosts", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, hosts, http.StatusOK)
}

// hostDetail is the single-host response with its conflict history
type hostDetail struct {
	Host      *domain.Host      `json:"host"`
	Conflicts []domain.Conflict `json:"conflicts"`
}

// GetHost returns one host and its conflicts
func (h *Handler) GetHost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid host ID", "Host ID is required", http.StatusBadRequest)
		return
	}

	host, conflicts, err := h.topo.GetHost(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get host: %v", err)
		writeError(w, "Failed to get host", err.Error(), http.StatusInternalServerError)
		return
	}
	if host == nil {
		writeError(w, "Not found", "host "+id+" not found", http.StatusNotFound)
		return
	}

	writeJSON(w, hostDetail{Host: host, Conflicts: conflicts}, http.StatusOK)
}

// DeleteHost soft-deletes a host. The row stays in the store inactive;
// it no longer participates in correlation or synthesis.
func (h *Handler) DeleteHost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, "Invalid host ID", "Host ID is required", http.StatusBadRequest)
		return
	}

	host, err := h.topo.DeactivateHost(r.Context(), id)
	if err != nil {
		log.Printf("Failed to deactivate host: %v", err)
		writeError(w, "Failed to deactivate host", err.Error(), http.StatusInternalServerError)
		return
	}
	if host == nil {
		writeError(w, "Not found", "host "+id+" not found", http.StatusNotFound)
		return
	}

	writeJSON(w, host, http.StatusOK)
}

// mergeRequest names the host to merge into the path host
type mergeRequest struct {
	SecondaryID string `json:"secondary_id"`
}

// MergeHost merges a secondary host into the path host
func (h *Handler) MergeHost(w http.ResponseWriter, r *http.Request) {
	primaryID := r.PathValue("id")
	if primaryID == "" {
		writeError(w, "Invalid host ID", "Host ID is required", http.StatusBadRequest)
		return
	}

	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.SecondaryID == "" {
		writeError(w, "Invalid request", "secondary_id is required", http.StatusBadRequest)
		return
	}

	merged, err := h.corr.MergeHosts(r.Context(), primaryID, req.SecondaryID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, "Not found", err.Error(), http.StatusNotFound)
			return
		}
		log.Printf("Failed to merge hosts: %v", err)
		writeError(w, "Failed to merge hosts", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, merged, http.StatusOK)
}
