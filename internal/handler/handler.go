// Package handler exposes the engine over HTTP: topology synthesis,
// host and conflict inspection, scan imports, and correlation triggers.
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"netograph/internal/service"
)

// Handler carries the services behind the API surface
type Handler struct {
	topo   *service.TopologyService
	corr   *service.CorrelationService
	ingest *service.IngestService
}

// New creates the API handler
func New(topo *service.TopologyService, corr *service.CorrelationService, ingest *service.IngestService) *Handler {
	return &Handler{topo: topo, corr: corr, ingest: ingest}
}

// Routes registers every API endpoint on the mux
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/topology", h.GetTopology)

	mux.HandleFunc("GET /api/hosts", h.ListHosts)
	mux.HandleFunc("GET /api/hosts/{id}", h.GetHost)
	mux.HandleFunc("DELETE /api/hosts/{id}", h.DeleteHost)
	mux.HandleFunc("POST /api/hosts/{id}/merge", h.MergeHost)

	mux.HandleFunc("GET /api/conflicts", h.ListConflicts)
	mux.HandleFunc("POST /api/conflicts/{id}/resolve", h.ResolveConflict)

	mux.HandleFunc("GET /api/identities", h.ListIdentities)

	mux.HandleFunc("POST /api/correlate", h.TriggerCorrelation)

	mux.HandleFunc("POST /api/import/nmap", h.ImportNmap)
	mux.HandleFunc("POST /api/import/arp", h.ImportArp)
	mux.HandleFunc("POST /api/import/connections", h.ImportConnections)
	mux.HandleFunc("POST /api/import/hosts", h.ImportHosts)
	mux.HandleFunc("POST /api/import/inventory", h.ImportInventory)

	mux.HandleFunc("GET /api/export/json", h.ExportJSON)
	mux.HandleFunc("GET /api/export/yaml", h.ExportYAML)

	mux.HandleFunc("GET /api/health", h.Health)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, msg, details string, status int) {
	writeJSON(w, ErrorResponse{Error: msg, Details: details}, status)
}
