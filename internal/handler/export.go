package handler

import (
	"log"
	"net/http"

	"netograph/internal/codec"
	"netograph/internal/repository"
)

// ExportJSON renders the canonical host set as JSON
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	h.exportHosts(w, r, codec.NewJSONCodec(), "application/json")
}

// ExportYAML renders the canonical host set as a YAML inventory
func (h *Handler) ExportYAML(w http.ResponseWriter, r *http.Request) {
	h.exportHosts(w, r, codec.NewYAMLCodec(), "application/x-yaml")
}

func (h *Handler) exportHosts(w http.ResponseWriter, r *http.Request, exporter codec.Exporter, contentType string) {
	hosts, err := h.topo.ListHosts(r.Context(), repository.HostFilter{})
	if err != nil {
		log.Printf("Failed to list hosts for export: %v", err)
		writeError(w, "Export failed", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if err := exporter.Export(hosts, w); err != nil {
		log.Printf("Failed to export %s: %v", exporter.Format(), err)
	}
}

// ImportInventory ingests a YAML inventory document
func (h *Handler) ImportInventory(w http.ResponseWriter, r *http.Request) {
	hosts, err := codec.NewYAMLCodec().Parse(r.Body)
	if err != nil {
		writeError(w, "Invalid inventory", err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.ingest.IngestHosts(r.Context(), hosts, "inventory")
	if err != nil {
		log.Printf("Inventory import failed: %v", err)
		writeError(w, "Import failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, importResponse{Imported: count, Source: "inventory"}, http.StatusOK)
}
