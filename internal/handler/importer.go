package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"netograph/internal/adapter"
	"netograph/internal/domain"
)

// 16 MiB cap keeps a runaway upload from exhausting memory.
const maxImportBody = 16 << 20

type importResponse struct {
	Imported int    `json:"imported"`
	Source   string `json:"source"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		writeError(w, "Empty request body", "scan output is required", http.StatusBadRequest)
		return nil, false
	}
	return data, true
}

// ImportNmap ingests an nmap -oX document
func (h *Handler) ImportNmap(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	hosts, err := adapter.ParseNmapXML(data)
	if err != nil {
		writeError(w, "Invalid nmap XML", err.Error(), http.StatusBadRequest)
		return
	}

	count, err := h.ingest.IngestHosts(r.Context(), hosts, "nmap")
	if err != nil {
		log.Printf("Nmap import failed: %v", err)
		writeError(w, "Import failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, importResponse{Imported: count, Source: "nmap"}, http.StatusOK)
}

// ImportArp ingests an arp/ip-neigh listing
func (h *Handler) ImportArp(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	entries := adapter.ParseArpTable(data)
	count, err := h.ingest.IngestArpEntries(r.Context(), entries, "arp_table")
	if err != nil {
		log.Printf("ARP import failed: %v", err)
		writeError(w, "Import failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, importResponse{Imported: count, Source: "arp_table"}, http.StatusOK)
}

// ImportConnections ingests an ss/netstat listing
func (h *Handler) ImportConnections(w http.ResponseWriter, r *http.Request) {
	data, ok := readBody(w, r)
	if !ok {
		return
	}

	conns := adapter.ParseConnections(data)
	count, err := h.ingest.IngestConnections(r.Context(), conns, "netstat")
	if err != nil {
		log.Printf("Connection import failed: %v", err)
		writeError(w, "Import failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, importResponse{Imported: count, Source: "netstat"}, http.StatusOK)
}

// hostImportRequest is the JSON host-batch payload
type hostImportRequest struct {
	Source string              `json:"source"`
	Hosts  []domain.ParsedHost `json:"hosts"`
}

// ImportHosts ingests pre-parsed host records
func (h *Handler) ImportHosts(w http.ResponseWriter, r *http.Request) {
	var req hostImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	count, err := h.ingest.IngestHosts(r.Context(), req.Hosts, req.Source)
	if err != nil {
		log.Printf("Host import failed: %v", err)
		writeError(w, "Import failed", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, importResponse{Imported: count, Source: req.Source}, http.StatusOK)
}
