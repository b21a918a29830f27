package handler

import (
	"log"
	"net/http"
	"strconv"

	"netograph/internal/topology"
)

// GetTopology synthesizes and returns the topology graph. Query
// parameters override the configured defaults per request.
func (h *Handler) GetTopology(w http.ResponseWriter, r *http.Request) {
	opts, err := topologyOptions(r)
	if err != nil {
		writeError(w, "Invalid topology options", err.Error(), http.StatusBadRequest)
		return
	}

	graph, err := h.topo.BuildGraph(r.Context(), opts)
	if err != nil {
		log.Printf("Failed to build topology: %v", err)
		writeError(w, "Failed to build topology", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, graph, http.StatusOK)
}

// topologyOptions merges query parameters onto the defaults
func topologyOptions(r *http.Request) (topology.Options, error) {
	opts := topology.DefaultOptions()
	q := r.URL.Query()

	if v := q.Get("subnet_prefix"); v != "" {
		prefix, err := strconv.Atoi(v)
		if err != nil {
			return opts, err
		}
		opts.SubnetPrefix = prefix
	}
	if v := q.Get("format"); v != "" {
		opts.Format = topology.Format(v)
	}
	if v := q.Get("show_internet"); v != "" {
		opts.ShowInternet = topology.InternetMode(v)
	}
	if v := q.Get("route_through_gateway"); v != "" {
		routed, err := strconv.ParseBool(v)
		if err != nil {
			return opts, err
		}
		opts.RouteThroughGateway = routed
	}
	if v := q.Get("vlan"); v != "" {
		vlan, err := strconv.Atoi(v)
		if err != nil {
			return opts, err
		}
		opts.VLANFilter = vlan
	}
	if v := q.Get("subnet"); v != "" {
		opts.SubnetFilter = v
	}
	if v := q.Get("include_inactive"); v != "" {
		inactive, err := strconv.ParseBool(v)
		if err != nil {
			return opts, err
		}
		opts.IncludeInactive = inactive
	}

	return opts, opts.Validate()
}
