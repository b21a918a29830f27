package topology

import (
	"sort"

	"netograph/internal/domain"
)

// Cap on the sample IPs attached to an aggregated internet edge.
const maxPublicIPSamples = 10

// addConnections classifies every observed connection into a graph
// edge. Local flows become same_subnet/cross_subnet/cross_vlan edges;
// flows with exactly one resolvable endpoint and a public remote IP
// feed the internet rendering mode.
func (b *Builder) addConnections(conns []domain.Connection) {
	type cloudAgg struct {
		gatewayID string
		publicIPs map[string]bool
	}
	clouds := make(map[string]*cloudAgg) // gateway node id -> aggregate

	for i := range conns {
		conn := &conns[i]
		srcID, srcOK := b.ipToNode[conn.LocalIP]
		dstID, dstOK := b.ipToNode[conn.RemoteIP]

		switch {
		case srcOK && dstOK:
			b.addLocalEdge(srcID, dstID)

		case srcOK != dstOK:
			nodeID, remoteIP := srcID, conn.RemoteIP
			if dstOK {
				nodeID, remoteIP = dstID, conn.LocalIP
			}
			if !isPublicIP(remoteIP) {
				// Private but unknown endpoint: nothing to draw.
				continue
			}
			b.stats.InternetConnections++
			switch b.opts.ShowInternet {
			case InternetHide:
			case InternetShow:
				b.addEdge(nodeID, b.gw.ensureInternet(), EdgeInternet)
			case InternetCloud:
				gwID := b.gatewayOf(nodeID)
				if gwID == "" {
					continue
				}
				b.addEdge(nodeID, gwID, EdgeToGateway)
				agg, ok := clouds[gwID]
				if !ok {
					agg = &cloudAgg{gatewayID: gwID, publicIPs: make(map[string]bool)}
					clouds[gwID] = agg
				}
				agg.publicIPs[remoteIP] = true
			}

		default:
			// Neither endpoint resolves to a node.
		}
	}

	if b.opts.ShowInternet == InternetCloud && len(clouds) > 0 {
		internetID := b.gw.ensureInternet()
		gwIDs := make([]string, 0, len(clouds))
		for id := range clouds {
			gwIDs = append(gwIDs, id)
		}
		sort.Strings(gwIDs)
		for _, gwID := range gwIDs {
			agg := clouds[gwID]
			if !b.addEdge(gwID, internetID, EdgeInternet) {
				continue
			}
			edge := b.lastEdge()
			edge.PublicIPCount = len(agg.publicIPs)
			edge.PublicIPs = sampleIPs(agg.publicIPs, maxPublicIPSamples)
		}
	}
}

// addLocalEdge classifies and inserts an edge between two placed nodes,
// optionally rerouting cross-subnet traffic through both gateways
func (b *Builder) addLocalEdge(srcID, dstID string) {
	if srcID == dstID {
		// Two IPs of the same device, e.g. a shared gateway.
		return
	}

	// A flow between a host and a gateway serving its subnet is a local
	// hop, never cross-subnet traffic.
	if b.servesSubnet(srcID, b.nodeSubnet[dstID]) || b.servesSubnet(dstID, b.nodeSubnet[srcID]) {
		b.addEdge(srcID, dstID, EdgeToGateway)
		return
	}

	kind := b.classify(srcID, dstID)
	switch kind {
	case EdgeCrossVLAN:
		b.stats.CrossVLANConns++
	case EdgeCrossSubnet:
		b.stats.CrossSubnetConns++
	}

	if b.opts.RouteThroughGateway && kind != EdgeSameSubnet {
		srcGw := b.gatewayOf(srcID)
		dstGw := b.gatewayOf(dstID)
		if srcGw != "" && dstGw != "" {
			b.addEdge(srcID, srcGw, EdgeToGateway)
			b.addEdge(srcGw, dstGw, kind)
			b.addEdge(dstGw, dstID, EdgeToGateway)
			return
		}
	}

	b.addEdge(srcID, dstID, kind)
}

// classify decides an edge kind from the endpoints' VLAN and subnet
func (b *Builder) classify(srcID, dstID string) EdgeKind {
	srcVLAN, dstVLAN := b.nodeVLAN[srcID], b.nodeVLAN[dstID]
	if srcVLAN != 0 && dstVLAN != 0 && srcVLAN != dstVLAN {
		return EdgeCrossVLAN
	}
	srcSubnet, dstSubnet := b.nodeSubnet[srcID], b.nodeSubnet[dstID]
	if srcSubnet != dstSubnet {
		return EdgeCrossSubnet
	}
	return EdgeSameSubnet
}

// gatewayOf resolves the gateway serving the subnet a node sits in
func (b *Builder) gatewayOf(nodeID string) string {
	subnet := b.nodeSubnet[nodeID]
	if subnet == "" {
		return ""
	}
	return b.gw.resolve("subnet_" + subnet)
}

func sampleIPs(set map[string]bool, limit int) []string {
	ips := make([]string, 0, len(set))
	for ip := range set {
		ips = append(ips, ip)
	}
	sort.Strings(ips)
	if len(ips) > limit {
		ips = ips[:limit]
	}
	return ips
}
