package topology

import "netograph/internal/domain"

// gatewayResolver picks or synthesizes exactly one gateway node per
// subnet and memoizes the answer so every connection routed through a
// subnet lands on the same node within a pass.
type gatewayResolver struct {
	b *Builder

	// subnet node id -> gateway node id
	cache map[string]string
	// subnet node id -> shared gateway node id serving it
	shared map[string]string

	internetID string
}

func newGatewayResolver(b *Builder) *gatewayResolver {
	return &gatewayResolver{
		b:      b,
		cache:  make(map[string]string),
		shared: make(map[string]string),
	}
}

// registerShared records that a shared gateway node serves a subnet
func (g *gatewayResolver) registerShared(subnetNodeID, gatewayNodeID string) {
	g.shared[subnetNodeID] = gatewayNodeID
}

// resolve returns the gateway node id for a subnet's compound node,
// trying in order: a shared gateway serving the subnet, an existing
// gateway-flagged child, a host sitting at network+1, and finally a
// synthesized gateway node.
func (g *gatewayResolver) resolve(subnetNodeID string) string {
	if id, ok := g.cache[subnetNodeID]; ok {
		return id
	}
	id := g.resolveUncached(subnetNodeID)
	g.cache[subnetNodeID] = id
	return id
}

func (g *gatewayResolver) resolveUncached(subnetNodeID string) string {
	if id, ok := g.shared[subnetNodeID]; ok {
		return id
	}

	for i := range g.b.nodes {
		n := &g.b.nodes[i]
		if n.Parent == subnetNodeID && n.IsGateway {
			return n.ID
		}
	}

	subnet := g.b.nodeSubnet[subnetNodeID]
	gwIP := gatewayIPFor(subnet)
	if id, ok := g.b.ipToNode[gwIP]; ok {
		return id
	}

	return g.synthesize(subnetNodeID, subnet, gwIP)
}

// synthesize creates a placeholder gateway as a child of the subnet
func (g *gatewayResolver) synthesize(subnetNodeID, subnet, gwIP string) string {
	nodeID := "gw_" + subnetNodeID
	g.b.addNode(Node{
		ID:          nodeID,
		Parent:      subnetNodeID,
		Kind:        NodeGateway,
		Label:       "Gateway " + gwIP,
		IP:          gwIP,
		DeviceType:  domain.DeviceTypeRouter,
		VLANID:      g.b.nodeVLAN[subnetNodeID],
		Subnet:      subnet,
		IsGateway:   true,
		IsSynthetic: true,
		Shape:       "diamond",
		Color:       syntheticGWColor,
		Size:        baseNodeSize,
	})
	g.b.nodeSubnet[nodeID] = subnet
	g.b.nodeVLAN[nodeID] = g.b.nodeVLAN[subnetNodeID]
	return nodeID
}

// ensureInternet creates the singleton Internet sink on first use
func (g *gatewayResolver) ensureInternet() string {
	if g.internetID != "" {
		return g.internetID
	}
	g.internetID = g.b.addNode(Node{
		ID:          "internet",
		Kind:        NodeInternet,
		Label:       "Internet",
		IsSynthetic: true,
		Shape:       "ellipse",
		Color:       internetColor,
		Size:        baseNodeSize + maxPortSizeBoost,
	})
	return g.internetID
}
