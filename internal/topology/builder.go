package topology

import (
	"fmt"
	"sort"

	"netograph/internal/domain"
)

// Visual constants. Node size is baseNodeSize plus the open-port count
// capped at maxPortSizeBoost; renderers depend on this exact formula.
const (
	baseNodeSize     = 30
	compoundNodeSize = 0 // compounds size to their children
	maxPortSizeBoost = 20
)

const (
	defaultVLANColor   = "#95a5a6"
	subnetColor        = "#ecf0f1"
	internetColor      = "#34495e"
	publicIPsColor     = "#8e44ad"
	syntheticGWColor   = "#f39c12"
	sharedGatewayColor = "#d35400"
)

// Builder owns every accumulator for one synthesis pass: ordered node
// and edge collections, lookup maps, the gateway resolver, and the
// stats counters. It is single-use; Build constructs and discards one.
type Builder struct {
	opts Options

	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int  // node id -> index into nodes
	edgePairs map[string]bool // unordered endpoint pair -> present

	ipToNode   map[string]string          // host IP -> node id
	nodeSubnet map[string]string          // host/gateway node id -> subnet CIDR
	nodeVLAN   map[string]int             // host node id -> vlan id
	gwSubnets  map[string]map[string]bool // gateway node id -> subnets it serves

	gw    *gatewayResolver
	stats Stats
}

// Build synthesizes a topology graph from one store snapshot
func Build(snapshot Snapshot, opts Options) (*Graph, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		opts:       opts,
		nodeIndex:  make(map[string]int),
		edgePairs:  make(map[string]bool),
		ipToNode:   make(map[string]string),
		nodeSubnet: make(map[string]string),
		nodeVLAN:   make(map[string]int),
		gwSubnets:  make(map[string]map[string]bool),
	}
	b.gw = newGatewayResolver(b)

	b.addHosts(snapshot)
	b.addConnections(snapshot.Connections)

	b.stats.TotalNodes = len(b.nodes)
	b.stats.TotalEdges = len(b.edges)

	return &Graph{Nodes: b.nodes, Edges: b.edges, Stats: b.stats}, nil
}

// addNode appends a node unless its id already exists; returns the id
func (b *Builder) addNode(node Node) string {
	if _, ok := b.nodeIndex[node.ID]; ok {
		return node.ID
	}
	b.nodeIndex[node.ID] = len(b.nodes)
	b.nodes = append(b.nodes, node)
	return node.ID
}

func (b *Builder) node(id string) *Node {
	idx, ok := b.nodeIndex[id]
	if !ok {
		return nil
	}
	return &b.nodes[idx]
}

// addEdge inserts an edge unless the unordered endpoint pair is already
// connected or the endpoints coincide. Returns true when inserted.
func (b *Builder) addEdge(source, target string, kind EdgeKind) bool {
	if source == "" || target == "" || source == target {
		return false
	}
	key := pairKey(source, target)
	if b.edgePairs[key] {
		return false
	}
	b.edgePairs[key] = true
	b.edges = append(b.edges, Edge{
		ID:     source + "-" + target,
		Source: source,
		Target: target,
		Kind:   kind,
	})
	return true
}

// lastEdge returns the most recently inserted edge for decoration
func (b *Builder) lastEdge() *Edge {
	if len(b.edges) == 0 {
		return nil
	}
	return &b.edges[len(b.edges)-1]
}

// recordGatewaySubnet marks a gateway node as serving a subnet. A
// shared gateway spans several subnets, so a single nodeSubnet entry
// cannot represent it.
func (b *Builder) recordGatewaySubnet(gatewayID, subnet string) {
	if b.gwSubnets[gatewayID] == nil {
		b.gwSubnets[gatewayID] = make(map[string]bool)
	}
	b.gwSubnets[gatewayID][subnet] = true
}

func (b *Builder) servesSubnet(nodeID, subnet string) bool {
	return subnet != "" && b.gwSubnets[nodeID][subnet]
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// vlanForHost resolves a host's VLAN: the explicit vlan_id wins, then
// the VLAN config whose subnet CIDR contains the IP. Overlapping
// configs resolve by longest prefix, ties by lowest VLAN id.
func vlanForHost(host *domain.Host, vlans []domain.VLANConfig) *domain.VLANConfig {
	if host.VLANID != 0 {
		for i := range vlans {
			if vlans[i].VLANID == host.VLANID {
				return &vlans[i]
			}
		}
		// Explicit id without a config still groups the host.
		return &domain.VLANConfig{VLANID: host.VLANID, Name: fmt.Sprintf("VLAN %d", host.VLANID)}
	}

	var best *domain.VLANConfig
	bestBits := -1
	for i := range vlans {
		for _, cidr := range vlans[i].SubnetCIDRs {
			contains, bits := cidrContains(cidr, host.IPAddress)
			if !contains {
				continue
			}
			if bits > bestBits || (bits == bestBits && best != nil && vlans[i].VLANID < best.VLANID) {
				best = &vlans[i]
				bestBits = bits
			}
		}
	}
	return best
}

// hostShape maps device types to render shapes
func hostShape(deviceType domain.DeviceType) string {
	switch deviceType {
	case domain.DeviceTypeRouter:
		return "diamond"
	case domain.DeviceTypeFirewall:
		return "triangle"
	case domain.DeviceTypeSwitch:
		return "hexagon"
	case domain.DeviceTypeServer:
		return "rectangle"
	case domain.DeviceTypeAccessPoint:
		return "star"
	default:
		return "ellipse"
	}
}

// sortedIdentityIDs gives shared-gateway synthesis a stable order
func sortedIdentityIDs(groups map[string][]domain.Host) []string {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
