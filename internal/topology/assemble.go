package topology

// Cytoscape.js element payload. Every node and edge is wrapped in a
// {"data": ...} envelope; compounds participate through the node's
// parent field.
type CytoscapeGraph struct {
	Elements CytoscapeElements `json:"elements"`
	Stats    Stats             `json:"stats"`
}

type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

type CytoscapeNode struct {
	Data Node `json:"data"`
}

type CytoscapeEdge struct {
	Data Edge `json:"data"`
}

// Cytoscape wraps a graph into the Cytoscape.js elements envelope
func Cytoscape(g *Graph) *CytoscapeGraph {
	out := &CytoscapeGraph{Stats: g.Stats}
	out.Elements.Nodes = make([]CytoscapeNode, len(g.Nodes))
	for i, n := range g.Nodes {
		out.Elements.Nodes[i] = CytoscapeNode{Data: n}
	}
	out.Elements.Edges = make([]CytoscapeEdge, len(g.Edges))
	for i, e := range g.Edges {
		out.Elements.Edges[i] = CytoscapeEdge{Data: e}
	}
	return out
}
