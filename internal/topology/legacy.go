package topology

// Legacy flat format kept for older renderers that have no compound
// support. Compounds collapse into a groups map and membership is
// recorded on each node.
type LegacyGraph struct {
	Nodes  []LegacyNode           `json:"nodes"`
	Edges  []LegacyEdge           `json:"edges"`
	Groups map[string]LegacyGroup `json:"groups"`
	Stats  Stats                  `json:"stats"`
}

type LegacyNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group,omitempty"`
	IP    string `json:"ip,omitempty"`
	Shape string `json:"shape"`
	Color string `json:"color,omitempty"`
	Size  int    `json:"size"`
}

type LegacyEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Dashes bool   `json:"dashes,omitempty"`
	Width  int    `json:"width"`
	Color  string `json:"color"`
	Title  string `json:"title,omitempty"`
}

type LegacyGroup struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Color string `json:"color,omitempty"`
}

// Legacy flattens a graph into the legacy vis-style payload
func Legacy(g *Graph) *LegacyGraph {
	out := &LegacyGraph{
		Groups: make(map[string]LegacyGroup),
		Stats:  g.Stats,
	}

	compound := make(map[string]bool)
	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeVLAN, NodeSubnet, NodePublicIPs:
			compound[n.ID] = true
			out.Groups[n.ID] = LegacyGroup{
				Label: n.Label,
				Kind:  string(n.Kind),
				Color: n.Color,
			}
		}
	}

	for _, n := range g.Nodes {
		if compound[n.ID] {
			continue
		}
		size := n.Size
		if size == 0 {
			size = baseNodeSize
		}
		out.Nodes = append(out.Nodes, LegacyNode{
			ID:    n.ID,
			Label: n.Label,
			Group: n.Parent,
			IP:    n.IP,
			Shape: legacyShape(n.Shape),
			Color: n.Color,
			Size:  size,
		})
	}

	for _, e := range g.Edges {
		cross := e.Kind == EdgeCrossSubnet || e.Kind == EdgeCrossVLAN
		le := LegacyEdge{
			From:  e.Source,
			To:    e.Target,
			Width: 1,
			Color: "#3498db",
		}
		if cross {
			le.Dashes = true
			le.Width = 3
			le.Color = "#e67e22"
		}
		if e.PublicIPCount > 0 {
			le.Title = string(e.Kind)
		}
		out.Edges = append(out.Edges, le)
	}

	return out
}

// legacyShape maps cytoscape shape names onto the older renderer's
// vocabulary
func legacyShape(shape string) string {
	switch shape {
	case "diamond", "triangle", "star", "rectangle":
		return "box"
	case "hexagon", "ellipse":
		return "ellipse"
	default:
		return "dot"
	}
}
