package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netograph/internal/domain"
)

func host(id, ip string) domain.Host {
	return domain.Host{ID: id, IPAddress: ip, IsActive: true}
}

func findNode(t *testing.T, g *Graph, id string) *Node {
	t.Helper()
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

func TestBuildHierarchy(t *testing.T) {
	web := host("h1", "10.0.1.10")
	web.Hostname = "web1"
	db := host("h2", "10.0.1.20")

	snap := Snapshot{
		Hosts: []domain.Host{web, db},
		VLANs: []domain.VLANConfig{
			{VLANID: 10, Name: "Servers", SubnetCIDRs: []string{"10.0.1.0/24"}, Color: "#336699"},
		},
		PortCounts: map[string]int{"h1": 5, "h2": 40},
	}

	g, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	vlan := findNode(t, g, "vlan_10")
	require.NotNil(t, vlan, "vlan compound missing")
	assert.Equal(t, NodeVLAN, vlan.Kind)
	assert.Equal(t, "Servers", vlan.Label)
	assert.Equal(t, "#336699", vlan.Color)

	subnet := findNode(t, g, "subnet_10.0.1.0/24")
	require.NotNil(t, subnet, "subnet compound missing")
	assert.Equal(t, "vlan_10", subnet.Parent)
	assert.Equal(t, 2, subnet.HostCount)

	h1 := findNode(t, g, "host_h1")
	require.NotNil(t, h1)
	assert.Equal(t, "subnet_10.0.1.0/24", h1.Parent)
	assert.Equal(t, "web1", h1.Label)
	assert.Equal(t, 10, h1.VLANID)

	// Size is base plus open ports, capped.
	assert.Equal(t, baseNodeSize+5, h1.Size)
	h2 := findNode(t, g, "host_h2")
	require.NotNil(t, h2)
	assert.Equal(t, baseNodeSize+maxPortSizeBoost, h2.Size)
	assert.Equal(t, "10.0.1.20", h2.Label, "hostname-less node labeled by ip")
}

func TestVLANLongestPrefixWins(t *testing.T) {
	h := host("h1", "10.0.1.10")
	snap := Snapshot{
		Hosts: []domain.Host{h},
		VLANs: []domain.VLANConfig{
			{VLANID: 1, Name: "Campus", SubnetCIDRs: []string{"10.0.0.0/8"}},
			{VLANID: 20, Name: "Servers", SubnetCIDRs: []string{"10.0.1.0/24"}},
		},
	}

	g, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	subnet := findNode(t, g, "subnet_10.0.1.0/24")
	require.NotNil(t, subnet)
	assert.Equal(t, "vlan_20", subnet.Parent, "most specific vlan config wins")
}

func TestEdgeClassification(t *testing.T) {
	a := host("h1", "10.0.1.10")
	b := host("h2", "10.0.1.20")
	c := host("h3", "10.0.2.30")
	d := host("h4", "10.0.3.40")
	d.VLANID = 30
	a.VLANID = 10
	b.VLANID = 10
	c.VLANID = 10

	snap := Snapshot{
		Hosts: []domain.Host{a, b, c, d},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.1.20", Protocol: "tcp"},
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.2.30", Protocol: "tcp"},
			{LocalIP: "10.0.1.20", RemoteIP: "10.0.3.40", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	kinds := make(map[EdgeKind]int)
	for _, e := range g.Edges {
		kinds[e.Kind]++
	}
	assert.Equal(t, 1, kinds[EdgeSameSubnet])
	assert.Equal(t, 1, kinds[EdgeCrossSubnet])
	assert.Equal(t, 1, kinds[EdgeCrossVLAN])
	assert.Equal(t, 1, g.Stats.CrossSubnetConns)
	assert.Equal(t, 1, g.Stats.CrossVLANConns)
}

func TestEdgeDedupUnorderedPair(t *testing.T) {
	a := host("h1", "10.0.1.10")
	b := host("h2", "10.0.1.20")

	snap := Snapshot{
		Hosts: []domain.Host{a, b},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.1.20", Protocol: "tcp"},
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.1.20", Protocol: "tcp", RemotePort: 443},
			// Reversed direction is the same unordered pair.
			{LocalIP: "10.0.1.20", RemoteIP: "10.0.1.10", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "host_h1-host_h2", g.Edges[0].ID)
}

func TestSyntheticGateway(t *testing.T) {
	a := host("h1", "10.0.1.10")
	b := host("h2", "10.0.2.20")

	opts := DefaultOptions()
	opts.RouteThroughGateway = true

	snap := Snapshot{
		Hosts: []domain.Host{a, b},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.2.20", Protocol: "tcp"},
			// Repeats of the same flow add nothing to the rewrite.
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.2.20", Protocol: "tcp", RemotePort: 8443},
			{LocalIP: "10.0.2.20", RemoteIP: "10.0.1.10", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, opts)
	require.NoError(t, err)

	gw1 := findNode(t, g, "gw_subnet_10.0.1.0/24")
	require.NotNil(t, gw1, "synthetic gateway missing")
	assert.True(t, gw1.IsSynthetic)
	assert.True(t, gw1.IsGateway)
	assert.Equal(t, "10.0.1.1", gw1.IP, "gateway sits at network address plus one")
	assert.Equal(t, "subnet_10.0.1.0/24", gw1.Parent)

	// host -> gw, gw -> gw, gw -> host
	require.Len(t, g.Edges, 3)
	kinds := make(map[EdgeKind]int)
	for _, e := range g.Edges {
		kinds[e.Kind]++
	}
	assert.Equal(t, 2, kinds[EdgeToGateway])
	assert.Equal(t, 1, kinds[EdgeCrossSubnet])
}

func TestGatewayPrefersRealRouter(t *testing.T) {
	gwHost := host("h-gw", "10.0.1.1")
	gwHost.DeviceType = domain.DeviceTypeRouter
	a := host("h1", "10.0.1.10")
	b := host("h2", "10.0.2.20")

	opts := DefaultOptions()
	opts.RouteThroughGateway = true

	snap := Snapshot{
		Hosts: []domain.Host{gwHost, a, b},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.2.20", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, opts)
	require.NoError(t, err)

	assert.Nil(t, findNode(t, g, "gw_subnet_10.0.1.0/24"), "real router should preempt synthesis")
	found := false
	for _, e := range g.Edges {
		if e.Kind == EdgeToGateway && (e.Source == "host_h-gw" || e.Target == "host_h-gw") {
			found = true
		}
	}
	assert.True(t, found, "traffic should route through the real router")
}

func TestInternetCloudAggregation(t *testing.T) {
	a := host("h1", "10.0.1.10")

	opts := DefaultOptions()
	opts.ShowInternet = InternetCloud

	snap := Snapshot{
		Hosts: []domain.Host{a},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "93.184.216.34", Protocol: "tcp"},
			{LocalIP: "10.0.1.10", RemoteIP: "1.1.1.1", Protocol: "tcp"},
			{LocalIP: "10.0.1.10", RemoteIP: "8.8.8.8", Protocol: "udp"},
			// Same remote twice counts once.
			{LocalIP: "10.0.1.10", RemoteIP: "8.8.8.8", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, opts)
	require.NoError(t, err)

	require.NotNil(t, findNode(t, g, "internet"))

	var internetEdge *Edge
	for i := range g.Edges {
		if g.Edges[i].Kind == EdgeInternet {
			require.Nil(t, internetEdge, "only one aggregated internet edge expected")
			internetEdge = &g.Edges[i]
		}
	}
	require.NotNil(t, internetEdge)
	assert.Equal(t, 3, internetEdge.PublicIPCount)
	assert.Len(t, internetEdge.PublicIPs, 3)
	assert.Equal(t, 4, g.Stats.InternetConnections)
}

func TestInternetModes(t *testing.T) {
	pub := host("h-pub", "203.0.113.50")
	priv := host("h1", "10.0.1.10")

	t.Run("hide drops public hosts", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ShowInternet = InternetHide

		g, err := Build(Snapshot{Hosts: []domain.Host{pub, priv}}, opts)
		require.NoError(t, err)
		assert.Nil(t, findNode(t, g, "host_h-pub"))
		assert.Equal(t, 1, g.Stats.PublicIPHosts)
	})

	t.Run("show groups under public ips", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ShowInternet = InternetShow

		g, err := Build(Snapshot{Hosts: []domain.Host{pub, priv}}, opts)
		require.NoError(t, err)
		node := findNode(t, g, "host_h-pub")
		require.NotNil(t, node)
		assert.Equal(t, "public_ips", node.Parent)
	})
}

func TestSharedGateway(t *testing.T) {
	lan := host("h-lan", "10.0.1.1")
	lan.DeviceType = domain.DeviceTypeRouter
	lan.DeviceID = "dev-1"
	lan.Hostname = "gw-core"
	dmz := host("h-dmz", "10.0.2.1")
	dmz.DeviceType = domain.DeviceTypeFirewall
	dmz.DeviceID = "dev-1"
	client := host("h1", "10.0.1.10")

	g, err := Build(Snapshot{Hosts: []domain.Host{lan, dmz, client}}, DefaultOptions())
	require.NoError(t, err)

	shared := findNode(t, g, "shared_gw_dev-1")
	require.NotNil(t, shared, "shared gateway node missing")
	assert.Equal(t, "gw-core", shared.Label)
	assert.True(t, shared.IsGateway)
	assert.Equal(t, 1, g.Stats.SharedGateways)

	// Member interfaces collapse into the shared node.
	assert.Nil(t, findNode(t, g, "host_h-lan"))
	assert.Nil(t, findNode(t, g, "host_h-dmz"))

	// One to_gateway edge per served subnet.
	toGW := 0
	for _, e := range g.Edges {
		if e.Kind == EdgeToGateway {
			toGW++
			assert.Equal(t, "shared_gw_dev-1", e.Source)
		}
	}
	assert.Equal(t, 2, toGW)
}

func TestSharedGatewayLocalHop(t *testing.T) {
	lan := host("h-lan", "10.0.1.1")
	lan.DeviceType = domain.DeviceTypeRouter
	lan.DeviceID = "dev-1"
	dmz := host("h-dmz", "10.0.2.1")
	dmz.DeviceType = domain.DeviceTypeFirewall
	dmz.DeviceID = "dev-1"
	client := host("h1", "10.0.1.10")

	snap := Snapshot{
		Hosts: []domain.Host{lan, dmz, client},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.1.1", Protocol: "tcp"},
		},
	}

	g, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	var hop *Edge
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.Source == "host_h1" || e.Target == "host_h1" {
			require.Nil(t, hop, "client should carry exactly one edge")
			hop = e
		}
	}
	require.NotNil(t, hop, "client to gateway edge missing")
	assert.Equal(t, EdgeToGateway, hop.Kind, "traffic to the serving gateway is a local hop")
	assert.Equal(t, 0, g.Stats.CrossSubnetConns)
	assert.Equal(t, 0, g.Stats.CrossVLANConns)
}

func TestBuildDeterministic(t *testing.T) {
	snap := Snapshot{
		Hosts: []domain.Host{host("h1", "10.0.1.10"), host("h2", "10.0.2.20")},
		Connections: []domain.Connection{
			{LocalIP: "10.0.1.10", RemoteIP: "10.0.2.20", Protocol: "tcp"},
		},
	}

	first, err := Build(snap, DefaultOptions())
	require.NoError(t, err)
	second, err := Build(snap, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.SubnetPrefix = 7
	_, err := Build(Snapshot{}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.ShowInternet = "sometimes"
	_, err = Build(Snapshot{}, opts)
	assert.Error(t, err)
}
