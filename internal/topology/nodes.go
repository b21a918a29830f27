package topology

import (
	"fmt"
	"log"

	"netograph/internal/domain"
)

// addHosts places every host into the compound hierarchy and
// synthesizes shared-gateway nodes for multi-homed router devices
func (b *Builder) addHosts(snapshot Snapshot) {
	routerGroups := routerGroupsByDevice(snapshot.Hosts)

	// Hosts covered by a >=2-router device group become one shared
	// gateway node instead of individual leaves.
	sharedDeviceIDs := make(map[string]bool)
	for deviceID, members := range routerGroups {
		if len(members) >= 2 {
			sharedDeviceIDs[deviceID] = true
		}
	}

	for i := range snapshot.Hosts {
		host := &snapshot.Hosts[i]
		if !b.wantHost(host) {
			continue
		}
		if sharedDeviceIDs[host.DeviceID] {
			continue
		}
		b.placeHost(host, snapshot)
	}

	for _, deviceID := range sortedIdentityIDs(routerGroups) {
		if !sharedDeviceIDs[deviceID] {
			continue
		}
		b.addSharedGateway(deviceID, routerGroups[deviceID], snapshot)
	}
}

// wantHost applies the VLAN/subnet request filters
func (b *Builder) wantHost(host *domain.Host) bool {
	if b.opts.VLANFilter != 0 && host.VLANID != b.opts.VLANFilter {
		return false
	}
	if b.opts.SubnetFilter != "" {
		if contains, _ := cidrContains(b.opts.SubnetFilter, host.IPAddress); !contains {
			return false
		}
	}
	return true
}

// placeHost creates the host leaf and any missing VLAN/Subnet compound
// above it
func (b *Builder) placeHost(host *domain.Host, snapshot Snapshot) {
	if isPublicIP(host.IPAddress) {
		b.placePublicHost(host, snapshot)
		return
	}

	subnet := subnetFor(host.IPAddress, b.opts.SubnetPrefix)
	parent := ""
	if subnet != "" {
		vlan := vlanForHost(host, snapshot.VLANs)
		parent = b.ensureSubnetNode(subnet, vlan)
	}

	nodeID := b.addHostNode(host, parent, subnet, snapshot.PortCounts)
	if parent != "" {
		b.bumpHostCount(parent)
	}
	b.ipToNode[host.IPAddress] = nodeID
}

// placePublicHost handles hosts with publicly routable IPs per mode
func (b *Builder) placePublicHost(host *domain.Host, snapshot Snapshot) {
	b.stats.PublicIPHosts++

	switch b.opts.ShowInternet {
	case InternetHide:
		// Dropped entirely.
	case InternetCloud:
		// No node here; edge synthesis folds the traffic through the
		// gateway into the Internet cloud.
	case InternetShow:
		parent := b.ensurePublicIPsNode()
		nodeID := b.addHostNode(host, parent, "", snapshot.PortCounts)
		b.bumpHostCount(parent)
		b.ipToNode[host.IPAddress] = nodeID
	}
}

// addHostNode creates the leaf node for one host
func (b *Builder) addHostNode(host *domain.Host, parent, subnet string, portCounts map[string]int) string {
	nodeID := "host_" + host.ID
	label := host.Hostname
	if label == "" {
		label = host.IPAddress
	}

	openPorts := portCounts[host.ID]
	boost := openPorts
	if boost > maxPortSizeBoost {
		boost = maxPortSizeBoost
	}

	vlanID := 0
	if vlan := b.nodeVLANOf(parent); vlan != 0 {
		vlanID = vlan
	} else if host.VLANID != 0 {
		vlanID = host.VLANID
	}

	b.addNode(Node{
		ID:         nodeID,
		Parent:     parent,
		Kind:       NodeHost,
		Label:      label,
		IP:         host.IPAddress,
		MAC:        host.MACAddress,
		DeviceType: host.DeviceType,
		VLANID:     vlanID,
		Subnet:     subnet,
		IsGateway:  host.IsRouter(),
		Shape:      hostShape(host.DeviceType),
		Size:       baseNodeSize + boost,
	})

	b.nodeSubnet[nodeID] = subnet
	b.nodeVLAN[nodeID] = vlanID
	return nodeID
}

// ensureSubnetNode creates (at most once) the subnet compound and its
// VLAN parent when one resolves
func (b *Builder) ensureSubnetNode(subnet string, vlan *domain.VLANConfig) string {
	subnetID := "subnet_" + subnet
	if b.node(subnetID) != nil {
		return subnetID
	}

	parent := ""
	vlanID := 0
	if vlan != nil {
		parent = b.ensureVLANNode(vlan)
		vlanID = vlan.VLANID
	}

	b.addNode(Node{
		ID:     subnetID,
		Parent: parent,
		Kind:   NodeSubnet,
		Label:  subnet,
		Subnet: subnet,
		VLANID: vlanID,
		Color:  subnetColor,
		Size:   compoundNodeSize,
	})
	b.nodeSubnet[subnetID] = subnet
	b.nodeVLAN[subnetID] = vlanID
	return subnetID
}

// ensureVLANNode creates the VLAN compound at most once
func (b *Builder) ensureVLANNode(vlan *domain.VLANConfig) string {
	vlanID := fmt.Sprintf("vlan_%d", vlan.VLANID)
	if b.node(vlanID) != nil {
		return vlanID
	}

	label := vlan.Name
	if label == "" {
		label = fmt.Sprintf("VLAN %d", vlan.VLANID)
	}
	color := vlan.Color
	if color == "" {
		color = defaultVLANColor
	}

	b.addNode(Node{
		ID:     vlanID,
		Kind:   NodeVLAN,
		Label:  label,
		VLANID: vlan.VLANID,
		Color:  color,
		Size:   compoundNodeSize,
	})
	b.nodeVLAN[vlanID] = vlan.VLANID
	return vlanID
}

// ensurePublicIPsNode creates the Public IPs compound at most once
func (b *Builder) ensurePublicIPsNode() string {
	const id = "public_ips"
	if b.node(id) != nil {
		return id
	}
	b.addNode(Node{
		ID:    id,
		Kind:  NodePublicIPs,
		Label: "Public IPs",
		Color: publicIPsColor,
		Size:  compoundNodeSize,
	})
	return id
}

// addSharedGateway synthesizes one combined node for a multi-homed
// router device, spanning every subnet its member IPs belong to, with
// one pre-created edge per served subnet
func (b *Builder) addSharedGateway(deviceID string, members []domain.Host, snapshot Snapshot) {
	nodeID := "shared_gw_" + deviceID

	label := ""
	mac := ""
	subnets := make([]string, 0, len(members))
	seen := make(map[string]bool)
	for i := range members {
		m := &members[i]
		if label == "" && m.Hostname != "" {
			label = m.Hostname
		}
		if mac == "" {
			mac = m.MACAddress
		}
		subnet := subnetFor(m.IPAddress, b.opts.SubnetPrefix)
		if subnet == "" {
			log.Printf("Shared gateway %s: unparsable member IP %q skipped", deviceID, m.IPAddress)
			continue
		}
		if !seen[subnet] {
			seen[subnet] = true
			subnets = append(subnets, subnet)
		}
		b.ipToNode[m.IPAddress] = nodeID
	}
	if label == "" {
		label = "Shared Gateway"
	}

	b.addNode(Node{
		ID:         nodeID,
		Kind:       NodeGateway,
		Label:      label,
		MAC:        mac,
		DeviceType: domain.DeviceTypeRouter,
		IsGateway:  true,
		Shape:      "star",
		Color:      sharedGatewayColor,
		Size:       baseNodeSize + maxPortSizeBoost,
	})
	b.stats.SharedGateways++

	for _, subnet := range subnets {
		vlan := vlanForSubnet(subnet, snapshot.VLANs)
		subnetNodeID := b.ensureSubnetNode(subnet, vlan)
		b.gw.registerShared(subnetNodeID, nodeID)
		b.recordGatewaySubnet(nodeID, subnet)
		b.addEdge(nodeID, subnetNodeID, EdgeToGateway)
	}
}

// vlanForSubnet resolves a VLAN config by CIDR containment of the
// subnet's network address, longest prefix first
func vlanForSubnet(subnet string, vlans []domain.VLANConfig) *domain.VLANConfig {
	probe := &domain.Host{IPAddress: gatewayIPFor(subnet)}
	return vlanForHost(probe, vlans)
}

func (b *Builder) bumpHostCount(nodeID string) {
	if node := b.node(nodeID); node != nil {
		node.HostCount++
	}
}

func (b *Builder) nodeVLANOf(nodeID string) int {
	if nodeID == "" {
		return 0
	}
	return b.nodeVLAN[nodeID]
}

// routerGroupsByDevice groups router-typed hosts by their device
// identity reference
func routerGroupsByDevice(hosts []domain.Host) map[string][]domain.Host {
	groups := make(map[string][]domain.Host)
	for _, h := range hosts {
		if h.DeviceID == "" || !h.IsRouter() {
			continue
		}
		groups[h.DeviceID] = append(groups[h.DeviceID], h)
	}
	return groups
}
