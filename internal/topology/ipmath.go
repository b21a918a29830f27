package topology

import (
	"fmt"
	"net/netip"
)

// subnetFor masks an IP to its /prefix CIDR. Returns "" when the IP
// does not parse.
func subnetFor(ip string, prefix int) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	if addr.Is6() && prefix > 64 {
		prefix = 64
	}
	p, err := addr.Prefix(prefix)
	if err != nil {
		return ""
	}
	return p.String()
}

// gatewayIPFor returns network-address+1 for a CIDR, the conventional
// first-host gateway. Unparsable CIDRs get a placeholder so a synthetic
// gateway can still be rendered.
func gatewayIPFor(cidr string) string {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Sprintf("unknown (%s)", cidr)
	}
	return p.Masked().Addr().Next().String()
}

var cgnatRange = netip.MustParsePrefix("100.64.0.0/10")

// isPublicIP reports whether an IP is routable on the public internet.
// Unparsable strings are treated as private so a malformed record can
// never be routed to the Internet branch.
func isPublicIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified() {
		return false
	}
	// 100.64.0.0/10 (CGNAT) is not publicly routable either.
	if addr.Is4() && cgnatRange.Contains(addr) {
		return false
	}
	return true
}

// cidrContains reports whether cidr contains ip; malformed inputs are
// treated as non-matching
func cidrContains(cidr, ip string) (bool, int) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return false, 0
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false, 0
	}
	return p.Contains(addr), p.Bits()
}
