package adapter

import (
	"bufio"
	"net/netip"
	"strings"

	"netograph/internal/domain"
)

// ParseArpTable parses captured ARP listings. Both the BSD-style
// "arp -a" format and the "ip neigh" format are recognized, line by
// line; unrecognized lines are skipped.
func ParseArpTable(data []byte) []domain.ParsedArpEntry {
	var entries []domain.ParsedArpEntry

	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if entry, ok := parseArpLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseArpLine(line string) (domain.ParsedArpEntry, bool) {
	if strings.Contains(line, "(") && strings.Contains(line, ") at ") {
		return parseArpDashA(line)
	}
	return parseIPNeigh(line)
}

// parseArpDashA handles lines like
// "gateway (192.168.1.1) at aa:bb:cc:dd:ee:ff [ether] on eth0"
func parseArpDashA(line string) (domain.ParsedArpEntry, bool) {
	var entry domain.ParsedArpEntry

	start := strings.Index(line, "(")
	end := strings.Index(line, ")")
	if start < 0 || end < start {
		return entry, false
	}
	ip := line[start+1 : end]
	if !validIP(ip) {
		return entry, false
	}
	entry.IPAddress = ip

	rest := line[end+1:]
	fields := strings.Fields(rest)
	for i, f := range fields {
		switch f {
		case "at":
			if i+1 < len(fields) && validMAC(fields[i+1]) {
				entry.MACAddress = strings.ToLower(fields[i+1])
			}
		case "on":
			if i+1 < len(fields) {
				entry.Interface = fields[i+1]
			}
		}
	}
	if strings.Contains(rest, "PERM") {
		entry.EntryType = "static"
	} else {
		entry.EntryType = "dynamic"
	}

	if entry.MACAddress == "" {
		// "(incomplete)" rows carry no link address.
		return entry, false
	}
	return entry, true
}

// parseIPNeigh handles lines like
// "192.168.1.10 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE"
func parseIPNeigh(line string) (domain.ParsedArpEntry, bool) {
	var entry domain.ParsedArpEntry

	fields := strings.Fields(line)
	if len(fields) < 2 || !validIP(fields[0]) {
		return entry, false
	}
	entry.IPAddress = fields[0]

	for i, f := range fields[1:] {
		idx := i + 1
		switch f {
		case "dev":
			if idx+1 < len(fields) {
				entry.Interface = fields[idx+1]
			}
		case "lladdr":
			if idx+1 < len(fields) && validMAC(fields[idx+1]) {
				entry.MACAddress = strings.ToLower(fields[idx+1])
			}
		case "PERMANENT":
			entry.EntryType = "static"
		case "REACHABLE", "STALE", "DELAY", "PROBE":
			if entry.EntryType == "" {
				entry.EntryType = "dynamic"
			}
		case "FAILED", "INCOMPLETE":
			return entry, false
		}
	}

	if entry.MACAddress == "" {
		return entry, false
	}
	if entry.EntryType == "" {
		entry.EntryType = "dynamic"
	}
	return entry, true
}

func validIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

func validMAC(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return false
	}
	for _, p := range parts {
		if len(p) != 2 {
			return false
		}
	}
	return true
}
