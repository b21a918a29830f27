package adapter

import (
	"fmt"
	"log"
	"strings"

	nmap "github.com/Ullaakut/nmap/v3"

	"netograph/internal/domain"
)

// ParseNmapXML converts a captured nmap -oX document into parsed host
// records. Hosts that are down or carry no address are skipped.
func ParseNmapXML(data []byte) ([]domain.ParsedHost, error) {
	var run nmap.Run
	if err := nmap.Parse(data, &run); err != nil {
		return nil, fmt.Errorf("parse nmap xml: %w", err)
	}

	hosts := make([]domain.ParsedHost, 0, len(run.Hosts))
	for _, h := range run.Hosts {
		if h.Status.State != "up" || len(h.Addresses) == 0 {
			continue
		}
		parsed, ok := parseNmapHost(h)
		if !ok {
			continue
		}
		hosts = append(hosts, parsed)
	}

	log.Printf("Nmap import: %d hosts parsed from %d scanned", len(hosts), len(run.Hosts))
	return hosts, nil
}

func parseNmapHost(h nmap.Host) (domain.ParsedHost, bool) {
	var parsed domain.ParsedHost

	for _, addr := range h.Addresses {
		switch addr.AddrType {
		case "ipv4":
			if parsed.IPAddress == "" {
				parsed.IPAddress = addr.Addr
			}
		case "ipv6":
			if parsed.IPAddress == "" {
				parsed.IPAddress = addr.Addr
			}
		case "mac":
			parsed.MACAddress = strings.ToLower(addr.Addr)
			parsed.Vendor = addr.Vendor
		}
	}
	if parsed.IPAddress == "" {
		return parsed, false
	}

	if len(h.Hostnames) > 0 {
		fqdn := h.Hostnames[0].Name
		parsed.FQDN = fqdn
		parsed.Hostname, _, _ = strings.Cut(fqdn, ".")
	}

	for _, p := range h.Ports {
		if p.State.State != "open" {
			continue
		}
		parsed.Ports = append(parsed.Ports, domain.ParsedPort{
			Number:   int(p.ID),
			Protocol: p.Protocol,
			State:    p.State.State,
			Service:  p.Service.Name,
			Banner:   serviceBanner(p.Service),
		})
	}

	if len(h.OS.Matches) > 0 {
		applyOSMatch(&parsed, h.OS.Matches[0])
	}
	if parsed.DeviceType == "" {
		parsed.DeviceType = inferDeviceType(parsed.Ports)
	}

	return parsed, true
}

// serviceBanner joins product, version and extra info into one line
func serviceBanner(svc nmap.Service) string {
	if svc.Product == "" {
		return ""
	}
	banner := svc.Product
	if svc.Version != "" {
		banner += " " + svc.Version
	}
	if svc.ExtraInfo != "" {
		banner += " (" + svc.ExtraInfo + ")"
	}
	return banner
}

// applyOSMatch fills OS fields from the best fingerprint match
func applyOSMatch(parsed *domain.ParsedHost, match nmap.OSMatch) {
	parsed.OSName = match.Name
	parsed.OSConfidence = float64(match.Accuracy) / 100.0

	for _, class := range match.Classes {
		if class.Family != "" && parsed.OSFamily == "" {
			parsed.OSFamily = class.Family
		}
		if class.OSGeneration != "" && parsed.OSVersion == "" {
			parsed.OSVersion = class.OSGeneration
		}
		if class.Type != "" && parsed.DeviceType == "" {
			parsed.DeviceType = deviceTypeFromOSClass(class.Type)
		}
	}
}

// deviceTypeFromOSClass maps nmap osclass type strings onto device types
func deviceTypeFromOSClass(class string) domain.DeviceType {
	switch strings.ToLower(class) {
	case "router":
		return domain.DeviceTypeRouter
	case "switch":
		return domain.DeviceTypeSwitch
	case "firewall":
		return domain.DeviceTypeFirewall
	case "printer":
		return domain.DeviceTypePrinter
	case "wap", "bridge":
		return domain.DeviceTypeAccessPoint
	case "general purpose":
		return ""
	default:
		return ""
	}
}

// inferDeviceType guesses equipment class from the open port profile
func inferDeviceType(ports []domain.ParsedPort) domain.DeviceType {
	open := make(map[int]bool, len(ports))
	for _, p := range ports {
		open[p.Number] = true
	}

	switch {
	case open[53] && (open[80] || open[443]):
		return domain.DeviceTypeRouter
	case open[9100] || open[631]:
		return domain.DeviceTypePrinter
	case open[3389] || open[445]:
		return domain.DeviceTypeServer
	case open[6443] || open[10250]:
		return domain.DeviceTypeServer
	case open[22] || open[80] || open[443] || open[8080]:
		return domain.DeviceTypeServer
	default:
		return domain.DeviceTypeUnknown
	}
}
