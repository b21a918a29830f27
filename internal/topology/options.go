package topology

import "fmt"

// InternetMode controls how internet-bound traffic is rendered
type InternetMode string

const (
	// InternetHide drops public hosts and internet-bound edges
	InternetHide InternetMode = "hide"
	// InternetShow places public hosts as leaves under a Public IPs compound
	InternetShow InternetMode = "show"
	// InternetCloud folds internet-bound flows through each subnet's
	// gateway into a single aggregated Internet edge
	InternetCloud InternetMode = "cloud"
)

// Format selects the wire payload shape
type Format string

const (
	FormatCytoscape Format = "cytoscape"
	FormatLegacy    Format = "legacy"
)

// Options configure one synthesis pass
type Options struct {
	SubnetPrefix        int          `json:"subnet_prefix"`
	Format              Format       `json:"format"`
	ShowInternet        InternetMode `json:"show_internet"`
	RouteThroughGateway bool         `json:"route_through_gateway"`
	VLANFilter          int          `json:"vlan_filter,omitempty"`
	SubnetFilter        string       `json:"subnet_filter,omitempty"`
	IncludeInactive     bool         `json:"include_inactive,omitempty"`
}

// DefaultOptions returns the synthesis defaults
func DefaultOptions() Options {
	return Options{
		SubnetPrefix: 24,
		Format:       FormatCytoscape,
		ShowInternet: InternetCloud,
	}
}

// Validate checks option ranges and enum values
func (o Options) Validate() error {
	if o.SubnetPrefix < 8 || o.SubnetPrefix > 32 {
		return fmt.Errorf("subnet_prefix %d out of range [8,32]", o.SubnetPrefix)
	}
	switch o.ShowInternet {
	case InternetHide, InternetShow, InternetCloud:
	default:
		return fmt.Errorf("invalid show_internet %q", o.ShowInternet)
	}
	switch o.Format {
	case FormatCytoscape, FormatLegacy:
	default:
		return fmt.Errorf("invalid format %q", o.Format)
	}
	return nil
}
