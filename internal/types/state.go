// Package types defines the network state model shared by the reconciler and the state backends.
// Field names and their serialized keys follow the nmstate schema.
package types

import "strconv"

// InterfaceType is the link-layer kind of an interface. It is read from observation only.
type InterfaceType string

const (
	InterfaceTypeEthernet    InterfaceType = "ethernet"
	InterfaceTypeBond        InterfaceType = "bond"
	InterfaceTypeVlan        InterfaceType = "vlan"
	InterfaceTypeLinuxBridge InterfaceType = "linux-bridge"
	InterfaceTypeDummy       InterfaceType = "dummy"
	InterfaceTypeLoopback    InterfaceType = "loopback"
	InterfaceTypeVeth        InterfaceType = "veth"
	InterfaceTypeVrf         InterfaceType = "vrf"
	InterfaceTypeVxlan       InterfaceType = "vxlan"
	InterfaceTypeUnknown     InterfaceType = "unknown"
)

// InterfaceState is the lifecycle state of an interface.
// An empty value means the interface is implicitly present.
type InterfaceState string

const (
	InterfaceStateUp     InterfaceState = "up"
	InterfaceStateDown   InterfaceState = "down"
	InterfaceStateAbsent InterfaceState = "absent"
)

// Duplex is the ethernet duplex mode.
type Duplex string

const (
	DuplexFull Duplex = "full"
	DuplexHalf Duplex = "half"
)

// IPAddress is one address entry of an IPConfig. Two values are equal iff both fields are equal.
type IPAddress struct {
	IP           string `json:"ip" yaml:"ip"`
	PrefixLength int    `json:"prefix-length" yaml:"prefix-length"`
}

// String renders the address in CIDR notation.
func (a IPAddress) String() string {
	return a.IP + "/" + strconv.Itoa(a.PrefixLength)
}

// IPConfig is the per-protocol configuration of an interface.
// Addresses is a pointer so that an explicit empty list ("remove all") survives serialization.
type IPConfig struct {
	Enabled   *bool        `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	DHCP      *bool        `json:"dhcp,omitempty" yaml:"dhcp,omitempty"`
	Addresses *[]IPAddress `json:"address,omitempty" yaml:"address,omitempty"`
}

// IsEmpty reports whether no field of the config is set.
func (c IPConfig) IsEmpty() bool {
	return c.Enabled == nil && c.DHCP == nil && c.Addresses == nil
}

// IsEnabled reports whether the family is explicitly enabled.
func (c IPConfig) IsEnabled() bool {
	return c.Enabled != nil && *c.Enabled
}

// AddressList returns a copy of the address list, nil when none is set.
func (c IPConfig) AddressList() []IPAddress {
	if c.Addresses == nil {
		return nil
	}
	out := make([]IPAddress, len(*c.Addresses))
	copy(out, *c.Addresses)
	return out
}

// Clone returns a deep copy of the config.
func (c IPConfig) Clone() IPConfig {
	out := IPConfig{
		Enabled: clonePtr(c.Enabled),
		DHCP:    clonePtr(c.DHCP),
	}
	if c.Addresses != nil {
		addrs := c.AddressList()
		out.Addresses = &addrs
	}
	return out
}

// EthernetConfig holds the link settings of an ethernet interface.
type EthernetConfig struct {
	AutoNegotiation *bool  `json:"auto-negotiation,omitempty" yaml:"auto-negotiation,omitempty"`
	Duplex          Duplex `json:"duplex,omitempty" yaml:"duplex,omitempty"`
	Speed           *int   `json:"speed,omitempty" yaml:"speed,omitempty"`
}

// Clone returns a deep copy of the ethernet settings.
func (e *EthernetConfig) Clone() *EthernetConfig {
	if e == nil {
		return nil
	}
	return &EthernetConfig{
		AutoNegotiation: clonePtr(e.AutoNegotiation),
		Duplex:          e.Duplex,
		Speed:           clonePtr(e.Speed),
	}
}

// Interface is the state of one network interface, identified by Name.
// In a partial state only the fields to change are set, plus Name and Type.
type Interface struct {
	Name        string          `json:"name" yaml:"name"`
	Type        InterfaceType   `json:"type,omitempty" yaml:"type,omitempty"`
	State       InterfaceState  `json:"state,omitempty" yaml:"state,omitempty"`
	Description *string         `json:"description,omitempty" yaml:"description,omitempty"`
	MACAddress  string          `json:"mac-address,omitempty" yaml:"mac-address,omitempty"`
	MTU         *int            `json:"mtu,omitempty" yaml:"mtu,omitempty"`
	Ethernet    *EthernetConfig `json:"ethernet,omitempty" yaml:"ethernet,omitempty"`
	IPv4        *IPConfig       `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IPv6        *IPConfig       `json:"ipv6,omitempty" yaml:"ipv6,omitempty"`
}

// Clone returns a deep copy of the interface record.
func (i Interface) Clone() Interface {
	out := i
	out.Description = clonePtr(i.Description)
	out.MTU = clonePtr(i.MTU)
	out.Ethernet = i.Ethernet.Clone()
	if i.IPv4 != nil {
		v4 := i.IPv4.Clone()
		out.IPv4 = &v4
	}
	if i.IPv6 != nil {
		v6 := i.IPv6.Clone()
		out.IPv6 = &v6
	}
	return out
}

// Route is a single routing table entry.
type Route struct {
	Destination      string `json:"destination,omitempty" yaml:"destination,omitempty"`
	NextHopInterface string `json:"next-hop-interface,omitempty" yaml:"next-hop-interface,omitempty"`
	NextHopAddress   string `json:"next-hop-address,omitempty" yaml:"next-hop-address,omitempty"`
	Metric           int    `json:"metric,omitempty" yaml:"metric,omitempty"`
	TableID          int    `json:"table-id,omitempty" yaml:"table-id,omitempty"`
}

// Routes holds the running and configured routes. The reconciler passes it through untouched.
type Routes struct {
	Running []Route `json:"running,omitempty" yaml:"running,omitempty"`
	Config  []Route `json:"config,omitempty" yaml:"config,omitempty"`
}

// DNSClientState is a resolver configuration.
type DNSClientState struct {
	Server []string `json:"server,omitempty" yaml:"server,omitempty"`
	Search []string `json:"search,omitempty" yaml:"search,omitempty"`
}

// DNSResolver holds the running and configured resolver settings.
type DNSResolver struct {
	Running *DNSClientState `json:"running,omitempty" yaml:"running,omitempty"`
	Config  *DNSClientState `json:"config,omitempty" yaml:"config,omitempty"`
}

// NetworkState is a full observed network configuration, or a partial desired one.
type NetworkState struct {
	DNS        *DNSResolver `json:"dns-resolver,omitempty" yaml:"dns-resolver,omitempty"`
	Routes     *Routes      `json:"routes,omitempty" yaml:"routes,omitempty"`
	Interfaces []Interface  `json:"interfaces" yaml:"interfaces"`
}

// NewPartialState wraps interface records into a state payload that carries nothing else.
func NewPartialState(interfaces []Interface) NetworkState {
	return NetworkState{Interfaces: interfaces}
}

// Clone returns a deep copy of the state.
func (s NetworkState) Clone() NetworkState {
	out := NetworkState{}
	if s.DNS != nil {
		out.DNS = &DNSResolver{
			Running: s.DNS.Running.clone(),
			Config:  s.DNS.Config.clone(),
		}
	}
	if s.Routes != nil {
		out.Routes = &Routes{
			Running: cloneSlice(s.Routes.Running),
			Config:  cloneSlice(s.Routes.Config),
		}
	}
	if s.Interfaces != nil {
		out.Interfaces = make([]Interface, len(s.Interfaces))
		for i, iface := range s.Interfaces {
			out.Interfaces[i] = iface.Clone()
		}
	}
	return out
}

// InterfaceNames returns the names of all interfaces in order.
func (s NetworkState) InterfaceNames() []string {
	names := make([]string, 0, len(s.Interfaces))
	for _, iface := range s.Interfaces {
		names = append(names, iface.Name)
	}
	return names
}

func (d *DNSClientState) clone() *DNSClientState {
	if d == nil {
		return nil
	}
	return &DNSClientState{
		Server: cloneSlice(d.Server),
		Search: cloneSlice(d.Search),
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
