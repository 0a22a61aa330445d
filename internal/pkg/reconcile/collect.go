package reconcile

// AddressConfig holds the CIDR strings requested for one interface, per family, in arrival order.
type AddressConfig struct {
	IPv4 []string
	IPv6 []string
}

// Settings maps interface names to their accumulated address requests.
// Names keep the order of their first appearance.
type Settings struct {
	names  []string
	byName map[string]*AddressConfig
}

// CollectSettings combines a batch of elements per interface name. Repeated names accumulate,
// they do not replace each other. Duplicate CIDRs are kept; the address-set operations drop them later.
func CollectSettings(batch []Element) Settings {
	s := Settings{byName: make(map[string]*AddressConfig)}
	for _, element := range batch {
		cfg, ok := s.byName[element.Name]
		if !ok {
			cfg = &AddressConfig{}
			s.byName[element.Name] = cfg
			s.names = append(s.names, element.Name)
		}
		if element.IPv4 != "" {
			cfg.IPv4 = append(cfg.IPv4, element.IPv4)
		}
		if element.IPv6 != "" {
			cfg.IPv6 = append(cfg.IPv6, element.IPv6)
		}
	}
	return s
}

// Names returns the interface names in order of first appearance.
func (s Settings) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get returns the accumulated config for name.
func (s Settings) Get(name string) (AddressConfig, bool) {
	cfg, ok := s.byName[name]
	if !ok {
		return AddressConfig{}, false
	}
	return *cfg, true
}

// Len returns the number of distinct interfaces.
func (s Settings) Len() int {
	return len(s.names)
}

// HasAddresses reports whether any family carries a requested address.
func (c AddressConfig) HasAddresses() bool {
	return len(c.IPv4) > 0 || len(c.IPv6) > 0
}
