package reconcile

import (
	"golang-netstate/internal/pkg/ipconfig"
	"golang-netstate/internal/types"
)

type family int

const (
	familyIPv4 family = iota
	familyIPv6
)

func (f family) String() string {
	if f == familyIPv6 {
		return "ipv6"
	}
	return "ipv4"
}

var families = []family{familyIPv4, familyIPv6}

// l3Handler builds the partial state of one interface. A nil state means nothing to apply.
type l3Handler func(observed []types.Interface, name string, cfg AddressConfig, purge bool) (*types.Interface, error)

var l3Handlers = map[Action]l3Handler{
	ActionPresent: buildL3Present,
	ActionAbsent:  buildL3Absent,
}

// BuildL3States builds the partial interface states for every collected interface.
// The first error aborts the whole batch.
func BuildL3States(observed []types.Interface, settings Settings, action Action, purge bool) ([]types.Interface, error) {
	handler, ok := l3Handlers[action]
	if !ok {
		return nil, requireActions(action, ActionPresent, ActionAbsent)
	}

	var states []types.Interface
	for _, name := range settings.Names() {
		cfg, _ := settings.Get(name)
		state, err := handler(observed, name, cfg, purge)
		if err != nil {
			return nil, err
		}
		if state != nil {
			states = append(states, *state)
		}
	}
	return states, nil
}

func buildL3Present(observed []types.Interface, name string, cfg AddressConfig, purge bool) (*types.Interface, error) {
	current, ok := FindInterface(observed, name)
	if !ok {
		return nil, &InterfaceNotFoundError{Name: name}
	}

	state := newL3State(current)
	state.State = types.InterfaceStateUp

	for _, f := range families {
		addresses := cfg.addresses(f)
		ipcfg := *state.ipConfig(f)

		var err error
		switch {
		case purge:
			ipcfg, err = ipconfig.SetAddresses(ipcfg, addresses)
		case len(addresses) > 0:
			ipcfg, err = ipconfig.AddAddresses(ipcfg, addresses)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		state.setIPConfig(f, ipcfg)
	}

	return &state.Interface, nil
}

func buildL3Absent(observed []types.Interface, name string, cfg AddressConfig, _ bool) (*types.Interface, error) {
	current, ok := FindInterface(observed, name)
	if !ok {
		return nil, nil
	}

	state := newL3State(current)
	clearAll := !cfg.HasAddresses()

	for _, f := range families {
		addresses := cfg.addresses(f)
		ipcfg := *state.ipConfig(f)

		var err error
		switch {
		case len(addresses) > 0:
			ipcfg, err = ipconfig.RemoveAddresses(ipcfg, addresses)
		case clearAll:
			ipcfg, err = ipconfig.SetAddresses(ipcfg, nil)
		}
		if err != nil {
			return nil, err
		}

		// IPv6 cannot be disabled through the backend, it keeps an empty enabled list.
		if len(ipcfg.AddressList()) == 0 && f != familyIPv6 {
			ipcfg.Enabled = types.Bool(false)
		}
		state.setIPConfig(f, ipcfg)
	}

	return &state.Interface, nil
}

// l3State is the partial interface record of the L3 path: identity plus both address families.
type l3State struct {
	types.Interface
}

func newL3State(current types.Interface) *l3State {
	s := &l3State{Interface: types.Interface{Name: current.Name, Type: current.Type}}
	s.IPv4 = orEmpty(current.IPv4)
	s.IPv6 = orEmpty(current.IPv6)
	return s
}

func (s *l3State) ipConfig(f family) *types.IPConfig {
	if f == familyIPv6 {
		return s.IPv6
	}
	return s.IPv4
}

func (s *l3State) setIPConfig(f family, cfg types.IPConfig) {
	if f == familyIPv6 {
		s.IPv6 = &cfg
		return
	}
	s.IPv4 = &cfg
}

func (c AddressConfig) addresses(f family) []string {
	if f == familyIPv6 {
		return c.IPv6
	}
	return c.IPv4
}

func orEmpty(cfg *types.IPConfig) *types.IPConfig {
	if cfg == nil {
		return &types.IPConfig{}
	}
	return cfg
}
