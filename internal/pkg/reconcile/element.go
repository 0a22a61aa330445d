package reconcile

import "golang-netstate/internal/types"

// BuildInterfaceState builds the partial state for the link settings of a single interface.
// Address families are not touched. The lifecycle state is left out for ActionPresent so the
// backend does not cycle the link. A nil state means nothing to apply.
func BuildInterfaceState(observed []types.Interface, p Params) (*types.Interface, error) {
	current, ok := FindInterface(observed, p.Name)
	if !ok {
		if p.State == ActionAbsent {
			return nil, nil
		}
		return nil, &InterfaceNotFoundError{Name: p.Name}
	}

	state := types.Interface{Name: p.Name, Type: current.Type}

	if p.State != ActionPresent {
		state.State = types.InterfaceState(p.State)
	}

	if p.MTU > 0 {
		state.MTU = types.Int(p.MTU)
	}

	var ethernet types.EthernetConfig
	hasEthernet := false
	if p.Duplex != "" {
		ethernet.AutoNegotiation = types.Bool(p.Duplex == DuplexAuto)
		if p.Duplex != DuplexAuto {
			ethernet.Duplex = types.Duplex(p.Duplex)
		}
		hasEthernet = true
	}
	if p.Speed > 0 {
		ethernet.Speed = types.Int(p.Speed)
		hasEthernet = true
	}
	if hasEthernet {
		state.Ethernet = &ethernet
	}

	if p.Description != nil {
		state.Description = types.String(*p.Description)
	}

	return &state, nil
}
