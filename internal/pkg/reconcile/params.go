package reconcile

import (
	"fmt"
	"strings"
)

// Action is the requested lifecycle action for the target interfaces.
type Action string

const (
	ActionPresent Action = "present"
	ActionAbsent  Action = "absent"
	ActionUp      Action = "up"
	ActionDown    Action = "down"
)

// Actions lists every lifecycle action in declaration order.
var Actions = []Action{ActionPresent, ActionAbsent, ActionUp, ActionDown}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Duplex is the requested duplex setting. DuplexAuto turns on auto-negotiation.
type Duplex string

const (
	DuplexFull Duplex = "full"
	DuplexHalf Duplex = "half"
	DuplexAuto Duplex = "auto"
)

// Element is the per-interface parameter set. Zero values mean "not requested".
type Element struct {
	Name        string  `yaml:"name" json:"name"`
	IPv4        string  `yaml:"ipv4,omitempty" json:"ipv4,omitempty"`
	IPv6        string  `yaml:"ipv6,omitempty" json:"ipv6,omitempty"`
	MTU         int     `yaml:"mtu,omitempty" json:"mtu,omitempty"`
	Duplex      Duplex  `yaml:"duplex,omitempty" json:"duplex,omitempty"`
	Speed       int     `yaml:"speed,omitempty" json:"speed,omitempty"`
	Description *string `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool   `yaml:"enabled,omitempty" json:"enabled,omitempty"` // informational only
}

// Params is the typed parameter record produced by the command layer.
// Exactly one of Name and Aggregate must be set.
type Params struct {
	Element   `yaml:",inline"`
	Aggregate []Element `yaml:"aggregate,omitempty" json:"aggregate,omitempty"`
	State     Action    `yaml:"state,omitempty" json:"state,omitempty"`
	Purge     bool      `yaml:"purge,omitempty" json:"purge,omitempty"`
	Debug     bool      `yaml:"debug,omitempty" json:"debug,omitempty"`
	CheckMode bool      `yaml:"check_mode,omitempty" json:"check_mode,omitempty"`
}

// Validate checks the parameter constraints and fills in the default state.
func (p *Params) Validate() error {
	if p.Name == "" && len(p.Aggregate) == 0 {
		return newParameterError("name or aggregate parameter missing")
	}
	if p.Name != "" && len(p.Aggregate) > 0 {
		return newParameterError("parameters are mutually exclusive: name|aggregate")
	}

	if p.State == "" {
		p.State = ActionPresent
	}
	if !p.State.Valid() {
		return newParameterError("state must be one of %s, got %q", joinActions(Actions), p.State)
	}

	if p.Name != "" {
		if err := p.Element.validate(); err != nil {
			return err
		}
	}
	for i, element := range p.Aggregate {
		if element.Name == "" {
			return newParameterError("aggregate entry %d: name is required", i)
		}
		if err := element.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Elements returns the requested elements in input order.
func (p Params) Elements() []Element {
	if p.Name != "" {
		return []Element{p.Element}
	}
	return p.Aggregate
}

func (e Element) validate() error {
	switch e.Duplex {
	case "", DuplexFull, DuplexHalf, DuplexAuto:
	default:
		return newParameterError("%s: duplex must be one of full, half, auto, got %q", e.Name, e.Duplex)
	}
	if e.MTU < 0 {
		return newParameterError("%s: mtu must be positive", e.Name)
	}
	if e.Speed < 0 {
		return newParameterError("%s: speed must be positive", e.Name)
	}
	return nil
}

func requireActions(action Action, allowed ...Action) error {
	for _, a := range allowed {
		if action == a {
			return nil
		}
	}
	return newParameterError("state must be one of %s, got %q", joinActions(allowed), action)
}

func joinActions(actions []Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return strings.Join(names, ", ")
}

// String renders the parameters for log output.
func (p Params) String() string {
	if p.Name != "" {
		return fmt.Sprintf("name=%s state=%s", p.Name, p.State)
	}
	return fmt.Sprintf("aggregate=%d state=%s", len(p.Aggregate), p.State)
}
