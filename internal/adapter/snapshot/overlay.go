package snapshot

import (
	"fmt"

	"golang-netstate/internal/types"
)

// Overlay returns a copy of current with desired applied on top.
//
// Interface records are matched by name and merged field by field: every field set in the
// desired record replaces the stored one, unset fields are kept. A record with state absent
// removes the interface. Unknown interfaces are added only when their type is given.
// Non-nil dns-resolver and routes sections replace the stored sections.
func Overlay(current, desired types.NetworkState) (types.NetworkState, error) {
	out := current.Clone()
	if desired.DNS != nil {
		out.DNS = desired.Clone().DNS
	}
	if desired.Routes != nil {
		out.Routes = desired.Clone().Routes
	}

	for _, want := range desired.Interfaces {
		idx := indexOf(out.Interfaces, want.Name)

		if want.State == types.InterfaceStateAbsent {
			if idx >= 0 {
				out.Interfaces = append(out.Interfaces[:idx], out.Interfaces[idx+1:]...)
			}
			continue
		}

		if idx < 0 {
			if want.Type == "" {
				return types.NetworkState{}, fmt.Errorf("interface %s does not exist and has no type", want.Name)
			}
			added := want.Clone()
			normalizeIP(added.IPv4)
			normalizeIP(added.IPv6)
			out.Interfaces = append(out.Interfaces, added)
			continue
		}

		mergeInterface(&out.Interfaces[idx], want.Clone())
	}

	return out, nil
}

func indexOf(interfaces []types.Interface, name string) int {
	for i, iface := range interfaces {
		if iface.Name == name {
			return i
		}
	}
	return -1
}

func mergeInterface(dst *types.Interface, src types.Interface) {
	if src.Type != "" {
		dst.Type = src.Type
	}
	if src.State != "" {
		dst.State = src.State
	}
	if src.Description != nil {
		dst.Description = src.Description
	}
	if src.MACAddress != "" {
		dst.MACAddress = src.MACAddress
	}
	if src.MTU != nil {
		dst.MTU = src.MTU
	}

	if src.Ethernet != nil {
		if dst.Ethernet == nil {
			dst.Ethernet = &types.EthernetConfig{}
		}
		if src.Ethernet.AutoNegotiation != nil {
			dst.Ethernet.AutoNegotiation = src.Ethernet.AutoNegotiation
		}
		if src.Ethernet.Duplex != "" {
			dst.Ethernet.Duplex = src.Ethernet.Duplex
		}
		if src.Ethernet.Speed != nil {
			dst.Ethernet.Speed = src.Ethernet.Speed
		}
	}

	dst.IPv4 = mergeIP(dst.IPv4, src.IPv4)
	dst.IPv6 = mergeIP(dst.IPv6, src.IPv6)
}

func mergeIP(dst, src *types.IPConfig) *types.IPConfig {
	if src == nil {
		return dst
	}
	if dst == nil {
		dst = &types.IPConfig{}
	}
	if src.Enabled != nil {
		dst.Enabled = src.Enabled
	}
	if src.DHCP != nil {
		dst.DHCP = src.DHCP
	}
	if src.Addresses != nil {
		dst.Addresses = src.Addresses
	}
	normalizeIP(dst)
	return dst
}

// normalizeIP drops the addresses of a disabled family.
func normalizeIP(cfg *types.IPConfig) {
	if cfg != nil && cfg.Enabled != nil && !*cfg.Enabled {
		cfg.Addresses = &[]types.IPAddress{}
	}
}
