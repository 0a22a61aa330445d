package netlink

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/types"

	nl "github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Observe reads the complete network state of the host.
func (b *Backend) Observe(ctx context.Context) (types.NetworkState, error) {
	logger := logging.WithComponent("netlink")

	links, err := b.networkMgr.ListLinks()
	if err != nil {
		return types.NetworkState{}, err
	}

	state := types.NetworkState{Interfaces: make([]types.Interface, 0, len(links))}
	names := make(map[int]string, len(links))
	for _, link := range links {
		iface, err := b.observeLink(link)
		if err != nil {
			return types.NetworkState{}, err
		}
		names[link.Attrs().Index] = iface.Name
		state.Interfaces = append(state.Interfaces, iface)
	}

	routes, err := b.observeRoutes(names)
	if err != nil {
		return types.NetworkState{}, err
	}
	state.Routes = routes

	dns, err := b.observeDNS()
	if err != nil {
		return types.NetworkState{}, err
	}
	state.DNS = dns

	logger.WithField("interfaces", len(state.Interfaces)).Debug("Observed host network state")
	return state, nil
}

func (b *Backend) observeLink(link nl.Link) (types.Interface, error) {
	attrs := link.Attrs()

	iface := types.Interface{
		Name:  attrs.Name,
		Type:  interfaceType(link),
		State: types.InterfaceStateDown,
		MTU:   types.Int(attrs.MTU),
	}
	if attrs.Flags&net.FlagUp != 0 {
		iface.State = types.InterfaceStateUp
	}
	if len(attrs.HardwareAddr) > 0 {
		iface.MACAddress = strings.ToUpper(attrs.HardwareAddr.String())
	}
	if attrs.Alias != "" {
		iface.Description = types.String(attrs.Alias)
	}
	if iface.Type == types.InterfaceTypeEthernet {
		iface.Ethernet = b.observeEthernet(attrs.Name)
	}

	var err error
	if iface.IPv4, err = b.observeFamily(link, nl.FAMILY_V4); err != nil {
		return types.Interface{}, err
	}
	if iface.IPv6, err = b.observeFamily(link, nl.FAMILY_V6); err != nil {
		return types.Interface{}, err
	}

	return iface, nil
}

// observeFamily returns the global scope addresses of one family in kernel order.
// An IPv4 address without the permanent flag was installed with a lease lifetime.
func (b *Backend) observeFamily(link nl.Link, family int) (*types.IPConfig, error) {
	addrs, err := b.networkMgr.ListAddresses(link, family)
	if err != nil {
		return nil, err
	}

	list := make([]types.IPAddress, 0, len(addrs))
	dynamic := false
	for _, addr := range addrs {
		if addr.Scope != int(nl.SCOPE_UNIVERSE) {
			continue
		}
		ones, _ := addr.IPNet.Mask.Size()
		list = append(list, types.IPAddress{IP: addr.IPNet.IP.String(), PrefixLength: ones})
		if addr.Flags&unix.IFA_F_PERMANENT == 0 {
			dynamic = true
		}
	}

	cfg := &types.IPConfig{
		Enabled:   types.Bool(len(list) > 0),
		Addresses: &list,
	}
	if family == nl.FAMILY_V4 {
		cfg.DHCP = types.Bool(dynamic)
	}
	return cfg, nil
}

// observeEthernet reads speed and duplex from sysfs. Both are unavailable while the link is down.
func (b *Backend) observeEthernet(name string) *types.EthernetConfig {
	var ethernet types.EthernetConfig
	found := false

	if data, err := b.fileMgr.ReadFile(filepath.Join(b.sysfsRoot, name, "speed")); err == nil {
		if speed, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil && speed > 0 {
			ethernet.Speed = types.Int(speed)
			found = true
		}
	}
	if data, err := b.fileMgr.ReadFile(filepath.Join(b.sysfsRoot, name, "duplex")); err == nil {
		switch duplex := types.Duplex(strings.TrimSpace(string(data))); duplex {
		case types.DuplexFull, types.DuplexHalf:
			ethernet.Duplex = duplex
			found = true
		}
	}

	if !found {
		return nil
	}
	return &ethernet
}

func (b *Backend) observeRoutes(names map[int]string) (*types.Routes, error) {
	routes := &types.Routes{}
	for _, family := range []int{nl.FAMILY_V4, nl.FAMILY_V6} {
		list, err := b.networkMgr.ListRoutes(family)
		if err != nil {
			return nil, err
		}
		for _, route := range list {
			routes.Running = append(routes.Running, convertRoute(route, family, names))
		}
	}
	return routes, nil
}

func convertRoute(route nl.Route, family int, names map[int]string) types.Route {
	out := types.Route{
		NextHopInterface: names[route.LinkIndex],
		Metric:           route.Priority,
		TableID:          route.Table,
	}
	switch {
	case route.Dst != nil:
		out.Destination = route.Dst.String()
	case family == nl.FAMILY_V6:
		out.Destination = "::/0"
	default:
		out.Destination = "0.0.0.0/0"
	}
	if route.Gw != nil {
		out.NextHopAddress = route.Gw.String()
	}
	return out
}

// observeDNS parses nameserver and search entries of the resolver configuration.
func (b *Backend) observeDNS() (*types.DNSResolver, error) {
	if !b.fileMgr.FileExists(b.resolvConf) {
		return nil, nil
	}
	data, err := b.fileMgr.ReadFile(b.resolvConf)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolver configuration: %w", err)
	}

	running := &types.DNSClientState{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") || strings.HasPrefix(fields[0], ";") {
			continue
		}
		switch fields[0] {
		case "nameserver":
			running.Server = append(running.Server, fields[1])
		case "search", "domain":
			running.Search = append(running.Search, fields[1:]...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse resolver configuration: %w", err)
	}

	return &types.DNSResolver{Running: running}, nil
}

func interfaceType(link nl.Link) types.InterfaceType {
	switch link.Type() {
	case "device":
		if link.Attrs().Flags&net.FlagLoopback != 0 {
			return types.InterfaceTypeLoopback
		}
		return types.InterfaceTypeEthernet
	case "bond":
		return types.InterfaceTypeBond
	case "vlan":
		return types.InterfaceTypeVlan
	case "bridge":
		return types.InterfaceTypeLinuxBridge
	case "dummy":
		return types.InterfaceTypeDummy
	case "veth":
		return types.InterfaceTypeVeth
	case "vrf":
		return types.InterfaceTypeVrf
	case "vxlan":
		return types.InterfaceTypeVxlan
	default:
		return types.InterfaceTypeUnknown
	}
}
