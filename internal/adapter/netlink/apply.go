package netlink

import (
	"context"
	"fmt"
	"net"

	"golang-netstate/internal/pkg/logging"
	"golang-netstate/internal/types"

	"github.com/sirupsen/logrus"
	nl "github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Apply changes the host to match the given partial state. Interfaces are handled in order and
// the first failure stops the run; changes already made are not rolled back.
func (b *Backend) Apply(ctx context.Context, desired types.NetworkState) error {
	for _, iface := range desired.Interfaces {
		if err := b.applyInterface(ctx, iface); err != nil {
			return fmt.Errorf("interface %s: %w", iface.Name, err)
		}
	}
	return nil
}

func (b *Backend) applyInterface(ctx context.Context, iface types.Interface) error {
	logger := logging.WithComponentAndInterface("netlink", iface.Name)

	link, err := b.networkMgr.GetLinkByName(iface.Name)
	if err != nil {
		if iface.State == types.InterfaceStateAbsent {
			logger.Debug("Interface already absent, skipping")
			return nil
		}
		return err
	}

	if iface.State == types.InterfaceStateAbsent {
		return b.removeLink(link, logger)
	}

	attrs := link.Attrs()
	if iface.MTU != nil && *iface.MTU != attrs.MTU {
		if err := b.networkMgr.SetLinkMTU(link, *iface.MTU); err != nil {
			return err
		}
		logger.WithField("mtu", *iface.MTU).Info("Changed MTU")
	}

	if iface.Description != nil && *iface.Description != attrs.Alias {
		if err := b.networkMgr.SetLinkAlias(link, *iface.Description); err != nil {
			return err
		}
		logger.WithField("description", *iface.Description).Info("Changed description")
	}

	if iface.Ethernet != nil {
		logger.WithFields(logrus.Fields{
			"auto_negotiation": iface.Ethernet.AutoNegotiation,
			"duplex":           iface.Ethernet.Duplex,
			"speed":            iface.Ethernet.Speed,
		}).Warn("Ethernet link settings are not supported by the netlink backend, skipping")
	}

	if err := b.syncAddresses(link, nl.FAMILY_V4, iface.IPv4, logger); err != nil {
		return err
	}
	if err := b.syncAddresses(link, nl.FAMILY_V6, iface.IPv6, logger); err != nil {
		return err
	}

	switch iface.State {
	case types.InterfaceStateUp:
		if attrs.Flags&net.FlagUp == 0 {
			if err := b.networkMgr.SetLinkUp(link); err != nil {
				return err
			}
			logger.Info("Brought interface up")
		}
	case types.InterfaceStateDown:
		if attrs.Flags&net.FlagUp != 0 {
			if err := b.networkMgr.SetLinkDown(link); err != nil {
				return err
			}
			logger.Info("Brought interface down")
		}
	}

	if wantsDHCP(iface.IPv4) {
		return b.acquireLease(ctx, link, logger)
	}
	return nil
}

func (b *Backend) removeLink(link nl.Link, logger *logrus.Entry) error {
	if link.Type() == "device" {
		return fmt.Errorf("cannot remove physical interface %s", link.Attrs().Name)
	}
	if err := b.networkMgr.DeleteLink(link); err != nil {
		return err
	}
	logger.Info("Removed interface")
	return nil
}

// syncAddresses makes the global addresses of one family match cfg. A nil cfg or a nil
// address list leaves the family untouched, enabled: false removes every address.
// Leased addresses are kept while DHCP is requested.
func (b *Backend) syncAddresses(link nl.Link, family int, cfg *types.IPConfig, logger *logrus.Entry) error {
	if cfg == nil {
		return nil
	}
	flush := cfg.Enabled != nil && !*cfg.Enabled
	if !flush && cfg.Addresses == nil {
		return nil
	}

	existing, err := b.globalAddresses(link, family)
	if err != nil {
		return err
	}

	if flush {
		for _, addr := range existing {
			if err := b.deleteAddress(link, addr, logger); err != nil {
				return err
			}
		}
		return nil
	}

	desired, err := toIPNets(*cfg.Addresses)
	if err != nil {
		return err
	}

	keepLeased := cfg.DHCP != nil && *cfg.DHCP
	for _, addr := range existing {
		if containsIPNet(desired, addr.IPNet) || (keepLeased && isLeased(addr)) {
			continue
		}
		if err := b.deleteAddress(link, addr, logger); err != nil {
			return err
		}
	}

	for _, ipNet := range desired {
		if containsAddr(existing, ipNet) {
			logger.WithField("ip", ipNet.String()).Debug("IP address already configured, skipping")
			continue
		}
		if err := b.networkMgr.AddAddress(link, &nl.Addr{IPNet: ipNet}); err != nil {
			return err
		}
		logger.WithField("ip", ipNet.String()).Info("Successfully added IP address")
	}

	return nil
}

func (b *Backend) deleteAddress(link nl.Link, addr nl.Addr, logger *logrus.Entry) error {
	if err := b.networkMgr.DeleteAddress(link, &addr); err != nil {
		return err
	}
	logger.WithField("address", addr.IPNet.String()).Info("Removed IP address")
	return nil
}

func (b *Backend) globalAddresses(link nl.Link, family int) ([]nl.Addr, error) {
	addrs, err := b.networkMgr.ListAddresses(link, family)
	if err != nil {
		return nil, err
	}
	global := make([]nl.Addr, 0, len(addrs))
	for _, addr := range addrs {
		if addr.Scope == int(nl.SCOPE_UNIVERSE) {
			global = append(global, addr)
		}
	}
	return global, nil
}

func toIPNets(addrs []types.IPAddress) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(addrs))
	for _, addr := range addrs {
		ipNet, err := parseIPNet(addr.String())
		if err != nil {
			return nil, err
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// parseIPNet parses a CIDR keeping the host part of the address.
func parseIPNet(cidr string) (*net.IPNet, error) {
	ip, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid address %s: %w", cidr, err)
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	return &net.IPNet{IP: ip, Mask: network.Mask}, nil
}

func sameIPNet(a, b *net.IPNet) bool {
	if a == nil || b == nil {
		return false
	}
	aOnes, aBits := a.Mask.Size()
	bOnes, bBits := b.Mask.Size()
	return a.IP.Equal(b.IP) && aOnes == bOnes && aBits == bBits
}

func containsIPNet(nets []*net.IPNet, target *net.IPNet) bool {
	for _, ipNet := range nets {
		if sameIPNet(ipNet, target) {
			return true
		}
	}
	return false
}

func containsAddr(addrs []nl.Addr, target *net.IPNet) bool {
	for _, addr := range addrs {
		if sameIPNet(addr.IPNet, target) {
			return true
		}
	}
	return false
}

func isLeased(addr nl.Addr) bool {
	return addr.Flags&unix.IFA_F_PERMANENT == 0
}

func wantsDHCP(cfg *types.IPConfig) bool {
	if cfg == nil || cfg.DHCP == nil || !*cfg.DHCP {
		return false
	}
	return cfg.Enabled == nil || *cfg.Enabled
}
