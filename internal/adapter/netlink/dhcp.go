package netlink

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"golang-netstate/internal/types"

	"github.com/sirupsen/logrus"
	nl "github.com/vishvananda/netlink"
)

const maxLeaseAttempts = 3

// acquireLease requests a DHCPv4 lease and installs its address, default route and DNS servers.
// Nothing is requested while a leased address is still installed.
func (b *Backend) acquireLease(ctx context.Context, link nl.Link, logger *logrus.Entry) error {
	existing, err := b.globalAddresses(link, nl.FAMILY_V4)
	if err != nil {
		return err
	}
	for _, addr := range existing {
		if isLeased(addr) {
			logger.WithField("ip", addr.IPNet.String()).Debug("DHCP lease already installed, skipping")
			return nil
		}
	}

	lease, err := b.requestLease(ctx, link.Attrs().Name, logger)
	if err != nil {
		return err
	}

	ipNet, err := parseIPNet(lease.Address.String())
	if err != nil {
		return err
	}

	if !containsAddr(existing, ipNet) {
		addr := &nl.Addr{
			IPNet:       ipNet,
			ValidLft:    int(lease.LeaseTime.Seconds()),
			PreferedLft: int(lease.LeaseTime.Seconds()),
		}
		if err := b.networkMgr.AddAddress(link, addr); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"ip":         ipNet.String(),
			"lease_time": lease.LeaseTime.String(),
		}).Info("Successfully added leased IP address")
	}

	if lease.Gateway != "" {
		gateway := net.ParseIP(lease.Gateway)
		if gateway == nil {
			return fmt.Errorf("invalid gateway address: %s", lease.Gateway)
		}
		if err := b.configureDefaultRoute(link, gateway, logger); err != nil {
			return fmt.Errorf("failed to set default gateway: %w", err)
		}
	}

	if len(lease.DNS) > 0 {
		logger.WithField("dns_servers", strings.Join(lease.DNS, ", ")).Info("DNS servers received")
		if err := b.configureDNS(lease.DNS, logger); err != nil {
			logger.WithError(err).Warn("Failed to configure DNS")
		}
	}

	return nil
}

func (b *Backend) requestLease(ctx context.Context, name string, logger *logrus.Entry) (*types.Lease, error) {
	var lastErr error
	for attempt := 1; attempt <= maxLeaseAttempts; attempt++ {
		logger.WithField("attempt", fmt.Sprintf("%d/%d", attempt, maxLeaseAttempts)).Debug("Attempting DHCP lease")

		lease, err := b.dhcpClient.RequestLease(ctx, name, b.dhcpTimeout)
		if err == nil {
			logger.WithField("ip", lease.Address.String()).Info("Successfully obtained DHCP lease")
			return lease, nil
		}
		lastErr = err
		logger.WithError(err).WithField("attempt", attempt).Warn("DHCP lease request failed")

		if attempt < maxLeaseAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("DHCP lease request failed after %d attempts: %w", maxLeaseAttempts, lastErr)
}

// configureDefaultRoute replaces any other IPv4 default route by one through gateway.
func (b *Backend) configureDefaultRoute(link nl.Link, gateway net.IP, logger *logrus.Entry) error {
	logger = logger.WithField("gateway", gateway.String())

	routes, err := b.networkMgr.ListRoutes(nl.FAMILY_V4)
	if err != nil {
		return err
	}

	index := link.Attrs().Index
	isTarget := func(route nl.Route) bool {
		return route.Gw != nil && route.Gw.Equal(gateway) && route.LinkIndex == index
	}

	for _, route := range routes {
		if isDefaultRoute(route) && isTarget(route) {
			logger.Debug("Default route already exists, skipping")
			return nil
		}
	}

	for _, route := range routes {
		if !isDefaultRoute(route) {
			continue
		}
		if err := b.networkMgr.DeleteRoute(&route); err != nil {
			logger.WithError(err).Warn("Failed to remove existing default route")
		} else if route.Gw != nil {
			logger.WithField("old_gateway", route.Gw.String()).Debug("Removed existing default route")
		}
	}

	if err := b.networkMgr.AddRoute(&nl.Route{LinkIndex: index, Gw: gateway}); err != nil {
		return err
	}
	logger.Info("Successfully added default route")
	return nil
}

func isDefaultRoute(route nl.Route) bool {
	return route.Dst == nil || route.Dst.String() == "0.0.0.0/0"
}

// configureDNS writes the leased DNS servers to the resolver configuration.
func (b *Backend) configureDNS(servers []string, logger *logrus.Entry) error {
	var content strings.Builder
	content.WriteString("# Generated by golang-netstate\n")
	for _, server := range servers {
		fmt.Fprintf(&content, "nameserver %s\n", server)
	}

	if current, err := b.fileMgr.ReadFile(b.resolvConf); err == nil && string(current) == content.String() {
		logger.Debug("DNS configuration already up to date, skipping")
		return nil
	}

	if err := b.fileMgr.WriteFile(b.resolvConf, []byte(content.String()), 0644); err != nil {
		return err
	}
	logger.WithField("file", b.resolvConf).Info("Updated resolver configuration")
	return nil
}
