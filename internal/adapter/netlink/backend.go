// Package netlink implements the StateBackend port on the host kernel.
// Links, addresses and routes are read and changed through the NetworkManager port,
// ethernet link settings and resolver configuration through the FileManager port.
package netlink

import (
	"time"

	"golang-netstate/internal/port"
)

const (
	defaultSysfsRoot   = "/sys/class/net"
	defaultResolvConf  = "/etc/resolv.conf"
	defaultDHCPTimeout = 15 * time.Second
)

// Backend is a StateBackend adapter for the local host.
type Backend struct {
	networkMgr  port.NetworkManager
	fileMgr     port.FileManager
	dhcpClient  port.DHCPClient
	sysfsRoot   string
	resolvConf  string
	dhcpTimeout time.Duration
	retryDelay  time.Duration
}

// Ensure Backend implements the StateBackend port
var _ port.StateBackend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithSysfsRoot changes the directory holding per-interface sysfs attributes.
func WithSysfsRoot(dir string) Option {
	return func(b *Backend) {
		b.sysfsRoot = dir
	}
}

// WithResolvConf changes the resolver configuration file.
func WithResolvConf(path string) Option {
	return func(b *Backend) {
		b.resolvConf = path
	}
}

// WithDHCPTimeout changes the timeout of a single DHCP exchange.
func WithDHCPTimeout(timeout time.Duration) Option {
	return func(b *Backend) {
		b.dhcpTimeout = timeout
	}
}

// WithRetryDelay changes the delay between DHCP attempts.
func WithRetryDelay(delay time.Duration) Option {
	return func(b *Backend) {
		b.retryDelay = delay
	}
}

// NewBackend creates a netlink state backend.
func NewBackend(networkMgr port.NetworkManager, fileMgr port.FileManager, dhcpClient port.DHCPClient, opts ...Option) *Backend {
	b := &Backend{
		networkMgr:  networkMgr,
		fileMgr:     fileMgr,
		dhcpClient:  dhcpClient,
		sysfsRoot:   defaultSysfsRoot,
		resolvConf:  defaultResolvConf,
		dhcpTimeout: defaultDHCPTimeout,
		retryDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
