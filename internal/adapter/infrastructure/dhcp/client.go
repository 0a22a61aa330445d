// Package dhcp provides DHCP client adapter implementation.
package dhcp

import (
	"context"
	"fmt"
	"time"

	"golang-netstate/internal/port"
	"golang-netstate/internal/types"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/dhcpv4/nclient4"
)

// defaultPrefixLength is used when the server omits the subnet mask option.
const defaultPrefixLength = 24

// ClientAdapter is an adapter that implements the DHCPClient port using insomniacslk/dhcp library.
type ClientAdapter struct{}

// Ensure ClientAdapter implements the DHCPClient port
var _ port.DHCPClient = (*ClientAdapter)(nil)

// NewClientAdapter creates a new DHCP client adapter.
func NewClientAdapter() *ClientAdapter {
	return &ClientAdapter{}
}

// RequestLease performs the complete DHCP DISCOVER/OFFER/REQUEST/ACK sequence.
func (c *ClientAdapter) RequestLease(ctx context.Context, interfaceName string, timeout time.Duration) (*types.Lease, error) {
	client, err := nclient4.New(interfaceName, nclient4.WithTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create DHCP client: %w", err)
	}
	defer client.Close()

	lease, err := client.Request(ctx)
	if err != nil {
		return nil, fmt.Errorf("DHCP lease request failed: %w", err)
	}

	return leaseFromACK(lease.ACK)
}

// leaseFromACK extracts the address configuration from a DHCP ACK.
func leaseFromACK(ack *dhcpv4.DHCPv4) (*types.Lease, error) {
	if ack == nil || ack.YourIPAddr == nil || ack.YourIPAddr.IsUnspecified() {
		return nil, fmt.Errorf("DHCP ACK carries no address")
	}

	prefixLength := defaultPrefixLength
	if mask := ack.SubnetMask(); mask != nil {
		prefixLength, _ = mask.Size()
	}

	lease := &types.Lease{
		Address: types.IPAddress{
			IP:           ack.YourIPAddr.String(),
			PrefixLength: prefixLength,
		},
		LeaseTime: ack.IPAddressLeaseTime(0),
	}

	if routers := ack.Router(); len(routers) > 0 {
		lease.Gateway = routers[0].String()
	}
	for _, server := range ack.DNS() {
		lease.DNS = append(lease.DNS, server.String())
	}

	return lease, nil
}
