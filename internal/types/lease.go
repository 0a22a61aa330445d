package types

import "time"

// Lease represents a DHCPv4 lease reduced to the parameters needed to configure an interface.
type Lease struct {
	Address   IPAddress     // Leased address with the prefix length derived from the subnet mask
	Gateway   string        // First router option, empty when the server sent none
	DNS       []string      // Domain name servers in server order
	LeaseTime time.Duration // Valid lifetime of the address
}
