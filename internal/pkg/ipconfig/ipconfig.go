// Package ipconfig implements the address-set operations on a per-protocol IP configuration.
//
// All functions are pure: the config passed in is never modified, an updated copy is returned.
// Address order is insertion order and no (ip, prefix-length) pair appears twice.
package ipconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang-netstate/internal/types"
)

// ErrInvalidFormat is the sentinel wrapped by every FormatError.
var ErrInvalidFormat = errors.New("invalid address format")

// FormatError reports a malformed CIDR string.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid CIDR address %q: %s", e.Input, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return ErrInvalidFormat
}

// ParseCIDR splits "ip/prefix" into an IPAddress. The ip part is taken as-is.
func ParseCIDR(text string) (types.IPAddress, error) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return types.IPAddress{}, &FormatError{Input: text, Reason: "expected exactly one '/' separator"}
	}

	prefix, err := strconv.Atoi(parts[1])
	if err != nil || prefix < 0 {
		return types.IPAddress{}, &FormatError{Input: text, Reason: "prefix length must be a non-negative integer"}
	}

	return types.IPAddress{IP: parts[0], PrefixLength: prefix}, nil
}

// ParseCIDRs parses every string, failing on the first malformed one.
func ParseCIDRs(texts []string) ([]types.IPAddress, error) {
	addrs := make([]types.IPAddress, 0, len(texts))
	for _, text := range texts {
		addr, err := ParseCIDR(text)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// AddAddresses enables the family and appends every address not already present, in order.
func AddAddresses(cfg types.IPConfig, cidrs []string) (types.IPConfig, error) {
	newAddrs, err := ParseCIDRs(cidrs)
	if err != nil {
		return cfg, err
	}
	return addParsed(cfg.Clone(), newAddrs), nil
}

func addParsed(out types.IPConfig, newAddrs []types.IPAddress) types.IPConfig {
	out.Enabled = types.Bool(true)

	addrs := out.AddressList()
	if addrs == nil {
		addrs = []types.IPAddress{}
	}
	for _, addr := range newAddrs {
		if indexOf(addrs, addr) < 0 {
			addrs = append(addrs, addr)
		}
	}
	out.Addresses = &addrs

	return out
}

// RemoveAddresses deletes each given address from the list. Addresses that are not present
// are ignored, and an empty config or one without addresses is returned unchanged.
func RemoveAddresses(cfg types.IPConfig, cidrs []string) (types.IPConfig, error) {
	if cfg.IsEmpty() || cfg.Addresses == nil || len(*cfg.Addresses) == 0 {
		return cfg, nil
	}

	toRemove, err := ParseCIDRs(cidrs)
	if err != nil {
		return cfg, err
	}

	out := cfg.Clone()
	addrs := out.AddressList()
	for _, addr := range toRemove {
		if i := indexOf(addrs, addr); i >= 0 {
			addrs = append(addrs[:i], addrs[i+1:]...)
		}
	}
	out.Addresses = &addrs

	return out, nil
}

// SetAddresses replaces the address list with the given addresses.
func SetAddresses(cfg types.IPConfig, cidrs []string) (types.IPConfig, error) {
	newAddrs, err := ParseCIDRs(cidrs)
	if err != nil {
		return cfg, err
	}

	cleared := cfg.Clone()
	empty := []types.IPAddress{}
	cleared.Addresses = &empty
	return addParsed(cleared, newAddrs), nil
}

func indexOf(addrs []types.IPAddress, addr types.IPAddress) int {
	for i, a := range addrs {
		if a == addr {
			return i
		}
	}
	return -1
}
