//go:build unit

package reconcile

import (
	"testing"

	"golang-netstate/internal/pkg/ipconfig"
	"golang-netstate/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrs(list ...types.IPAddress) *[]types.IPAddress {
	if list == nil {
		list = []types.IPAddress{}
	}
	return &list
}

var (
	v4a = types.IPAddress{IP: "198.51.100.31", PrefixLength: 24}
	v4b = types.IPAddress{IP: "198.51.100.32", PrefixLength: 24}
	v6a = types.IPAddress{IP: "2001:db8::1", PrefixLength: 32}
)

func TestBuildL3States_Present(t *testing.T) {
	t.Run("AddsToBothFamilies", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.31/24", IPv6: "2001:db8::1/32"}})

		states, err := BuildL3States(observed, settings, ActionPresent, false)
		require.NoError(t, err)
		assert.Equal(t, []types.Interface{{
			Name:  "eth0",
			Type:  types.InterfaceTypeEthernet,
			State: types.InterfaceStateUp,
			IPv4:  &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a)},
			IPv6:  &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}, states)
	})

	t.Run("AdditiveKeepsExisting", func(t *testing.T) {
		observed := []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			MTU:  types.Int(1500),
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4b)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.31/24"}})

		states, err := BuildL3States(observed, settings, ActionPresent, false)
		require.NoError(t, err)
		require.Len(t, states, 1)
		assert.Equal(t, []types.IPAddress{v4b, v4a}, states[0].IPv4.AddressList())
		assert.Equal(t, &types.IPConfig{}, states[0].IPv6, "family without request stays as observed")
		assert.Nil(t, states[0].MTU, "only identity and address fields are copied")

		assert.Equal(t, []types.IPAddress{v4b}, observed[0].IPv4.AddressList(), "observed state must not be modified")
	})

	t.Run("Purge", func(t *testing.T) {
		observed := []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4b)},
			IPv6: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.31/24"}})

		states, err := BuildL3States(observed, settings, ActionPresent, true)
		require.NoError(t, err)
		require.Len(t, states, 1)
		assert.Equal(t, []types.IPAddress{v4a}, states[0].IPv4.AddressList())
		assert.Equal(t, []types.IPAddress{}, states[0].IPv6.AddressList(), "purge clears families without requests")
	})

	t.Run("Deduplicates", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{
			{Name: "eth0", IPv4: "198.51.100.31/24"},
			{Name: "eth0", IPv4: "198.51.100.31/24"},
			{Name: "eth0", IPv4: "198.51.100.32/24"},
		})

		states, err := BuildL3States(observed, settings, ActionPresent, false)
		require.NoError(t, err)
		assert.Equal(t, []types.IPAddress{v4a, v4b}, states[0].IPv4.AddressList())
	})

	t.Run("AggregateOrder", func(t *testing.T) {
		observed := []types.Interface{
			{Name: "eth0", Type: types.InterfaceTypeEthernet},
			{Name: "eth1", Type: types.InterfaceTypeEthernet},
		}
		settings := CollectSettings([]Element{
			{Name: "eth1", IPv4: "198.51.100.31/24"},
			{Name: "eth0", IPv4: "198.51.100.32/24"},
		})

		states, err := BuildL3States(observed, settings, ActionPresent, false)
		require.NoError(t, err)
		require.Len(t, states, 2)
		assert.Equal(t, "eth1", states[0].Name)
		assert.Equal(t, "eth0", states[1].Name)
	})

	t.Run("InterfaceNotFoundAbortsBatch", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{
			{Name: "eth0", IPv4: "198.51.100.31/24"},
			{Name: "eth9", IPv4: "198.51.100.32/24"},
		})

		states, err := BuildL3States(observed, settings, ActionPresent, false)
		assert.ErrorIs(t, err, ErrInterfaceNotFound)
		assert.Nil(t, states)
	})

	t.Run("MalformedCIDR", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.31"}})

		_, err := BuildL3States(observed, settings, ActionPresent, false)
		assert.ErrorIs(t, err, ipconfig.ErrInvalidFormat)
	})
}

func TestBuildL3States_Absent(t *testing.T) {
	t.Run("RemovesRequestedOnly", func(t *testing.T) {
		observed := []types.Interface{{
			Name:  "eth0",
			Type:  types.InterfaceTypeEthernet,
			State: types.InterfaceStateUp,
			IPv4:  &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a, v4b)},
			IPv6:  &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.32/24"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.Equal(t, []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a)},
			IPv6: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}, states)
	})

	t.Run("RemovingLastAddressDisablesIPv4", func(t *testing.T) {
		observed := []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a)},
			IPv6: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "198.51.100.31/24", IPv6: "2001:db8::1/32"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.Equal(t, &types.IPConfig{Enabled: types.Bool(false), Addresses: addrs()}, states[0].IPv4)
		assert.Equal(t, &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs()}, states[0].IPv6)
	})

	t.Run("BareAbsentClearsEverything", func(t *testing.T) {
		observed := []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a, v4b)},
			IPv6: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v6a)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.False(t, states[0].IPv4.IsEnabled())
		assert.Empty(t, states[0].IPv4.AddressList())
		assert.True(t, states[0].IPv6.IsEnabled(), "ipv6 is never disabled")
		assert.Empty(t, states[0].IPv6.AddressList())
	})

	t.Run("BareAbsentWithoutAddresses", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{{Name: "eth0"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.Equal(t, &types.IPConfig{Enabled: types.Bool(false), Addresses: addrs()}, states[0].IPv4)
		assert.NotEqual(t, types.Bool(false), states[0].IPv6.Enabled)
	})

	t.Run("RemovingMissingAddressIsNoop", func(t *testing.T) {
		observed := []types.Interface{{
			Name: "eth0",
			Type: types.InterfaceTypeEthernet,
			IPv4: &types.IPConfig{Enabled: types.Bool(true), Addresses: addrs(v4a)},
		}}
		settings := CollectSettings([]Element{{Name: "eth0", IPv4: "203.0.113.1/24"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.Equal(t, []types.IPAddress{v4a}, states[0].IPv4.AddressList())
	})

	t.Run("UnknownInterfaceSkipped", func(t *testing.T) {
		observed := []types.Interface{{Name: "eth0", Type: types.InterfaceTypeEthernet}}
		settings := CollectSettings([]Element{{Name: "eth9", IPv4: "198.51.100.31/24"}})

		states, err := BuildL3States(observed, settings, ActionAbsent, false)
		require.NoError(t, err)
		assert.Empty(t, states)
	})
}

func TestBuildL3States_UnsupportedAction(t *testing.T) {
	settings := CollectSettings([]Element{{Name: "eth0"}})
	_, err := BuildL3States(nil, settings, ActionUp, false)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	assert.Contains(t, err.Error(), "present, absent")
}
