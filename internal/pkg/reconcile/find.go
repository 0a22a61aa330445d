package reconcile

import "golang-netstate/internal/types"

// FindInterface returns a copy of the first interface whose name matches exactly.
// The copy shares no memory with the observed state.
func FindInterface(interfaces []types.Interface, name string) (types.Interface, bool) {
	for _, iface := range interfaces {
		if iface.Name == name {
			return iface.Clone(), true
		}
	}
	return types.Interface{}, false
}
