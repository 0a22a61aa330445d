package cmd

import (
	"fmt"

	"golang-netstate/internal/adapter/infrastructure/file"
	"golang-netstate/internal/pkg/reconcile"
	"golang-netstate/internal/types"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// paramFlags holds the flags shared by the interface commands. Flags given on the command
// line override the values read from --params.
type paramFlags struct {
	paramsFile  string
	name        string
	ipv4        []string
	ipv6        []string
	mtu         int
	duplex      string
	speed       int
	description string
	enabled     bool
	state       string
	purge       bool
	debug       bool
	checkMode   bool
}

func (f *paramFlags) registerCommon(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.paramsFile, "params", "p", "", "Path to parameters file (YAML)")
	cmd.Flags().StringVarP(&f.name, "name", "n", "", "Interface name")
	cmd.Flags().StringVar(&f.state, "state", "", "Requested state")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "Write the desired state to a debug file")
	cmd.Flags().BoolVar(&f.checkMode, "check", false, "Only report what would change")
}

func (f *paramFlags) registerL3(cmd *cobra.Command) {
	f.registerCommon(cmd)
	cmd.Flags().StringSliceVar(&f.ipv4, "ipv4", nil, "IPv4 address in CIDR notation (repeatable)")
	cmd.Flags().StringSliceVar(&f.ipv6, "ipv6", nil, "IPv6 address in CIDR notation (repeatable)")
	cmd.Flags().BoolVar(&f.purge, "purge", false, "Replace all addresses with the given ones")
}

func (f *paramFlags) registerLink(cmd *cobra.Command) {
	f.registerCommon(cmd)
	cmd.Flags().IntVar(&f.mtu, "mtu", 0, "MTU")
	cmd.Flags().StringVar(&f.duplex, "duplex", "", "Duplex: full, half or auto")
	cmd.Flags().IntVar(&f.speed, "speed", 0, "Link speed in Mb/s")
	cmd.Flags().StringVar(&f.description, "description", "", "Interface description")
	cmd.Flags().BoolVar(&f.enabled, "enabled", true, "Informational only")
}

// params builds the parameter record from --params and the flags that were set.
func (f *paramFlags) params(cmd *cobra.Command) (reconcile.Params, error) {
	var p reconcile.Params
	if f.paramsFile != "" {
		data, err := file.NewManagerAdapter().ReadFile(f.paramsFile)
		if err != nil {
			return p, err
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return p, fmt.Errorf("failed to parse params file %s: %w", f.paramsFile, err)
		}
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("name") {
		p.Name = f.name
	}
	if changed("state") {
		p.State = reconcile.Action(f.state)
	}
	if changed("debug") {
		p.Debug = f.debug
	}
	if changed("check") {
		p.CheckMode = f.checkMode
	}
	if changed("purge") {
		p.Purge = f.purge
	}

	if len(f.ipv4) > 0 || len(f.ipv6) > 0 {
		if err := mergeAddressFlags(&p, f.ipv4, f.ipv6); err != nil {
			return p, err
		}
	}

	if changed("mtu") {
		p.MTU = f.mtu
	}
	if changed("duplex") {
		p.Duplex = reconcile.Duplex(f.duplex)
	}
	if changed("speed") {
		p.Speed = f.speed
	}
	if changed("description") {
		p.Description = types.String(f.description)
	}
	if changed("enabled") {
		p.Enabled = types.Bool(f.enabled)
	}

	return p, nil
}

// mergeAddressFlags adds the addresses given as flags to the parameters read from --params.
// Addresses that do not fit the single element turn it into an aggregate for the same name,
// keeping the element's own addresses as its first entry.
func mergeAddressFlags(p *reconcile.Params, ipv4, ipv6 []string) error {
	if len(p.Aggregate) > 0 {
		return &reconcile.ParameterError{Reason: "address flags cannot be combined with an aggregate params file"}
	}
	if p.Name == "" {
		return &reconcile.ParameterError{Reason: "address flags require --name"}
	}

	fitsV4 := len(ipv4) == 0 || (len(ipv4) == 1 && p.IPv4 == "")
	fitsV6 := len(ipv6) == 0 || (len(ipv6) == 1 && p.IPv6 == "")
	if fitsV4 && fitsV6 {
		if len(ipv4) == 1 {
			p.IPv4 = ipv4[0]
		}
		if len(ipv6) == 1 {
			p.IPv6 = ipv6[0]
		}
		return nil
	}

	var aggregate []reconcile.Element
	if p.IPv4 != "" || p.IPv6 != "" {
		aggregate = append(aggregate, reconcile.Element{Name: p.Name, IPv4: p.IPv4, IPv6: p.IPv6})
	}
	p.Aggregate = append(aggregate, addressAggregate(p.Name, ipv4, ipv6)...)
	p.Element = reconcile.Element{}
	return nil
}

func addressAggregate(name string, ipv4, ipv6 []string) []reconcile.Element {
	var elements []reconcile.Element
	for i := 0; i < len(ipv4) || i < len(ipv6); i++ {
		element := reconcile.Element{Name: name}
		if i < len(ipv4) {
			element.IPv4 = ipv4[i]
		}
		if i < len(ipv6) {
			element.IPv6 = ipv6[i]
		}
		elements = append(elements, element)
	}
	return elements
}
