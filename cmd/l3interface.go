package cmd

import (
	"context"

	"golang-netstate/internal/pkg/reconcile"

	"github.com/spf13/cobra"
)

var l3Flags paramFlags

var l3InterfaceCmd = &cobra.Command{
	Use:   "l3-interface",
	Short: "Add, remove or replace IP addresses of interfaces",
	Example: `  golang-netstate l3-interface --name eth0 --ipv4 192.0.2.10/24
  golang-netstate l3-interface --name eth0 --ipv4 192.0.2.10/24 --ipv4 192.0.2.11/24 --purge
  golang-netstate l3-interface --name eth0 --state absent
  golang-netstate l3-interface --params l3.yml --check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := l3Flags.params(cmd)
		if err != nil {
			return err
		}
		return runReconcile(cmd, func(ctx context.Context, r *reconcile.Reconciler) (*reconcile.Result, error) {
			return r.L3Interface(ctx, p)
		})
	},
}

func init() {
	l3Flags.registerL3(l3InterfaceCmd)
	rootCmd.AddCommand(l3InterfaceCmd)
}
