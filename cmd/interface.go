package cmd

import (
	"context"

	"golang-netstate/internal/pkg/reconcile"

	"github.com/spf13/cobra"
)

var linkFlags paramFlags

var interfaceCmd = &cobra.Command{
	Use:   "interface",
	Short: "Change link settings and lifecycle state of an interface",
	Example: `  golang-netstate interface --name eth0 --mtu 9000
  golang-netstate interface --name eth0 --state down
  golang-netstate interface --name veth0 --state absent`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := linkFlags.params(cmd)
		if err != nil {
			return err
		}
		return runReconcile(cmd, func(ctx context.Context, r *reconcile.Reconciler) (*reconcile.Result, error) {
			return r.Interface(ctx, p)
		})
	},
}

func init() {
	linkFlags.registerLink(interfaceCmd)
	rootCmd.AddCommand(interfaceCmd)
}
