package cmd

import (
	"context"
	"fmt"

	"golang-netstate/internal/adapter/infrastructure/file"
	"golang-netstate/internal/pkg/reconcile"
	"golang-netstate/internal/types"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	applyPartial   bool
	applyDebug     bool
	applyCheckMode bool
)

var applyCmd = &cobra.Command{
	Use:   "apply STATE_FILE",
	Short: "Apply a desired network state document (YAML or JSON)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desired, err := readStateDocument(args[0])
		if err != nil {
			return err
		}
		return runReconcile(cmd, func(ctx context.Context, r *reconcile.Reconciler) (*reconcile.Result, error) {
			if applyPartial {
				return r.ApplyPartial(ctx, desired, applyDebug, applyCheckMode)
			}
			return r.ApplyDesired(ctx, desired, applyDebug, applyCheckMode)
		})
	},
}

// readStateDocument decodes a state document. JSON documents are valid YAML.
func readStateDocument(path string) (types.NetworkState, error) {
	var state types.NetworkState
	data, err := file.NewManagerAdapter().ReadFile(path)
	if err != nil {
		return state, err
	}
	if err := yaml.Unmarshal(data, &state); err != nil {
		return state, fmt.Errorf("failed to parse state document %s: %w", path, err)
	}
	return state, nil
}

func init() {
	applyCmd.Flags().BoolVar(&applyPartial, "partial", false, "Apply only the interfaces section, with check mode support")
	applyCmd.Flags().BoolVar(&applyDebug, "debug", false, "Write the desired state to a debug file")
	applyCmd.Flags().BoolVar(&applyCheckMode, "check", false, "Only report what would change")
	rootCmd.AddCommand(applyCmd)
}
