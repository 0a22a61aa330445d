package cmd

import (
	"fmt"
	"strings"

	"golang-netstate/internal/adapter/infrastructure/file"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the observed network state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		state, err := newBackend(file.NewManagerAdapter()).Observe(ctx)
		if err != nil {
			return fmt.Errorf("failed to observe network state: %w", err)
		}

		switch strings.ToLower(showOutput) {
		case "json":
			return printJSON(cmd.OutOrStdout(), state)
		case "yaml", "":
			data, err := yaml.Marshal(state)
			if err != nil {
				return fmt.Errorf("failed to encode state: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		default:
			return fmt.Errorf("unknown output format %q: must be yaml or json", showOutput)
		}
	},
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format: yaml or json")
	rootCmd.AddCommand(showCmd)
}
