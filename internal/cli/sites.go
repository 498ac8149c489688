package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tierscope/internal/validate"
)

// sitesCmd represents the sites command
var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "Manage tracked competitor sites",
}

var sitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked sites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		list, err := a.store.List(context.Background())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			cmd.Println("No sites tracked yet. Add one with: tierscope sites add <name> <url>")
			return nil
		}
		return a.renderer.PrintSites(list)
	},
}

var sitesAddCmd = &cobra.Command{
	Use:     "add <name> <url>",
	Short:   "Track a new competitor site",
	Example: `  tierscope sites add "Mindsmith AI" https://www.mindsmith.ai/pricing`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.Add(context.Background(), args[0], args[1]); err != nil {
			return err
		}
		cmd.Printf("✓ Added %s (%s)\n", args[0], args[1])
		return nil
	},
}

var sitesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that tracked pricing pages are reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		list, err := a.store.List(ctx)
		if err != nil {
			return err
		}

		statuses := validate.NewValidator(a.cfg.HTTP, a.cfg.Concurrency.Workers, a.log).Validate(ctx, list)
		return a.renderer.PrintSiteChecks(statuses)
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd)
	sitesCmd.AddCommand(sitesAddCmd)
	sitesCmd.AddCommand(sitesCheckCmd)
}
