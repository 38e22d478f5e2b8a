package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/orderlens/internal/cli"
	"github.com/Veraticus/orderlens/internal/model"
	"github.com/Veraticus/orderlens/internal/profile"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile <orders.csv>",
		Short: "Infer a shopper profile and recommendations",
		Long: `Run an order-history export through the full pipeline and print the
reconciled profile and recommendations as JSON.

The result is also stored in the local database unless --ephemeral is set.`,
		Args: cobra.ExactArgs(1),
		RunE: runProfile,
	}

	cmd.Flags().Bool("keywords", false, "Also print profile keyword weights")
	cmd.Flags().Bool("pretty", false, "Render the result as styled text instead of JSON")
	cmd.Flags().Bool("no-cache", false, "Always call the model, ignoring cached replies")
	cmd.Flags().Bool("ephemeral", false, "Do not touch the database; cache replies in memory only")

	return cmd
}

func runProfile(cmd *cobra.Command, args []string) error {
	keywords, _ := cmd.Flags().GetBool("keywords")
	pretty, _ := cmd.Flags().GetBool("pretty")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	ephemeral, _ := cmd.Flags().GetBool("ephemeral")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p, cleanup, err := buildPipeline(ctx, cfg, runOptions{noCache: noCache, ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.RunFile(ctx, args[0])
	if err != nil {
		return err
	}

	if err := printResult(cmd, result, pretty, keywords); err != nil {
		return err
	}
	if result.Failed() {
		return fmt.Errorf("profile incomplete: %s", result.Error)
	}
	return nil
}

func printResult(cmd *cobra.Command, result *model.ProfileInferenceResult, pretty, keywords bool) error {
	if pretty {
		fmt.Fprintln(cmd.OutOrStdout(), cli.Result(profile.DefaultSchema(), result))
	} else {
		out, err := cli.JSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}

	if keywords && !result.Failed() {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Keywords"))
		fmt.Fprintln(cmd.OutOrStdout(), cli.Keywords(model.KeywordWeights(result.Profile)))
	}
	return nil
}
