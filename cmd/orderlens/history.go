package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/orderlens/internal/cli"
	"github.com/Veraticus/orderlens/internal/common"
	"github.com/Veraticus/orderlens/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored profile results",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", storage.DefaultListLimit, "Maximum results to list")
	cmd.AddCommand(historyShowCmd())

	return cmd
}

func historyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored result",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	cmd.Flags().Bool("keywords", false, "Also print profile keyword weights")
	cmd.Flags().Bool("pretty", false, "Render the result as styled text instead of JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	results, err := store.ListResults(ctx, limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle("Stored results"))
	fmt.Fprintln(cmd.OutOrStdout(), cli.History(results))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	keywords, _ := cmd.Flags().GetBool("keywords")
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	stored, err := store.GetResult(ctx, args[0])
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no stored result with id %s", args[0]), err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render(fmt.Sprintf("%s  %s", stored.Source, stored.CreatedAt.Local().Format("2006-01-02 15:04:05"))))
	return printResult(cmd, stored.Result, pretty, keywords)
}
