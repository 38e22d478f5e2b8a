package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/orderlens/internal/llm"
	"github.com/Veraticus/orderlens/internal/orders"
)

func narrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrate <orders.csv>",
		Short: "Print the condensed order narrative",
		Long: `Read an order-history export and print the de-duplicated narrative that
would be sent to the language model. No network calls are made.`,
		Args: cobra.ExactArgs(1),
		RunE: runNarrate,
	}

	cmd.Flags().Bool("truncate", false, "Apply the pipeline.max_lines bound")

	return cmd
}

func runNarrate(cmd *cobra.Command, args []string) error {
	truncate, _ := cmd.Flags().GetBool("truncate")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	records, _, err := orders.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read orders: %w", err)
	}

	narrative := createNormalizer(cfg).Narrate(records)
	if truncate {
		narrative = llm.Truncate(narrative, cfg.Pipeline.MaxLines)
	}
	if narrative != "" {
		fmt.Fprintln(cmd.OutOrStdout(), narrative)
	}
	return nil
}
