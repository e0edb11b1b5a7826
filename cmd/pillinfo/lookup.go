package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Joszi2006/pillinfo/internal/config"
	"github.com/Joszi2006/pillinfo/internal/lookup"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [text...]",
	Short: "Look up a medication by free-text description",
	Long: `Look up a medication by free-text description.

Examples:
  pillinfo lookup Tylenol 200MG Oral Tablet
  pillinfo lookup --all-drugs "advil and benadryl"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		allDrugs, _ := cmd.Flags().GetBool("all-drugs")

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		opts := lookup.DefaultTextOptions()
		opts.LookupAllDrugs = allDrugs

		client := lookup.New(cfg.API.BaseURL)
		res := client.ResolveByText(cmd.Context(), strings.Join(args, " "), opts)
		printResult(res)

		if !res.Success {
			return fmt.Errorf("lookup failed")
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("all-drugs", false, "return every detected drug, not just the first")
}
