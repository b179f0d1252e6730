// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List variant candidates grouped by base name",
		Long: `List every recognized variant file grouped by base name, in discovery
order, followed by files that were skipped because their names do not parse.

Examples:
  variantload scan --dir locales
  variantload scan --dir locales --allow lang=en,es --allow form=formal,casual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, flags)
		},
	}
}

func runScan(cmd *cobra.Command, flags *rootFlags) error {
	loader, err := newLoader(cmd, flags)
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close() }()

	idx, err := loader.Index(cmdContext(cmd))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, base := range idx.BaseNames() {
		if _, err := fmt.Fprintln(out, base); err != nil {
			return err
		}

		for _, c := range idx.Candidates(base) {
			if _, err := fmt.Fprintf(out, "  %s\t%s\n", c.Locator, c.Variants); err != nil {
				return err
			}
		}
	}

	for _, name := range idx.Skipped() {
		if _, err := fmt.Fprintf(out, "skipped %s\n", name); err != nil {
			return err
		}
	}

	return nil
}
