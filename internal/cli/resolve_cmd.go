// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woozymasta/variantload"
)

func newResolveCommand(flags *rootFlags) *cobra.Command {
	var showContent bool

	cmd := &cobra.Command{
		Use:   "resolve BASE [dim=value...]",
		Short: "Show which file a variant lookup resolves to",
		Long: `Resolve BASE against the requested variant context and print the chosen
file with its score. Disallowed or unsafe values are dropped before resolution.

Examples:
  variantload resolve strings lang=es form=formal --dir locales
  variantload resolve strings lang=es --content`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, flags, args[0], args[1:], showContent)
		},
	}

	cmd.Flags().BoolVar(&showContent, "content", false, "Print the resolved file content")

	return cmd
}

func runResolve(cmd *cobra.Command, flags *rootFlags, base string, pairs []string, showContent bool) error {
	requested, err := parseVariantArgs(pairs)
	if err != nil {
		return err
	}

	loader, err := newLoader(cmd, flags)
	if err != nil {
		return err
	}
	defer func() { _ = loader.Close() }()

	doc, err := loader.Load(cmdContext(cmd), base, requested)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "file: %s\nscore: %d\nvariants: %s\n",
		doc.Candidate.Locator, doc.Score, doc.Variants); err != nil {
		return err
	}

	if showContent {
		if _, err := fmt.Fprintf(out, "\n%s\n", strings.TrimRight(string(doc.Data), "\n")); err != nil {
			return err
		}
	}

	return nil
}

// parseVariantArgs converts dim=value arguments to a variant context.
func parseVariantArgs(args []string) (variantload.VariantContext, error) {
	requested := make(variantload.VariantContext, len(args))
	for _, arg := range args {
		dim, value, ok := strings.Cut(arg, "=")
		if !ok || dim == "" {
			return nil, fmt.Errorf("invalid variant %q: want dim=value", arg)
		}

		requested[dim] = value
	}

	return requested, nil
}
