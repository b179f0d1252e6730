// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

// Package cli implements the variantload command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/woozymasta/variantload"
)

// version is set via build-time ldflags
var version = "dev"

// rootFlags are persistent flags shared by all subcommands.
type rootFlags struct {
	dir        string
	config     string
	extensions []string
	allow      []string
	verbose    bool
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand returns a new root command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "variantload",
		Short: "Inspect and resolve variant-specific files",
		Long: `variantload inspects a directory of variant files named
base[:variant]*.ext (for example strings:es:formal.json) and shows which
file a lookup resolves to.

Without --allow every sanitized variant value is accepted.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&flags.dir, "dir", "d", ".", "Directory with variant files")
	cmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "YAML options file")
	cmd.PersistentFlags().StringSliceVarP(&flags.extensions, "ext", "e", []string{"json"}, "Accepted extensions in priority order")
	cmd.PersistentFlags().StringArrayVarP(&flags.allow, "allow", "a", nil, "Allowed values per dimension, as dim=v1,v2 (repeatable)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log debug diagnostics to stderr")

	cmd.AddCommand(newScanCommand(flags))
	cmd.AddCommand(newResolveCommand(flags))

	return cmd
}

// newLoader builds a loader from the config file and flags. Flags override the file.
func newLoader(cmd *cobra.Command, flags *rootFlags) (*variantload.Loader, error) {
	opts := variantload.Options{}
	if flags.config != "" {
		loaded, err := variantload.LoadOptionsFile(flags.config)
		if err != nil {
			return nil, err
		}

		opts = loaded
	}

	persistent := cmd.Flags()
	if opts.BaseDir == "" || persistent.Changed("dir") {
		opts.BaseDir = flags.dir
	}

	if len(opts.Extensions) == 0 || persistent.Changed("ext") {
		opts.Extensions = flags.extensions
	}

	if len(flags.allow) > 0 {
		allowed, err := parseAllowFlags(flags.allow)
		if err != nil {
			return nil, err
		}

		opts.AllowedVariants = allowed
	}

	opts.Watch = false
	opts.Logger = newLogger(cmd.ErrOrStderr(), flags.verbose)

	return variantload.New(cmdContext(cmd), opts)
}

// parseAllowFlags converts dim=v1,v2 flags to restricted allowed variants.
func parseAllowFlags(raw []string) (variantload.AllowedVariants, error) {
	values := make(map[string][]string, len(raw))
	for _, item := range raw {
		dim, list, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(dim) == "" {
			return variantload.AllowedVariants{}, fmt.Errorf("invalid --allow %q: want dim=v1,v2", item)
		}

		dim = strings.TrimSpace(dim)
		for _, value := range strings.Split(list, ",") {
			if value = strings.TrimSpace(value); value != "" {
				values[dim] = append(values[dim], value)
			}
		}
	}

	return variantload.NewRestricted(values)
}

// newLogger returns a stderr text logger in verbose mode, otherwise a discarding one.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// cmdContext returns the command context or background when unset.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
