// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

// Command variantload inspects variant files in a directory and resolves lookups.
package main

import "github.com/woozymasta/variantload/internal/cli"

func main() {
	cli.Execute()
}
