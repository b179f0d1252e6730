// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

/*
Package variantload resolves which variant-specific file best matches a runtime
variant context, such as language, grammatical gender or formality.

Variant files follow the name format base[:variant]*.ext, for example
"strings.json", "strings:es.json" and "strings:es:formal.json". Segment order
does not matter. A bare segment is assigned to a dimension by value: allow-list
membership in restricted mode, or lang/gender/form recognition in permissive
mode. Custom dimensions use explicit "dim=value" segments.

Basic flow:
  - configure allowed variants (`Permissive` / `NewRestricted`)
  - create loader over a directory, fs.FS or HTTP source (`New`)
  - ask for a file (`Resolve` / `Load` / `LoadInto`)
  - optionally rescan after changes (`Refresh`, or `Options.Watch`)
  - release resources (`Close`)

Scoring is additive: lang 1000, gender 100, form 50, every custom dimension 1.
A candidate carrying a dimension the request does not specify, or specifies
differently, is disqualified. Ties prefer the earlier extension in
Options.Extensions, then the earlier discovered file. When nothing else
matches, the bare base file is used.

Requested contexts are validated before use: disallowed or unsafe values are
dropped silently, so values like "../../etc" never reach a file name.
*/
package variantload
