// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/variantload

package variantload

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode unmarshals data into v by file extension.
//
// Supported extensions are ".json", ".yaml" and ".yml". Malformed content
// returns an error wrapping ErrInvalidContent.
func Decode(ext string, data []byte, v any) error {
	var err error
	switch asciiLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	return nil
}
