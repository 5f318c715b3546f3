// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import "github.com/marketing-generator/mg-launch/lib/envset"

// Validate checks that every name in required is present with a
// non-empty value in set. It returns a [MissingKeysError] listing
// exactly the absent names, in the order given, or nil.
func Validate(set envset.Set, required []string) error {
	if missing := set.Missing(required); len(missing) > 0 {
		return &MissingKeysError{Keys: missing}
	}
	return nil
}
