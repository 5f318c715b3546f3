// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Set is an immutable snapshot of configuration variables. The zero
// value is an empty set. Methods never modify the receiver; [Set.With]
// and [Set.Supplement] return new sets.
type Set struct {
	values map[string]string
}

// FromEnviron builds a Set from KEY=value entries in the form returned
// by os.Environ. Entries without "=" are ignored. When a key appears
// more than once the last entry wins, which is how the kernel-provided
// environment is interpreted by getenv.
func FromEnviron(environ []string) Set {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return Set{values: values}
}

// FromMap builds a Set from a map. The map is copied.
func FromMap(m map[string]string) Set {
	values := make(map[string]string, len(m))
	for key, value := range m {
		values[key] = value
	}
	return Set{values: values}
}

// Capture snapshots the current process environment.
func Capture() Set {
	return FromEnviron(os.Environ())
}

// Lookup returns the value for key and whether the key is present at
// all (possibly with an empty value).
func (s Set) Lookup(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Get returns the value for key, or "" when absent.
func (s Set) Get(key string) string {
	return s.values[key]
}

// Has reports whether key is present with a non-empty value.
func (s Set) Has(key string) bool {
	return s.values[key] != ""
}

// Len returns the number of keys in the set.
func (s Set) Len() int {
	return len(s.values)
}

// Keys returns all keys in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the subset of keys that are absent or empty, in the
// order they were given.
func (s Set) Missing(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if !s.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// With returns a new Set containing every entry of s plus the given
// entries. Entries in additions replace existing values.
func (s Set) With(additions map[string]string) Set {
	values := make(map[string]string, len(s.values)+len(additions))
	for key, value := range s.values {
		values[key] = value
	}
	for key, value := range additions {
		values[key] = value
	}
	return Set{values: values}
}

// Supplement returns a new Set where keys from fallback are added only
// when s does not already carry a non-empty value for them. The second
// return value lists the keys that were taken from fallback, sorted.
func (s Set) Supplement(fallback map[string]string) (Set, []string) {
	additions := make(map[string]string)
	for key, value := range fallback {
		if s.Has(key) {
			continue
		}
		additions[key] = value
	}
	added := make([]string, 0, len(additions))
	for key := range additions {
		added = append(added, key)
	}
	sort.Strings(added)
	return s.With(additions), added
}

// Environ returns the set as sorted KEY=value entries, suitable for
// passing to exec.
func (s Set) Environ() []string {
	keys := s.Keys()
	environ := make([]string, 0, len(keys))
	for _, key := range keys {
		environ = append(environ, key+"="+s.values[key])
	}
	return environ
}

// ReadDotenv parses the dotenv file at path. A missing file is not an
// error: it returns a nil map and found=false. Syntax errors and other
// read failures are returned.
func ReadDotenv(path string) (values map[string]string, found bool, err error) {
	if path == "" {
		return nil, false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking dotenv file %s: %w", path, err)
	}
	values, err = godotenv.Read(path)
	if err != nil {
		return nil, true, fmt.Errorf("parsing dotenv file %s: %w", path, err)
	}
	return values, true, nil
}
