// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFromEnviron(t *testing.T) {
	set := FromEnviron([]string{
		"PORT=8080",
		"EMPTY=",
		"WITH_EQUALS=a=b=c",
		"malformed",
		"=no-key",
		"PORT=9090",
	})

	if got := set.Get("PORT"); got != "9090" {
		t.Errorf("PORT = %q, want 9090 (last entry wins)", got)
	}
	if got := set.Get("WITH_EQUALS"); got != "a=b=c" {
		t.Errorf("WITH_EQUALS = %q, want a=b=c", got)
	}
	if _, ok := set.Lookup("malformed"); ok {
		t.Error("entry without '=' should be ignored")
	}
	if set.Len() != 3 {
		t.Errorf("Len() = %d, want 3", set.Len())
	}
}

func TestHasTreatsEmptyAsAbsent(t *testing.T) {
	set := FromEnviron([]string{"EMPTY=", "FULL=x"})

	if set.Has("EMPTY") {
		t.Error("Has(EMPTY) = true, want false for empty value")
	}
	if _, ok := set.Lookup("EMPTY"); !ok {
		t.Error("Lookup(EMPTY) should still report the key as present")
	}
	if !set.Has("FULL") {
		t.Error("Has(FULL) = false, want true")
	}
	if set.Has("UNSET") {
		t.Error("Has(UNSET) = true, want false")
	}
}

func TestMissingPreservesOrder(t *testing.T) {
	set := FromMap(map[string]string{"B": "1", "D": ""})

	got := set.Missing([]string{"A", "B", "C", "D"})
	want := []string{"A", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Missing() = %v, want %v", got, want)
	}

	if got := set.Missing([]string{"B"}); got != nil {
		t.Errorf("Missing() = %v, want nil", got)
	}
}

func TestWithDoesNotMutateReceiver(t *testing.T) {
	original := FromMap(map[string]string{"A": "1"})
	derived := original.With(map[string]string{"A": "2", "B": "3"})

	if original.Get("A") != "1" || original.Has("B") {
		t.Errorf("receiver mutated: A=%q B=%q", original.Get("A"), original.Get("B"))
	}
	if derived.Get("A") != "2" || derived.Get("B") != "3" {
		t.Errorf("derived: A=%q B=%q, want 2 and 3", derived.Get("A"), derived.Get("B"))
	}
}

func TestSupplementNeverOverridesPresentValues(t *testing.T) {
	base := FromMap(map[string]string{
		"PORT":  "8080",
		"EMPTY": "",
	})

	supplemented, added := base.Supplement(map[string]string{
		"PORT":           "5000",
		"EMPTY":          "filled",
		"OPENAI_API_KEY": "sk-test",
	})

	if got := supplemented.Get("PORT"); got != "8080" {
		t.Errorf("PORT = %q, want 8080 (process environment wins)", got)
	}
	if got := supplemented.Get("EMPTY"); got != "filled" {
		t.Errorf("EMPTY = %q, want filled (empty counts as absent)", got)
	}
	if got := supplemented.Get("OPENAI_API_KEY"); got != "sk-test" {
		t.Errorf("OPENAI_API_KEY = %q, want sk-test", got)
	}
	want := []string{"EMPTY", "OPENAI_API_KEY"}
	if !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
}

func TestEnvironIsSorted(t *testing.T) {
	set := FromMap(map[string]string{"B": "2", "A": "1", "C": ""})

	got := set.Environ()
	want := []string{"A=1", "B=2", "C="}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Environ() = %v, want %v", got, want)
	}
}

func TestReadDotenv(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		values, found, err := ReadDotenv(filepath.Join(t.TempDir(), ".env"))
		if err != nil {
			t.Fatalf("ReadDotenv: %v", err)
		}
		if found || values != nil {
			t.Errorf("found=%v values=%v, want false and nil", found, values)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, found, err := ReadDotenv("")
		if err != nil || found {
			t.Errorf("found=%v err=%v, want false and nil", found, err)
		}
	})

	t.Run("parses file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		content := "# credentials\nOPENAI_API_KEY=sk-abc\nA2E_BASE_URL=\"https://api.a2e.ai\"\nexport WORKERS=4\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		values, found, err := ReadDotenv(path)
		if err != nil {
			t.Fatalf("ReadDotenv: %v", err)
		}
		if !found {
			t.Fatal("found = false, want true")
		}
		want := map[string]string{
			"OPENAI_API_KEY": "sk-abc",
			"A2E_BASE_URL":   "https://api.a2e.ai",
			"WORKERS":        "4",
		}
		if !reflect.DeepEqual(values, want) {
			t.Errorf("values = %v, want %v", values, want)
		}
	})
}
