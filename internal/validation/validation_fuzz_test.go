package validation

import (
	"testing"
	"unicode/utf8"
)

// FuzzCompose checks the built-in rules against plain string inputs
func FuzzCompose(f *testing.F) {
	f.Add("", 0)
	f.Add("", 3)
	f.Add("abc", 3)
	f.Add("abc", 4)
	f.Add("héllo", 5)
	f.Add("日本語", 2)
	f.Add("\x00", 1)
	f.Add("\xff\xfe", 2)

	f.Fuzz(func(t *testing.T, value string, n int) {
		if n < 0 || n > 1<<10 {
			t.Skip()
		}
		check := Rules{Required: true, MinLength: n, Label: "Field"}.Compose()
		res := check(value, false)

		switch {
		case value == "":
			if res == nil || res.Rule != RuleRequired {
				t.Fatalf("empty value: got %+v, want required", res)
			}
		case utf8.RuneCountInString(value) < n:
			if res == nil || res.Rule != RuleMinLength {
				t.Fatalf("%q with min %d: got %+v, want minLength", value, n, res)
			}
		default:
			if res != nil {
				t.Fatalf("%q with min %d: unexpected %+v", value, n, res)
			}
		}
		if res != nil && (len(res.Labels) != 1 || res.Labels[0] != "Field") {
			t.Fatalf("labels = %v", res.Labels)
		}
	})
}
