/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"testing"
)

func TestParseDateOrZero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"null", ""},
		{"2021-12-13", "2021-12-13"},
		{"December 14, 2020", "2020-12-14"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseDateOrZero(c.in)
			if err != nil {
				t.Fatalf("ParseDateOrZero(%q) returned error: %v", c.in, err)
			}
			if c.want == "" {
				if !got.IsZero() {
					t.Errorf("ParseDateOrZero(%q) = %v; want zero", c.in, got)
				}
				return
			}
			if got.Format("2006-01-02") != c.want {
				t.Errorf("ParseDateOrZero(%q) = %v; want %v", c.in, got, c.want)
			}
		})
	}

	if _, err := ParseDateOrZero("not a date"); err == nil {
		t.Errorf("ParseDateOrZero accepted garbage")
	}
}

func TestNormalize(t *testing.T) {
	if got := NormalizeName("  Paris Saint-Germain \n"); got != "Paris Saint-Germain" {
		t.Errorf("NormalizeName = %q", got)
	}
	if got := NormalizeCode(" eng "); got != "ENG" {
		t.Errorf("NormalizeCode = %q", got)
	}
}
