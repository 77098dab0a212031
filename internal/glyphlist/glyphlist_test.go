/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package glyphlist

import "testing"

func TestToRuneTable(t *testing.T) {
	cases := map[string]string{
		"space":     " ",
		"A":         "A",
		"fi":        "fi",
		"emdash":    "—",
		"eacute":    "é",
		"Scaron":    "Š",
		"quoteleft": "‘",
	}
	for name, want := range cases {
		got, ok := ToRune(name)
		if !ok || got != want {
			t.Errorf("ToRune(%q) = %q, %v; want %q, true", name, got, ok, want)
		}
	}
}

func TestToRuneUniLiteral(t *testing.T) {
	got, ok := ToRune("uni0041")
	if !ok || got != "A" {
		t.Fatalf("ToRune(uni0041) = %q, %v", got, ok)
	}
	got, ok = ToRune("uni00660069") // ligature "fi" encoded as two uniXXXX groups
	if !ok || got != "fi" {
		t.Fatalf("ToRune(uni00660069) = %q, %v", got, ok)
	}
	got, ok = ToRune("u1F600")
	if !ok || got != "😀" {
		t.Fatalf("ToRune(u1F600) = %q, %v", got, ok)
	}
}

func TestToRuneDifferencesSuffix(t *testing.T) {
	got, ok := ToRune("a.smcp")
	if !ok || got != "a" {
		t.Fatalf("ToRune(a.smcp) = %q, %v", got, ok)
	}
}

func TestToRuneUnknown(t *testing.T) {
	if _, ok := ToRune("notaglyphname"); ok {
		t.Fatalf("expected unknown glyph name to miss")
	}
}
