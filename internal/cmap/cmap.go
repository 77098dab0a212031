/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package cmap parses the PostScript-like CMap programs PDF attaches to
// fonts: ToUnicode CMaps (code -> Unicode string) and embedded/predefined
// CID CMaps (code -> CID).
package cmap

import "sort"

// codespaceRange is one entry of a CMap's codespacerange: every code byte
// sequence of Len bytes between Lo and Hi (compared big-endian) belongs to
// this range.
type codespaceRange struct {
	Lo, Hi []byte
}

func (r codespaceRange) matches(b []byte) bool {
	if len(b) != len(r.Lo) {
		return false
	}
	for i := range b {
		if b[i] < r.Lo[i] || b[i] > r.Hi[i] {
			return false
		}
	}
	return true
}

// cidRange maps a contiguous run of codes [Lo, Hi] to CIDs starting at
// CIDLo.
type cidRange struct {
	Lo, Hi uint32
	CIDLo  uint32
}

// bfRange maps a contiguous run of codes [Lo, Hi] to Unicode strings
// starting at Dst (for single-codepoint destinations) or to a literal
// per-code string list (Dsts), for ToUnicode's bfrange/bfchar.
type bfRange struct {
	Lo, Hi uint32
	Dst    string   // used when Dsts == nil: Dst's last rune increments per code
	Dsts   []string // used for an explicit destination array
}

// CMap is a parsed CMap program: either a ToUnicode map (code -> Unicode) or
// a CID map (code -> CID), or both if built from a single program that
// defines both (rare in practice, harmless to support).
type CMap struct {
	codespaces []codespaceRange
	cidRanges  []cidRange
	cidChars   map[uint32]uint32
	bfRanges   []bfRange
	bfChars    map[uint32]string
}

func newCMap() *CMap {
	return &CMap{
		cidChars: make(map[uint32]uint32),
		bfChars:  make(map[uint32]string),
	}
}

// CodeLength returns the number of bytes the next code starting at b should
// consume, per the CMap's codespace ranges. Defaults to 1 for simple fonts
// with no codespace declared. If no range matches but a codespace exists,
// it returns the shortest declared codespace width, capped at len(b) and
// never less than 1.
func (c *CMap) CodeLength(b []byte) int {
	if len(c.codespaces) == 0 {
		if len(b) == 0 {
			return 1
		}
		return 1
	}
	for n := 1; n <= 4 && n <= len(b); n++ {
		for _, r := range c.codespaces {
			if len(r.Lo) == n && r.matches(b[:n]) {
				return n
			}
		}
	}
	// No exact codespace match: fall back to the shortest declared
	// codespace width so we still make forward progress.
	minLen := 4
	for _, r := range c.codespaces {
		if len(r.Lo) < minLen {
			minLen = len(r.Lo)
		}
	}
	if minLen == 4 {
		minLen = 1
	}
	if minLen > len(b) {
		minLen = len(b)
	}
	if minLen == 0 {
		minLen = 1
	}
	return minLen
}

// LookupCID returns the CID for code, per cidchar/cidrange entries. ok is
// false if code has no mapping (caller should then fall back to
// code-as-CID, the Identity-H/V convention).
func (c *CMap) LookupCID(code uint32) (uint32, bool) {
	if cid, ok := c.cidChars[code]; ok {
		return cid, true
	}
	for _, r := range c.cidRanges {
		if code >= r.Lo && code <= r.Hi {
			return r.CIDLo + (code - r.Lo), true
		}
	}
	return 0, false
}

// LookupUnicode returns the Unicode text for code, per bfchar/bfrange
// entries in a ToUnicode CMap.
func (c *CMap) LookupUnicode(code uint32) (string, bool) {
	if s, ok := c.bfChars[code]; ok {
		return s, true
	}
	for _, r := range c.bfRanges {
		if code >= r.Lo && code <= r.Hi {
			if r.Dsts != nil {
				idx := int(code - r.Lo)
				if idx < len(r.Dsts) {
					return r.Dsts[idx], true
				}
				return "", false
			}
			return incrementLastRune(r.Dst, code-r.Lo), true
		}
	}
	return "", false
}

func incrementLastRune(s string, delta uint32) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[len(runes)-1] += rune(delta)
	return string(runes)
}

// IsEmpty reports whether the CMap defines no mappings at all. A parse
// failure recovery signals the caller to report once and fall back to
// identity mapping.
func (c *CMap) IsEmpty() bool {
	return len(c.codespaces) == 0 && len(c.cidRanges) == 0 && len(c.cidChars) == 0 &&
		len(c.bfRanges) == 0 && len(c.bfChars) == 0
}

// sortedCodespaces is exposed for tests wanting deterministic iteration.
func (c *CMap) sortedCodespaces() []codespaceRange {
	out := append([]codespaceRange(nil), c.codespaces...)
	sort.Slice(out, func(i, j int) bool { return len(out[i].Lo) < len(out[j].Lo) })
	return out
}
