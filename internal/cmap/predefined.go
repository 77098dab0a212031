/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package cmap

// Identity-H and Identity-V are the only predefined CID CMaps bundled:
// code equals CID directly, 2 bytes per code. Other predefined
// CJK CMap names (UniGB-UCS2-H, UniJIS-UCS2-H, and friends) are recognised
// so the caller can tell a named-but-unsupported CMap apart from a missing
// one, but their mapping tables aren't bundled; Predefined returns no map
// for them, and the font layer logs the name and falls back to
// code-as-CID.
const (
	IdentityH = "Identity-H"
	IdentityV = "Identity-V"
)

// identityCMap is shared by both Identity-H and Identity-V: CID == code,
// 2-byte codes, no bfrange (ToUnicode is always separate for CID fonts).
var identityCMap = &CMap{
	codespaces: []codespaceRange{{Lo: []byte{0x00, 0x00}, Hi: []byte{0xFF, 0xFF}}},
	cidChars:   map[uint32]uint32{},
	bfChars:    map[uint32]string{},
}

// IsPredefinedIdentity reports whether name is one of the two predefined
// identity CMaps.
func IsPredefinedIdentity(name string) bool {
	return name == IdentityH || name == IdentityV
}

// Predefined looks up a CMap by its predefined PDF name. ok is false for any
// name other than Identity-H/V: named CJK CMaps are recognised elsewhere
// (the font layer) only to avoid misreporting them as "missing entirely",
// unsupported-CMap diagnostic.
func Predefined(name string) (*CMap, bool) {
	if IsPredefinedIdentity(name) {
		return identityCMap, true
	}
	return nil, false
}

// knownUnsupportedRegistries lists predefined CMap name prefixes PDF
// producers commonly emit for CJK fonts, so the font layer can log a single
// specific "unsupported CJK CMap <name>" warning instead of a generic
// "malformed CMap" one.
var knownUnsupportedRegistries = []string{
	"UniGB-", "UniCNS-", "UniJIS-", "UniKS-",
	"GBK-", "GBpc-", "GBKp-", "GBT-",
	"B5pc-", "ETen-", "CNS-",
	"90ms-", "90pv-", "90msp-", "Add-",
	"KSC-", "KSCms-", "KSCpc-",
}

// IsKnownUnsupportedCJK reports whether name looks like one of the
// predefined CJK CMaps this module doesn't bundle a table for.
func IsKnownUnsupportedCJK(name string) bool {
	for _, prefix := range knownUnsupportedRegistries {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
