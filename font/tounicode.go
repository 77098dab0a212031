/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package font

import (
	"github.com/bbqsrc/pdf-strings/internal/cmap"
	"github.com/bbqsrc/pdf-strings/internal/common"
)

// loadToUnicode reads the font's /ToUnicode stream, if any, parsing it with
// internal/cmap. A missing or malformed ToUnicode yields a nil map, which
// callers treat as "fall through to encoding/AGL or CID-to-Unicode";
// damaged reports a present-but-malformed program so the façade can attach
// a cmap-parse warning to the page.
func loadToUnicode(dict Dict) (cm *cmap.CMap, damaged bool) {
	sv, ok := lookupStream(dict, "ToUnicode")
	if !ok {
		return nil, false
	}
	parsed, err := cmap.Parse(sv.Bytes)
	if err != nil {
		common.Log.Debug("font: malformed ToUnicode CMap: %v", err)
		return nil, true
	}
	if parsed.IsEmpty() {
		return nil, true
	}
	return parsed, false
}
