// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package pdfstruct

import (
	"fmt"

	"github.com/sassoftware/viya-pdf-struct/logger"
)

// objectSpans pairs the i-th " obj" marker with the i-th "endobj" marker.
// Objects do not nest, so positional pairing is valid for well-formed files;
// unequal counts, an end before its start, or overlapping pairs mean the file
// is truncated or corrupt.
func objectSpans(matches Matches) ([]ObjectSpan, error) {
	starts := matches.Of(KeywordObj)
	ends := matches.Of(KeywordEndObj)
	logger.Debug(fmt.Sprintf("objects: obj=%d endobj=%d", len(starts), len(ends)), true)

	if len(starts) != len(ends) {
		// Report the first marker left without a partner.
		n := min(len(starts), len(ends))
		var offset int
		if len(starts) > n {
			offset = starts[n].Start
		} else {
			offset = ends[n].Start
		}
		return nil, newParseError(ObjectBoundaryMismatch, offset,
			"%d obj markers but %d endobj markers", len(starts), len(ends))
	}

	spans := make([]ObjectSpan, 0, len(starts))
	prevEnd := 0
	for i := range starts {
		s, e := starts[i].Start, ends[i].End
		if ends[i].Start < starts[i].End {
			return nil, newParseError(ObjectBoundaryMismatch, ends[i].Start, "endobj precedes obj marker %d", i)
		}
		if s < prevEnd {
			return nil, newParseError(ObjectBoundaryMismatch, s, "object %d overlaps the previous object", i)
		}
		spans = append(spans, ObjectSpan{StartOffset: int64(s), EndOffset: int64(e)})
		prevEnd = e
	}
	return spans, nil
}
