// Package inject owns the delimited README region between the sentinel
// markers. Text outside the markers is never touched.
package inject

import "strings"

const (
	// StartMarker and EndMarker delimit the auto-managed README region.
	StartMarker = "<!-- ideas:start -->"
	EndMarker   = "<!-- ideas:end -->"

	updatedLine = "_Updated automatically. Do not edit between the markers._"
)

// region composes the managed content placed between the markers. It is
// fully deterministic so repeated runs with unchanged input produce a
// byte-identical document.
func region(block string) string {
	return "\n\n" + updatedLine + "\n" + block
}

// Inject replaces the content strictly between the markers with block. When
// either marker is missing, a freshly delimited region is appended to the
// end of the document, separated from existing content by a blank line.
//
// Callers should compare the result against the input document: byte
// equality means nothing changed and the write plus backup can be skipped.
func Inject(document, block string) string {
	start := strings.Index(document, StartMarker)
	end := strings.Index(document, EndMarker)

	if start < 0 || end < 0 || end < start {
		return appendRegion(document, block)
	}

	head := document[:start+len(StartMarker)]
	tail := document[end:]
	return head + region(block) + tail
}

func appendRegion(document, block string) string {
	var b strings.Builder
	b.WriteString(document)
	if document != "" && !strings.HasSuffix(document, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(StartMarker)
	b.WriteString(region(block))
	b.WriteString(EndMarker)
	b.WriteString("\n")
	return b.String()
}
