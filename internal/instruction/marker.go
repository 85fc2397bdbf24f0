package instruction

import (
	"regexp"
	"strings"
)

// The note text is the whole state machine: an unprocessed instruction is a
// text fully wrapped in {{...}}; marking it processing rewrites the closing
// token so the pattern can never re-match; marking it done rewrites the
// processing marker. All marker literals live in this file only.
const (
	closingToken     = "}}"
	processingMarker = "!!Processing!!"
	doneMarker       = "!! Done !!"
)

// markerPattern matches a text that is entirely an instruction marker.
// (?s) makes dot match newlines so multiline instructions work; the capture
// is non-greedy, but the anchors force it to span to the final }} anyway.
var markerPattern = regexp.MustCompile(`(?s)^\{\{(.*?)\}\}$`)

// Extract returns the trimmed instruction text when the note text is an
// unprocessed instruction, and false otherwise.
func Extract(text string) (string, bool) {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// MarkProcessing rewrites every closing token so the text no longer matches
// the marker pattern. A later scan cycle therefore cannot pick the note up
// again.
func MarkProcessing(text string) string {
	return strings.ReplaceAll(text, closingToken, processingMarker)
}

// MarkDone commits the final state transition on a processing text.
func MarkDone(text string) string {
	return strings.ReplaceAll(text, processingMarker, doneMarker)
}

// IsStuck reports whether a text still carries the processing marker. A note
// stays stuck when an instruction failed mid-flight; nothing unsticks it
// automatically.
func IsStuck(text string) bool {
	return strings.Contains(text, processingMarker)
}
