// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     history
// Description: Transcription history over a key-value substrate
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package history

import (
	"strings"
	"unicode/utf8"
)

// MinTranscriptionLength is the shortest trimmed transcription that is stored
const MinTranscriptionLength = 20

// DateLayout formats Entry.Date (day/month/year, 24h clock)
const DateLayout = "02/01/2006, 15:04:05"

// Entry is one saved transcription
type Entry struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Transcription string  `json:"transcription"`
	Summary       *string `json:"summary"`
}

// HasSummary reports whether a non-empty summary is attached
func (e Entry) HasSummary() bool {
	return e.Summary != nil && *e.Summary != ""
}

// Display renders the entry for the output buffer
func (e Entry) Display() string {
	if !e.HasSummary() {
		return e.Transcription
	}
	return "--- SUMMARY ---\n" + *e.Summary + "\n\n--- FULL TRANSCRIPTION ---\n" + e.Transcription
}

// Preview returns the first n runes of the transcription on one line
func (e Entry) Preview(n int) string {
	s := strings.Join(strings.Fields(e.Transcription), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// LongEnough reports whether text may be stored
func LongEnough(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTranscriptionLength
}
