package session

import (
	"fmt"

	"github.com/msto63/diktat/internal/stt"
)

// Status lines shown to the user
const (
	StatusBoot             = "SYSTEM BOOT: Loading Transcriber Core..."
	StatusReady            = "SYSTEM READY."
	StatusLoadingSummary   = "LOADING SUMMARIZER CORE..."
	StatusProcessing       = "Recording complete. Processing full audio..."
	StatusEmpty            = "Recording was empty. Nothing to process."
	StatusMicDenied        = "ERROR: MIC ACCESS DENIED."
	StatusSummarizing      = "Transcription long. Generating summary..."
	StatusSavedWithSummary = "Transcription and summary saved to history."
	StatusSummaryFailed    = "Transcription saved. Summary failed."
	StatusSaved            = "Transcription saved to history."
	StatusComplete         = "Transcription complete."
	StatusCleared          = "OUTPUT BUFFER CLEARED."
	StatusCopied           = "OUTPUT BUFFER COPIED TO CLIPBOARD."
)

// StatusListener receives every status line
type StatusListener func(text string)

func statusListening(mode stt.Mode) string {
	return fmt.Sprintf("STATUS: ACTIVE LISTENING (%s)...", mode.Label())
}

func statusStandby(mode stt.Mode) string {
	return fmt.Sprintf("STATUS: STANDBY (%s).", mode.Label())
}

func statusTranscribingFile(name string) string {
	return fmt.Sprintf("TRANSCRIBING FILE: \"%s\"...", name)
}

func statusFileComplete(name string) string {
	return fmt.Sprintf("FILE TRANSCRIPTION COMPLETE: \"%s\"", name)
}

func statusFileFailed(name string) string {
	return fmt.Sprintf("ERROR: Could not process file \"%s\"", name)
}

func statusSaveFailed(err error) string {
	return fmt.Sprintf("ERROR: Could not save to history: %v", err)
}
