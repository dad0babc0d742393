package domain

import (
	"errors"
	"fmt"
)

// Sentinel kinds, matched with errors.Is.
var (
	ErrRouting       = errors.New("routing failed")
	ErrPersona       = errors.New("persona rewrite failed")
	ErrTranscription = errors.New("transcription failed")
	ErrSynthesis     = errors.New("speech synthesis failed")
	ErrHandler       = errors.New("handler failed")
)

// HandlerError is a failed external call inside a domain handler. It never
// crosses the handler boundary; handlers render it with Text.
type HandlerError struct {
	Handler HandlerName
	Op      string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s handler: %s: %v", e.Handler, e.Op, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func (e *HandlerError) Is(target error) bool { return target == ErrHandler }

// Text is the human-readable form folded into the composed response.
func (e *HandlerError) Text() string {
	if e.Op == "" {
		return fmt.Sprintf("Error: %v", e.Err)
	}
	return fmt.Sprintf("Error %s: %v", e.Op, e.Err)
}

// RoutingError is a failed or unusable classification call.
type RoutingError struct {
	Err error
}

func (e *RoutingError) Error() string { return fmt.Sprintf("routing: %v", e.Err) }

func (e *RoutingError) Unwrap() error { return e.Err }

func (e *RoutingError) Is(target error) bool { return target == ErrRouting }

// PersonaError is a failed persona rewrite.
type PersonaError struct {
	Err error
}

func (e *PersonaError) Error() string { return fmt.Sprintf("persona: %v", e.Err) }

func (e *PersonaError) Unwrap() error { return e.Err }

func (e *PersonaError) Is(target error) bool { return target == ErrPersona }

// TranscriptionError is a failed or empty speech-to-text result.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcription: %v", e.Err) }

func (e *TranscriptionError) Unwrap() error { return e.Err }

func (e *TranscriptionError) Is(target error) bool { return target == ErrTranscription }

// SynthesisError is a failed text-to-speech call.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesis: %v", e.Err) }

func (e *SynthesisError) Unwrap() error { return e.Err }

func (e *SynthesisError) Is(target error) bool { return target == ErrSynthesis }

// OrchestrationError wraps the first unrecoverable failure of a pass together
// with the stage it happened in.
type OrchestrationError struct {
	Stage Stage
	Err   error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("orchestration failed at %s: %v", e.Stage, e.Err)
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")
