package forge

import (
	"errors"
	"fmt"

	"cardforge-bot/internal/gemini"
)

// Kind classifies why a generation attempt died. Every kind is terminal
// for the attempt; retry means starting the whole sequence over.
type Kind int

const (
	// KindTransport is a non-success HTTP status or network failure.
	KindTransport Kind = iota + 1
	// KindDecode is a reply that could not be parsed into the expected
	// shape, or had a required field missing or mistyped.
	KindDecode
	// KindContentMissing is a successful reply that lacked the expected
	// payload slot.
	KindContentMissing
	// KindConfiguration is a setup problem detected before any attempt
	// starts, such as a missing credential.
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindContentMissing:
		return "content missing"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is a typed generation failure. Raw carries the offending reply
// text for decode failures.
type Error struct {
	Kind  Kind
	Phase Phase
	Raw   string
	Err   error
}

func (e *Error) Error() string {
	if e.Phase != "" {
		return fmt.Sprintf("%s failed while %s: %v", e.Kind, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrBusy rejects a Generate call while another attempt is running on
// the same assembler.
var ErrBusy = errors.New("forge: generation already in progress")

// classify maps collaborator failures onto the error taxonomy. Errors
// from the generator are transport or content-missing; local parse
// failures are wrapped as decode errors at the call site.
func classify(phase Phase, err error) *Error {
	var status *gemini.StatusError
	switch {
	case errors.As(err, &status):
		return &Error{Kind: KindTransport, Phase: phase, Err: err}
	case errors.Is(err, gemini.ErrNoContent):
		return &Error{Kind: KindContentMissing, Phase: phase, Err: err}
	default:
		return &Error{Kind: KindTransport, Phase: phase, Err: err}
	}
}

func decodeError(phase Phase, raw string, err error) *Error {
	return &Error{Kind: KindDecode, Phase: phase, Raw: raw, Err: err}
}
