package forge

import "cardforge-bot/internal/card"

// State is the three-state progress signal of one generation attempt.
type State int

const (
	StateWorking State = iota + 1
	StateSucceeded
	StateFailed
)

// Phase is the human-readable label of the step currently running.
type Phase string

const (
	PhaseAnalyzing    Phase = "analyzing the photo"
	PhaseNaming       Phase = "naming the card"
	PhaseRollingStats Phase = "rolling the stats"
	PhasePainting     Phase = "generating art"
)

// Progress is pushed to the caller at every transition so it can render
// status without polling the assembler.
type Progress struct {
	State State
	Phase Phase
	Card  *card.Card // set on StateSucceeded
	Err   error      // set on StateFailed
}
