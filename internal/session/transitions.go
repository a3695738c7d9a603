// Package session implements the per-conversation search and review flows.
//
// Search flow:
//
//	IDLE ──► COLLECTING_KEYWORDS ──► COLLECTING_LOCATION ──► ACTIVE ──► TERMINATED
//	                                          │                 ▲ │
//	                                          │                 └─┘ next page
//	                                          └──────────────────────► TERMINATED (no jobs)
//
// Review flow:
//
//	IDLE ──► ACTIVE ──► TERMINATED
//	  └───────────────► TERMINATED (nothing saved)
//
// TERMINATED is never stored: reaching it removes the conversation's state.
package session

import "fmt"

// Flow tells which state machine owns a conversation's state.
type Flow string

const (
	FlowSearch Flow = "SEARCH"
	FlowReview Flow = "REVIEW"
)

// Phase is the current node of a flow's state machine.
type Phase string

const (
	PhaseIdle               Phase = "IDLE"
	PhaseCollectingKeywords Phase = "COLLECTING_KEYWORDS"
	PhaseCollectingLocation Phase = "COLLECTING_LOCATION"
	PhaseActive             Phase = "ACTIVE"
	PhaseTerminated         Phase = "TERMINATED"
)

// Input is a single inbound event a phase may or may not accept.
type Input string

const (
	InputKeywords  Input = "KEYWORDS"
	InputLocation  Input = "LOCATION"
	InputNext      Input = "NEXT"
	InputSave      Input = "SAVE"
	InputNextSaved Input = "NEXT_SAVED"
)

// validTransitions lists every allowed (from → to) pair per flow.
// Staying in a phase (a feed failure while collecting the location, a
// listing shown from the current page) is not a transition.
var validTransitions = map[Flow]map[Phase][]Phase{
	FlowSearch: {
		PhaseIdle:               {PhaseCollectingKeywords},
		PhaseCollectingKeywords: {PhaseCollectingLocation},
		PhaseCollectingLocation: {PhaseActive, PhaseTerminated},
		PhaseActive:             {PhaseTerminated},
	},
	FlowReview: {
		PhaseIdle:   {PhaseActive, PhaseTerminated},
		PhaseActive: {PhaseTerminated},
	},
}

// acceptedInputs lists the inputs each phase handles. Anything else is an
// UNEXPECTED_INPUT and is ignored.
var acceptedInputs = map[Flow]map[Phase][]Input{
	FlowSearch: {
		PhaseCollectingKeywords: {InputKeywords},
		PhaseCollectingLocation: {InputLocation},
		PhaseActive:             {InputNext, InputSave},
	},
	FlowReview: {
		PhaseActive: {InputNextSaved},
	},
}

// ParsePhase converts a raw string to a Phase, returning an error for
// unknown values.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	switch p {
	case PhaseIdle, PhaseCollectingKeywords, PhaseCollectingLocation, PhaseActive, PhaseTerminated:
		return p, nil
	}
	return "", fmt.Errorf("unknown session phase %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted by
// flow's state machine.
func IsTransitionAllowed(flow Flow, from, to Phase) bool {
	for _, p := range validTransitions[flow][from] {
		if p == to {
			return true
		}
	}
	return false
}

// Accepts returns true when phase of flow handles input.
func Accepts(flow Flow, phase Phase, input Input) bool {
	for _, in := range acceptedInputs[flow][phase] {
		if in == input {
			return true
		}
	}
	return false
}

// IsTerminal returns true for phases with no outgoing transitions.
func IsTerminal(p Phase) bool { return p == PhaseTerminated }
