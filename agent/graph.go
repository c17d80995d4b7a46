package agent

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrTooManySteps      = errors.New("workflow exceeded step limit")
)

// State is a node of the trip workflow.
type State uint8

const (
	StateStart State = iota
	StateIntent
	StateClarify
	StateItinerary
	StateHumanInput
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateIntent:
		return "intent"
	case StateClarify:
		return "clarify"
	case StateItinerary:
		return "itinerary"
	case StateHumanInput:
		return "human_input"
	case StateEnd:
		return "end"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for c := StateStart; c <= StateEnd; c++ {
		if c.String() == string(text) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown workflow state %q", text)
}

// Event is what a node reports when it finishes.
type Event uint8

const (
	EventBegin Event = iota
	EventComplete
	EventIncomplete
	EventNoTravelIntent
	EventTurnLimit
	EventFieldSelected
	EventNothingMissing
	EventSuspend
	EventDelivered
)

func (e Event) String() string {
	switch e {
	case EventBegin:
		return "begin"
	case EventComplete:
		return "complete"
	case EventIncomplete:
		return "incomplete"
	case EventNoTravelIntent:
		return "no_travel_intent"
	case EventTurnLimit:
		return "turn_limit"
	case EventFieldSelected:
		return "field_selected"
	case EventNothingMissing:
		return "nothing_missing"
	case EventSuspend:
		return "suspend"
	case EventDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// Transition returns the state that follows s on e. Pairs that are not part of the
// workflow return s unchanged with ErrInvalidTransition.
func Transition(s State, e Event) (State, error) {
	switch s {
	case StateStart:
		switch e {
		case EventBegin:
			return StateIntent, nil
		}
	case StateIntent:
		switch e {
		case EventComplete, EventTurnLimit:
			return StateItinerary, nil
		case EventIncomplete:
			return StateClarify, nil
		case EventNoTravelIntent:
			return StateEnd, nil
		}
	case StateClarify:
		switch e {
		case EventFieldSelected:
			return StateHumanInput, nil
		case EventNothingMissing:
			return StateIntent, nil
		}
	case StateHumanInput:
		switch e {
		case EventSuspend:
			return StateEnd, nil
		}
	case StateItinerary:
		switch e {
		case EventDelivered:
			return StateEnd, nil
		}
	case StateEnd:
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, s, e)
}
