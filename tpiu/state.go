package tpiu

import (
	"fmt"

	"tpiutrace/common"
)

// Kind is the framing state of the stream.
type Kind uint8

const (
	// Searching: not frame aligned.
	Searching Kind = iota
	// SearchingSyncing: part of a sync pattern matched while unaligned.
	SearchingSyncing
	// Framing: aligned, consuming 16-byte frames.
	Framing
	// FramingSyncing: part of a sync pattern matched while aligned.
	FramingSyncing
)

func (k Kind) String() string {
	switch k {
	case Searching:
		return "Searching"
	case SearchingSyncing:
		return "SearchingSyncing"
	case Framing:
		return "Framing"
	case FramingSyncing:
		return "FramingSyncing"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Syncing reports whether k is mid sync pattern.
func (k Kind) Syncing() bool {
	return k == SearchingSyncing || k == FramingSyncing
}

// State is the framing state machine value. Matched counts the sync pattern
// bytes seen so far and is only meaningful for the syncing kinds, where it is
// always in 1..len(syncPattern)-1.
type State struct {
	Kind    Kind
	Matched int
}

func (s State) String() string {
	if s.Kind.Syncing() {
		return fmt.Sprintf("%v(%d)", s.Kind, s.Matched)
	}
	return s.Kind.String()
}

// legal lists every transition the state machine may make.
var legal = [4][4]bool{
	Searching:        {Searching: true, SearchingSyncing: true},
	SearchingSyncing: {Searching: true, SearchingSyncing: true, Framing: true},
	Framing:          {Framing: true, FramingSyncing: true},
	FramingSyncing:   {Searching: true, Framing: true, FramingSyncing: true},
}

func legalTransition(from, to State) bool {
	if from.Kind > FramingSyncing || to.Kind > FramingSyncing {
		return false
	}
	if to.Kind.Syncing() && (to.Matched < 1 || to.Matched >= len(syncPattern)) {
		return false
	}
	return legal[from.Kind][to.Kind]
}

// nextState advances the framing state machine by one byte. offset is the
// 1-based stream offset of b and is used for logging only.
func nextState(state State, b byte, offset uint64, log common.Logger) State {
	var next State

	switch state.Kind {
	case SearchingSyncing, FramingSyncing:
		switch {
		case b != syncPattern[state.Matched]:
			if state.Kind == FramingSyncing {
				log.Logf(common.SeverityInfo, "TPIU framing derailed at offset %d", offset)
			}
			next = State{Kind: Searching}
		case state.Matched+1 < len(syncPattern):
			next = State{Kind: state.Kind, Matched: state.Matched + 1}
		default:
			if state.Kind == SearchingSyncing {
				log.Logf(common.SeverityInfo, "TPIU sync packet found at offset %d",
					offset-uint64(state.Matched))
			}
			next = State{Kind: Framing}
		}

	case Searching, Framing:
		if b == syncPattern[0] {
			kind := SearchingSyncing
			if state.Kind == Framing {
				kind = FramingSyncing
			}
			next = State{Kind: kind, Matched: 1}
		} else {
			next = State{Kind: state.Kind}
		}
	}

	if !legalTransition(state, next) {
		panic(fmt.Sprintf("tpiu: illegal state transition at offset %d: %v -> %v",
			offset, state, next))
	}

	return next
}
