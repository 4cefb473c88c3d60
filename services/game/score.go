package game

import "fmt"

// IntentKind distinguishes the two score mutation styles.
type IntentKind string

const (
	// IntentSetAbsolute replaces the stored team score with a caller-computed
	// total. Last write wins: two teammates racing from the same stale read
	// will lose one of the updates. Kept for parity with the historical
	// scoreboard behavior.
	IntentSetAbsolute IntentKind = "set_absolute"

	// IntentAddDelta asks the store to compute the new total itself
	// (team_score = GREATEST(team_score + delta, 0)). Concurrent deltas
	// commute, so this kind has no lost-update race.
	IntentAddDelta IntentKind = "add_delta"
)

// ScoreIntent is a tagged score mutation. Scores may overshoot past 21; the
// only numeric bound is that a stored score never goes below zero.
type ScoreIntent struct {
	Kind  IntentKind `json:"kind"`
	Value int        `json:"value"`
}

// SetAbsolute builds an absolute-value intent. Negative totals clamp to zero
// at this boundary, not in the store.
func SetAbsolute(total int) ScoreIntent {
	if total < 0 {
		total = 0
	}
	return ScoreIntent{Kind: IntentSetAbsolute, Value: total}
}

// AddDelta builds an increment intent. Negative deltas are allowed (score
// corrections); the store clamps the result at zero.
func AddDelta(delta int) ScoreIntent {
	return ScoreIntent{Kind: IntentAddDelta, Value: delta}
}

func (i ScoreIntent) validate() error {
	switch i.Kind {
	case IntentSetAbsolute:
		if i.Value < 0 {
			return fmt.Errorf("%w: absolute score must be >= 0", ErrValidation)
		}
	case IntentAddDelta:
		// any delta is fine, the store clamps at zero
	default:
		return fmt.Errorf("%w: unknown score intent %q", ErrValidation, i.Kind)
	}
	return nil
}
