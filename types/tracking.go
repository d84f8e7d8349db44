package types

import "time"

// BallotState is the state of a ballot once submitted.
type BallotState string

const (
	BallotStateCast    BallotState = "Cast"
	BallotStateSpoiled BallotState = "Spoiled"
	BallotStateUnknown BallotState = "Unknown"
)

// TrackedBallot is the public record a voter can find through its tracker.
// It never reveals the ballot contents.
type TrackedBallot struct {
	ElectionID         string      `json:"election_id"`
	TrackerID          string      `json:"tracker_id"`
	TrackerWords       []string    `json:"tracker_words"`
	TrackerWordsString string      `json:"tracker_words_string"`
	State              BallotState `json:"state"`
	Timestamp          time.Time   `json:"timestamp"`
	ObjectID           string      `json:"object_id"`
	Location           string      `json:"location,omitempty"`
}
