package domain

import "time"

// SwipeKind is the action a user took on a candidate
type SwipeKind string

const (
	SwipeLike      SwipeKind = "like"
	SwipeSuperlike SwipeKind = "superlike"
	SwipePass      SwipeKind = "pass"
)

// Valid reports whether k is a known swipe kind
func (k SwipeKind) Valid() bool {
	return k == SwipeLike || k == SwipeSuperlike || k == SwipePass
}

// IsPositive reports whether the swipe expresses interest
func (k SwipeKind) IsPositive() bool {
	return k == SwipeLike || k == SwipeSuperlike
}

// SwipeEvent is an immutable fact of the swipe log
type SwipeEvent struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	TargetID  string    `json:"target_id"`
	Kind      SwipeKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}
