package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerID is a value object representing a player's unique identifier
type PlayerID struct {
	value uuid.UUID
}

// NewPlayerID creates a new PlayerID value object
func NewPlayerID(id uuid.UUID) (PlayerID, error) {
	if id == uuid.Nil {
		return PlayerID{}, fmt.Errorf("player_id cannot be nil")
	}
	return PlayerID{value: id}, nil
}

// ParsePlayerID parses the canonical string form of a player id
func ParsePlayerID(s string) (PlayerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PlayerID{}, fmt.Errorf("invalid player_id %q: %w", s, err)
	}
	return NewPlayerID(id)
}

// MustParsePlayerID parses a PlayerID, panicking if invalid
// Use this only when you're certain the ID is valid (e.g., from database or fixtures)
func MustParsePlayerID(s string) PlayerID {
	playerID, err := ParsePlayerID(s)
	if err != nil {
		panic(err)
	}
	return playerID
}

// Value returns the underlying UUID
func (p PlayerID) Value() uuid.UUID {
	return p.value
}

// String returns a string representation of the PlayerID
func (p PlayerID) String() string {
	return p.value.String()
}

// Equals checks if two PlayerIDs are equal
func (p PlayerID) Equals(other PlayerID) bool {
	return p.value == other.value
}

// IsZero checks if the PlayerID is the zero value (uninitialized)
func (p PlayerID) IsZero() bool {
	return p.value == uuid.Nil
}

// PlayerIDPtrEquals compares an optional owner with a concrete player
func PlayerIDPtrEquals(owner *PlayerID, player PlayerID) bool {
	return owner != nil && owner.Equals(player)
}
