package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID ID
	BatchID   ID
)

// NewSessionID returns a fresh session identifier.
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewBatchID returns a fresh batch identifier.
func NewBatchID() BatchID { return BatchID(NewID()) }

func (id SessionID) String() string { return ID(id).String() }
func (id BatchID) String() string   { return ID(id).String() }

// ParseBatchID parses a string into BatchID. The value must be a UUID.
func ParseBatchID(s string) (BatchID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("batch ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("batch ID %q: %w", s, err)
	}
	return BatchID(s), nil
}
