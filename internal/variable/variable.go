package variable

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Variable is a named, user-owned string value usable to resolve placeholders.
// Name is the natural key: for one library at most one Variable carries a
// given name at any time (case-sensitive, exact match).
type Variable struct {
	// ID is a ULID generated on creation, immutable thereafter
	ID string `json:"id"`

	// Name deduplicates the library; upserts key on it
	Name string `json:"name"`

	// Value is the payload substituted into placeholders
	Value string `json:"value"`

	// Description is optional free text
	Description string `json:"description,omitempty"`

	// Category is an optional free-text grouping label
	Category string `json:"category,omitempty"`

	// UpdatedAt is the Unix timestamp of the last create or update
	UpdatedAt int64 `json:"updated_at"`
}

// Fields is a partial update applied by UpdateByID. Nil means don't change.
type Fields struct {
	Value       *string
	Description *string
	Category    *string
}

// NewID generates a new ULID.
func NewID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
