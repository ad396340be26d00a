package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	DatasetHash Hash
	PlanHash    Hash
)

// Constructors
func NewDatasetHash(data []byte) DatasetHash { return DatasetHash(NewHash(data)) }
func NewPlanHash(data []byte) PlanHash       { return PlanHash(NewHash(data)) }

// String conversions
func (h DatasetHash) String() string { return Hash(h).String() }
func (h PlanHash) String() string    { return Hash(h).String() }

// ComputePlanHash derives a deterministic hash for an execution plan from
// its ordered parts (method, statistic, reps, and the like).
func ComputePlanHash(parts ...string) PlanHash {
	var data strings.Builder
	for i, part := range parts {
		if i > 0 {
			data.WriteString("|")
		}
		data.WriteString(part)
	}
	return NewPlanHash([]byte(data.String()))
}
