package run

import (
	"crypto/sha256"
	"fmt"

	"goinfer/domain/core"
)

// Fingerprint ensures deterministic replay
type Fingerprint struct {
	DatasetHash core.DatasetHash `json:"dataset_hash"`
	PlanHash    core.PlanHash    `json:"plan_hash"`
	Seed        int64            `json:"seed"`
	CodeVersion string           `json:"code_version"`
	Fingerprint core.Hash        `json:"fingerprint"` // Hash of all above
}

// NewFingerprint creates a fingerprint from determinism parameters
func NewFingerprint(datasetHash core.DatasetHash, planHash core.PlanHash,
	seed int64, codeVersion string) Fingerprint {

	fingerprint := computeFingerprint(datasetHash, planHash, seed, codeVersion)

	return Fingerprint{
		DatasetHash: datasetHash,
		PlanHash:    planHash,
		Seed:        seed,
		CodeVersion: codeVersion,
		Fingerprint: fingerprint,
	}
}

// computeFingerprint generates deterministic hash from all determinism parameters
func computeFingerprint(datasetHash core.DatasetHash, planHash core.PlanHash,
	seed int64, codeVersion string) core.Hash {

	// Create deterministic string representation
	data := fmt.Sprintf("dataset:%s|plan:%s|seed:%d|code:%s",
		datasetHash, planHash, seed, codeVersion)

	// Use SHA256 for deterministic hashing
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
