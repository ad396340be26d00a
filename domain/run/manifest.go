// Package run holds the determinism record of one inference run: the
// manifest that must exist before any other artifact, and the fingerprint
// that makes a run replayable from its parameters alone.
package run

import (
	"fmt"
	"strconv"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/statistic"
)

// Manifest represents the complete specification for a run
// This is the "truth source" for replay - must exist before any other artifacts
type Manifest struct {
	RunID       core.RunID       `json:"run_id"`
	DatasetHash core.DatasetHash `json:"dataset_hash"`
	Response    string           `json:"response"`
	Group       string           `json:"group,omitempty"`
	Null        hypothesis.Null  `json:"null"`
	Method      resample.Method  `json:"method"`
	Stat        statistic.Kind   `json:"stat"`
	Reps        int              `json:"reps"`
	Seed        int64            `json:"seed"`
	CodeVersion string           `json:"code_version"`
	Fingerprint Fingerprint      `json:"fingerprint"` // Determinism fingerprint
	CreatedAt   core.Timestamp   `json:"created_at"`
}

// NewManifest creates a run manifest from an inference request
func NewManifest(
	runID core.RunID,
	design hypothesis.Design,
	method resample.Method,
	stat statistic.Kind,
	reps int,
	seed int64,
	codeVersion string,
) *Manifest {
	datasetHash := design.Table.Hash()
	planHash := planHashOf(design, method, stat, reps)
	fingerprint := NewFingerprint(datasetHash, planHash, seed, codeVersion)

	return &Manifest{
		RunID:       runID,
		DatasetHash: datasetHash,
		Response:    design.Response,
		Group:       design.Group,
		Null:        design.Null,
		Method:      method,
		Stat:        stat,
		Reps:        reps,
		Seed:        seed,
		CodeVersion: codeVersion,
		Fingerprint: fingerprint,
		CreatedAt:   core.Now(),
	}
}

// planHashOf folds every parameter that steers generation and reduction
// into the plan hash, including the point-null probabilities
func planHashOf(design hypothesis.Design, method resample.Method, stat statistic.Kind, reps int) core.PlanHash {
	parts := []string{
		design.Response,
		design.Group,
		string(design.Null),
		string(method),
		string(stat),
		strconv.Itoa(reps),
	}
	for _, lp := range design.Point {
		parts = append(parts, fmt.Sprintf("%s=%g", lp.Level, lp.Prob))
	}
	return core.ComputePlanHash(parts...)
}

// ToCoreArtifact converts to a core artifact for storage
func (m *Manifest) ToCoreArtifact() core.Artifact {
	return core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactRunManifest,
		Payload:   m,
		CreatedAt: m.CreatedAt,
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return core.NewValidationError("run_manifest", "run_id cannot be empty")
	}
	if core.Hash(m.DatasetHash).IsEmpty() {
		return core.NewValidationError("run_manifest", "dataset_hash cannot be empty")
	}
	if m.Response == "" {
		return core.NewValidationError("run_manifest", "response cannot be empty")
	}
	if m.Reps < 1 {
		return core.NewValidationError("run_manifest", "reps must be at least 1")
	}
	if m.CodeVersion == "" {
		return core.NewValidationError("run_manifest", "code_version cannot be empty")
	}
	return nil
}
