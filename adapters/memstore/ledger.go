// Package memstore implements the artifact ledger in memory. It backs tests
// and database-less runs of the binaries; ordering is insertion order so
// paged reads stay deterministic.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"goinfer/domain/core"
	"goinfer/domain/run"
	"goinfer/ports"
)

// Ledger implements LedgerPort with in-memory storage
type Ledger struct {
	artifacts    map[core.ArtifactID]core.Artifact
	order        []core.ArtifactID // insertion order
	runArtifacts map[core.RunID][]core.ArtifactID
	mu           sync.RWMutex
}

func NewLedger() *Ledger {
	return &Ledger{
		artifacts:    make(map[core.ArtifactID]core.Artifact),
		runArtifacts: make(map[core.RunID][]core.ArtifactID),
	}
}

func (s *Ledger) StoreArtifact(ctx context.Context, runID string, artifact core.Artifact) error {
	if artifact.ID.IsEmpty() {
		return core.NewValidationError("artifact", "id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	artifactID := core.ArtifactID(artifact.ID)
	if _, exists := s.artifacts[artifactID]; !exists {
		s.order = append(s.order, artifactID)
	}
	s.artifacts[artifactID] = artifact

	// Track artifacts by run
	runIDTyped := core.RunID(runID)
	s.runArtifacts[runIDTyped] = append(s.runArtifacts[runIDTyped], artifactID)

	return nil
}

func (s *Ledger) ListArtifacts(ctx context.Context, filters ports.ArtifactFilters) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []core.Artifact
	skipped := 0

	for _, artifactID := range s.order {
		artifact := s.artifacts[artifactID]

		// Apply filters
		if filters.Kind != nil && artifact.Kind != *filters.Kind {
			continue
		}
		if filters.RunID != nil && !s.belongsToRun(*filters.RunID, artifactID) {
			continue
		}

		if skipped < filters.Offset {
			skipped++
			continue
		}
		results = append(results, artifact)
		if filters.Limit > 0 && len(results) >= filters.Limit {
			break
		}
	}

	return results, nil
}

func (s *Ledger) belongsToRun(runID core.RunID, artifactID core.ArtifactID) bool {
	for _, aid := range s.runArtifacts[runID] {
		if aid == artifactID {
			return true
		}
	}
	return false
}

func (s *Ledger) GetArtifact(ctx context.Context, artifactID core.ArtifactID) (*core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifact, exists := s.artifacts[artifactID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, artifactID)
	}

	return &artifact, nil
}

func (s *Ledger) GetArtifactsByRun(ctx context.Context, runID core.RunID) ([]core.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	artifactIDs, exists := s.runArtifacts[runID]
	if !exists {
		return []core.Artifact{}, nil
	}

	artifacts := make([]core.Artifact, 0, len(artifactIDs))
	for _, aid := range artifactIDs {
		if artifact, ok := s.artifacts[aid]; ok {
			artifacts = append(artifacts, artifact)
		}
	}

	return artifacts, nil
}

func (s *Ledger) GetArtifactsByKind(ctx context.Context, kind core.ArtifactKind, limit int) ([]core.Artifact, error) {
	return s.ListArtifacts(ctx, ports.ArtifactFilters{Kind: &kind, Limit: limit})
}

// GetRunManifest returns the manifest stored for a run. It reads the stored
// run-manifest artifact, so a run is only visible once its manifest landed.
func (s *Ledger) GetRunManifest(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	artifacts, err := s.GetArtifactsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	for _, artifact := range artifacts {
		if artifact.Kind != core.ArtifactRunManifest {
			continue
		}
		manifest, ok := artifact.Payload.(*run.Manifest)
		if !ok {
			return nil, core.NewValidationError("run_manifest",
				fmt.Sprintf("unexpected payload type %T", artifact.Payload))
		}
		return manifest, nil
	}
	return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
}
