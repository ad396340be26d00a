// Package app orchestrates inference runs: it turns a request into a
// manifest, drives replicate generation and statistic reduction, and lands
// every output in the artifact ledger, manifest first.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/run"
	"goinfer/domain/statistic"
	"goinfer/domain/table"
	"goinfer/internal/logging"
	"goinfer/internal/report"
	"goinfer/ports"
)

// CodeVersion tags every manifest. Bump it when a change alters the draws a
// seed produces, so old fingerprints stop matching.
const CodeVersion = "v0.1.0"

// InferenceService runs the specify-generate-calculate pipeline
type InferenceService struct {
	ledgerPort ports.LedgerPort
	rngPort    ports.RNGPort
	logger     *logging.Logger
}

// NewInferenceService creates an inference service
func NewInferenceService(ledgerPort ports.LedgerPort, rngPort ports.RNGPort) *InferenceService {
	return &InferenceService{
		ledgerPort: ledgerPort,
		rngPort:    rngPort,
		logger:     logging.ForComponent("Engine"),
	}
}

// InferenceRequest defines the inputs for one deterministic inference run
type InferenceRequest struct {
	Design   hypothesis.Design
	Method   resample.Method
	Stat     statistic.Kind
	Reps     int
	Seed     int64
	RunID    core.RunID // optional, will be generated if empty
	Parallel bool
	Workers  int
}

// InferenceResult contains the complete output of an inference run
type InferenceResult struct {
	RunID       core.RunID     `json:"run_id"`
	Statistics  *table.Table   `json:"-"`
	Manifest    *run.Manifest  `json:"manifest"`
	Observed    core.Float     `json:"observed"`
	Summary     report.Summary `json:"summary"`
	Report      string         `json:"-"`
	Fingerprint core.Hash      `json:"fingerprint"`
	RuntimeMs   int64          `json:"runtime_ms"`
}

// ReplicateSummary records shape facts about generator output
type ReplicateSummary struct {
	RunID     core.RunID      `json:"run_id"`
	Method    resample.Method `json:"method"`
	Reps      int             `json:"reps"`
	Rows      int             `json:"rows"`
	BlockSize int             `json:"block_size"`
	Parallel  bool            `json:"parallel"`
}

// StatisticTableArtifact holds the per-replicate statistic values of a run
type StatisticTableArtifact struct {
	RunID      core.RunID     `json:"run_id"`
	Stat       statistic.Kind `json:"stat"`
	Replicates []int          `json:"replicates"`
	Values     []core.Float   `json:"values"`
	Observed   core.Float     `json:"observed"`
	Summary    report.Summary `json:"summary"`
}

// ReportArtifact holds the rendered markdown report of a run
type ReportArtifact struct {
	RunID    core.RunID `json:"run_id"`
	Markdown string     `json:"markdown"`
}

// Run executes one inference run with a complete audit trail
func (s *InferenceService) Run(ctx context.Context, req InferenceRequest) (*InferenceResult, error) {
	startTime := time.Now()

	// Generate run ID if not provided
	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	// Reject bad requests before anything lands in the ledger. Computing
	// the observed statistic over the raw design doubles as the shape
	// check: it exercises the same column paths the replicates will.
	if !resample.KnownMethod(req.Method) {
		return nil, core.NewInputError(fmt.Sprintf("unknown generation method %q", req.Method))
	}
	if req.Reps < 1 {
		return nil, core.NewInputError("reps must be at least 1")
	}
	observed, err := observedStatistic(req.Design, req.Stat)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting inference run %s (%s/%s, %d replicates, seed %d)",
		runID, req.Method, req.Stat, req.Reps, req.Seed)

	// Manifest lands first: no other artifact may exist for an unopened run
	manifest := run.NewManifest(runID, req.Design, req.Method, req.Stat, req.Reps, req.Seed, CodeVersion)
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	if err := s.ledgerPort.StoreArtifact(ctx, runID.String(), manifest.ToCoreArtifact()); err != nil {
		return nil, fmt.Errorf("failed to store run manifest: %w", err)
	}

	replicates, err := s.generate(ctx, runID, req)
	if err != nil {
		return nil, fmt.Errorf("replicate generation failed: %w", err)
	}

	summaryArtifact := core.Artifact{
		ID:   core.NewID(),
		Kind: core.ArtifactReplicateSummary,
		Payload: ReplicateSummary{
			RunID:     runID,
			Method:    replicates.Method,
			Reps:      replicates.Reps,
			Rows:      replicates.Table.NRows(),
			BlockSize: replicates.BlockSize(),
			Parallel:  req.Parallel,
		},
		CreatedAt: core.Now(),
	}
	if err := s.ledgerPort.StoreArtifact(ctx, runID.String(), summaryArtifact); err != nil {
		return nil, fmt.Errorf("failed to store replicate summary: %w", err)
	}

	statTable, err := statistic.Calculate(replicates, req.Stat)
	if err != nil {
		return nil, fmt.Errorf("statistic calculation failed: %w", err)
	}
	summary, err := report.Summarize(statTable)
	if err != nil {
		return nil, err
	}

	repCol, err := statTable.Int(resample.ReplicateColumn)
	if err != nil {
		return nil, err
	}
	valCol, err := statTable.Numeric(statistic.StatColumn)
	if err != nil {
		return nil, err
	}
	statArtifact := core.Artifact{
		ID:   core.NewID(),
		Kind: core.ArtifactStatisticTable,
		Payload: StatisticTableArtifact{
			RunID:      runID,
			Stat:       req.Stat,
			Replicates: repCol.Values,
			Values:     core.Floats(valCol.Values),
			Observed:   observed,
			Summary:    summary,
		},
		CreatedAt: core.Now(),
	}
	if err := s.ledgerPort.StoreArtifact(ctx, runID.String(), statArtifact); err != nil {
		return nil, fmt.Errorf("failed to store statistic table: %w", err)
	}

	markdown := report.RenderMarkdown(manifest, summary)
	reportArtifact := core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactReport,
		Payload:   ReportArtifact{RunID: runID, Markdown: markdown},
		CreatedAt: core.Now(),
	}
	if err := s.ledgerPort.StoreArtifact(ctx, runID.String(), reportArtifact); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	runtimeMs := time.Since(startTime).Milliseconds()
	s.logger.Info("Run %s completed: %d replicates in %dms", runID, statTable.NRows(), runtimeMs)

	return &InferenceResult{
		RunID:       runID,
		Statistics:  statTable,
		Manifest:    manifest,
		Observed:    observed,
		Summary:     summary,
		Report:      markdown,
		Fingerprint: manifest.Fingerprint.Fingerprint,
		RuntimeMs:   runtimeMs,
	}, nil
}

// generate runs the generation phase on a single seeded stream, or on
// order-indexed per-replicate streams when the request asks for parallelism
func (s *InferenceService) generate(ctx context.Context, runID core.RunID, req InferenceRequest) (*resample.Replicates, error) {
	if req.Parallel && req.Workers > 1 {
		s.logger.Debug("Generating %d replicates on %d workers", req.Reps, req.Workers)
		streams := func(rep int) (*rand.Rand, error) {
			return s.rngPort.ReplicateStream(ctx, runID.String(), rep, req.Seed)
		}
		return resample.GenerateParallel(ctx, req.Design, req.Reps, req.Method, streams, req.Workers)
	}

	stream, err := s.rngPort.SeededStream(ctx, "generate", req.Seed)
	if err != nil {
		return nil, err
	}
	return resample.Generate(req.Design, req.Reps, req.Method, stream)
}

// observedStatistic reduces the raw design table as a single implicit
// replicate, yielding the point estimate the replicate distribution is
// compared against
func observedStatistic(design hypothesis.Design, kind statistic.Kind) (core.Float, error) {
	observedTable, err := statistic.Calculate(resample.Ungrouped(design), kind)
	if err != nil {
		return 0, err
	}
	col, err := observedTable.Numeric(statistic.StatColumn)
	if err != nil {
		return 0, err
	}
	return core.Float(col.Values[0]), nil
}

// GetManifest returns the manifest that opened a run
func (s *InferenceService) GetManifest(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	return s.ledgerPort.GetRunManifest(ctx, runID)
}

// GetArtifacts returns every artifact a run produced, in append order
func (s *InferenceService) GetArtifacts(ctx context.Context, runID core.RunID) ([]core.Artifact, error) {
	if _, err := s.ledgerPort.GetRunManifest(ctx, runID); err != nil {
		return nil, err
	}
	return s.ledgerPort.GetArtifactsByRun(ctx, runID)
}

// GetReport replays the stored report for a run as markdown
func (s *InferenceService) GetReport(ctx context.Context, runID core.RunID) (string, error) {
	artifacts, err := s.GetArtifacts(ctx, runID)
	if err != nil {
		return "", err
	}
	for _, artifact := range artifacts {
		if artifact.Kind != core.ArtifactReport {
			continue
		}
		switch payload := artifact.Payload.(type) {
		case ReportArtifact:
			return payload.Markdown, nil
		case json.RawMessage:
			var stored ReportArtifact
			if err := json.Unmarshal(payload, &stored); err != nil {
				return "", fmt.Errorf("failed to unmarshal report artifact: %w", err)
			}
			return stored.Markdown, nil
		}
	}
	return "", fmt.Errorf("%w: report for run %s", core.ErrArtifactNotFound, runID)
}
