// Package postgres persists the artifact ledger. Artifacts are append-only
// rows with JSONB payloads; runs are indexed by the manifest that opens
// them, so a run without a stored manifest does not exist.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"goinfer/domain/core"
	"goinfer/domain/run"
	"goinfer/ports"
)

// ledgerRepository implements the LedgerPort interface
type ledgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *sqlx.DB) ports.LedgerPort {
	return &ledgerRepository{db: db}
}

// EnsureSchema creates the ledger tables and indexes if they do not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		manifest JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload JSONB NOT NULL,
		seq BIGSERIAL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run_id ON artifacts (run_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_kind ON artifacts (kind);
	CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs (fingerprint);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

// StoreArtifact appends an artifact. Storing a run manifest also registers
// the run itself; the first manifest for a run ID wins.
func (r *ledgerRepository) StoreArtifact(ctx context.Context, runID string, artifact core.Artifact) error {
	payloadJSON, err := json.Marshal(artifact.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact payload: %w", err)
	}

	query := `INSERT INTO artifacts (id, run_id, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		artifact.ID.String(), runID, string(artifact.Kind), payloadJSON, artifact.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to store artifact: %w", err)
	}

	if artifact.Kind == core.ArtifactRunManifest {
		if manifest, ok := artifact.Payload.(*run.Manifest); ok {
			if err := r.registerRun(ctx, runID, manifest, payloadJSON); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *ledgerRepository) registerRun(ctx context.Context, runID string, manifest *run.Manifest, manifestJSON []byte) error {
	query := `INSERT INTO runs (id, fingerprint, manifest, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		runID, manifest.Fingerprint.Fingerprint.String(), manifestJSON, manifest.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to register run: %w", err)
	}
	return nil
}

// ListArtifacts queries artifacts in append order with optional filters
func (r *ledgerRepository) ListArtifacts(ctx context.Context, filters ports.ArtifactFilters) ([]core.Artifact, error) {
	query := `SELECT id, kind, payload, created_at FROM artifacts`

	var conds []string
	var args []interface{}
	if filters.RunID != nil {
		args = append(args, filters.RunID.String())
		conds = append(conds, fmt.Sprintf("run_id = $%d", len(args)))
	}
	if filters.Kind != nil {
		args = append(args, string(*filters.Kind))
		conds = append(conds, fmt.Sprintf("kind = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filters.Offset > 0 {
		args = append(args, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []core.Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}

	return artifacts, nil
}

func scanArtifact(rows *sql.Rows) (core.Artifact, error) {
	var (
		id          string
		kind        string
		payloadJSON []byte
		createdAt   time.Time
	)
	if err := rows.Scan(&id, &kind, &payloadJSON, &createdAt); err != nil {
		return core.Artifact{}, fmt.Errorf("failed to scan artifact: %w", err)
	}
	return core.Artifact{
		ID:        core.ID(id),
		Kind:      core.ArtifactKind(kind),
		Payload:   json.RawMessage(payloadJSON),
		CreatedAt: core.NewTimestamp(createdAt),
	}, nil
}

// GetArtifact retrieves a single artifact by ID
func (r *ledgerRepository) GetArtifact(ctx context.Context, artifactID core.ArtifactID) (*core.Artifact, error) {
	query := `SELECT id, kind, payload, created_at FROM artifacts WHERE id = $1`

	var (
		id          string
		kind        string
		payloadJSON []byte
		createdAt   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, artifactID.String()).Scan(&id, &kind, &payloadJSON, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrArtifactNotFound, artifactID)
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	return &core.Artifact{
		ID:        core.ID(id),
		Kind:      core.ArtifactKind(kind),
		Payload:   json.RawMessage(payloadJSON),
		CreatedAt: core.NewTimestamp(createdAt),
	}, nil
}

// GetArtifactsByRun retrieves all artifacts for a run in append order
func (r *ledgerRepository) GetArtifactsByRun(ctx context.Context, runID core.RunID) ([]core.Artifact, error) {
	id := runID
	return r.ListArtifacts(ctx, ports.ArtifactFilters{RunID: &id})
}

// GetArtifactsByKind retrieves artifacts of one kind
func (r *ledgerRepository) GetArtifactsByKind(ctx context.Context, kind core.ArtifactKind, limit int) ([]core.Artifact, error) {
	return r.ListArtifacts(ctx, ports.ArtifactFilters{Kind: &kind, Limit: limit})
}

// GetRunManifest retrieves and decodes the manifest that opened a run
func (r *ledgerRepository) GetRunManifest(ctx context.Context, runID core.RunID) (*run.Manifest, error) {
	query := `SELECT manifest FROM runs WHERE id = $1`

	var manifestJSON []byte
	err := r.db.QueryRowContext(ctx, query, runID.String()).Scan(&manifestJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run manifest: %w", err)
	}

	var manifest run.Manifest
	if err := json.Unmarshal(manifestJSON, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run manifest: %w", err)
	}

	return &manifest, nil
}
