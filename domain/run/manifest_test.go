package run

import (
	"testing"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/statistic"
	"goinfer/domain/table"
)

func TestFingerprint_Deterministic(t *testing.T) {
	// Golden test - same inputs produce identical fingerprints
	datasetHash := core.DatasetHash("test-dataset")
	planHash := core.PlanHash("test-plan")
	seed := int64(42)
	codeVersion := "1.0.0"

	// Generate fingerprint twice with identical inputs
	fp1 := NewFingerprint(datasetHash, planHash, seed, codeVersion)
	fp2 := NewFingerprint(datasetHash, planHash, seed, codeVersion)

	// Should be identical
	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}

	// Should contain all determinism parameters
	if fp1.DatasetHash != datasetHash {
		t.Errorf("DatasetHash mismatch: %s vs %s", fp1.DatasetHash, datasetHash)
	}
	if fp1.PlanHash != planHash {
		t.Errorf("PlanHash mismatch: %s vs %s", fp1.PlanHash, planHash)
	}
	if fp1.Seed != seed {
		t.Errorf("Seed mismatch: %d vs %d", fp1.Seed, seed)
	}
	if fp1.CodeVersion != codeVersion {
		t.Errorf("CodeVersion mismatch: %s vs %s", fp1.CodeVersion, codeVersion)
	}
}

func TestFingerprint_Unique(t *testing.T) {
	// Different inputs should produce different fingerprints
	base := NewFingerprint(
		core.DatasetHash("test-dataset"),
		core.PlanHash("test-plan"),
		42,
		"1.0.0",
	)

	// Change each parameter and verify fingerprint changes
	testCases := []struct {
		name string
		fp   Fingerprint
	}{
		{"different dataset", NewFingerprint(
			core.DatasetHash("different-dataset"), // changed
			core.PlanHash("test-plan"),
			42,
			"1.0.0",
		)},
		{"different plan", NewFingerprint(
			core.DatasetHash("test-dataset"),
			core.PlanHash("different-plan"), // changed
			42,
			"1.0.0",
		)},
		{"different seed", NewFingerprint(
			core.DatasetHash("test-dataset"),
			core.PlanHash("test-plan"),
			43, // changed
			"1.0.0",
		)},
		{"different code version", NewFingerprint(
			core.DatasetHash("test-dataset"),
			core.PlanHash("test-plan"),
			42,
			"1.0.1", // changed
		)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should be different for %s", tc.name)
			}
		})
	}
}

func testDesign(t *testing.T) hypothesis.Design {
	t.Helper()
	tbl, err := table.New(
		table.NewNumericColumn("score", []float64{1, 2, 3, 4}),
		table.NewFactorColumn("arm", []string{"t", "t", "c", "c"}),
	)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	design, err := hypothesis.NewDesign(tbl, "score", "arm", hypothesis.NullEqualMeans, nil)
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	return design
}

func TestManifest_Complete(t *testing.T) {
	// Verify determinism tuple is complete
	runID := core.RunID("test-run")
	design := testDesign(t)
	seed := int64(42)
	codeVersion := "1.0.0"

	manifest := NewManifest(runID, design, resample.MethodPermute,
		statistic.KindDiffInMeans, 1000, seed, codeVersion)

	// Verify all determinism fields are present
	if manifest.RunID != runID {
		t.Errorf("RunID not set correctly")
	}
	if manifest.DatasetHash != design.Table.Hash() {
		t.Errorf("DatasetHash not set correctly")
	}
	if manifest.Response != "score" || manifest.Group != "arm" {
		t.Errorf("column roles not carried: %s/%s", manifest.Response, manifest.Group)
	}
	if manifest.Null != hypothesis.NullEqualMeans {
		t.Errorf("Null not carried: %s", manifest.Null)
	}
	if manifest.Method != resample.MethodPermute {
		t.Errorf("Method not set correctly")
	}
	if manifest.Stat != statistic.KindDiffInMeans {
		t.Errorf("Stat not set correctly")
	}
	if manifest.Reps != 1000 {
		t.Errorf("Reps not set correctly")
	}
	if manifest.Seed != seed {
		t.Errorf("Seed not set correctly")
	}
	if manifest.CodeVersion != codeVersion {
		t.Errorf("CodeVersion not set correctly")
	}

	// Verify fingerprint is computed
	if manifest.Fingerprint.Fingerprint == "" {
		t.Errorf("Fingerprint not computed")
	}

	// Verify validation passes
	if err := manifest.Validate(); err != nil {
		t.Errorf("Manifest validation failed: %v", err)
	}

	// Verify storage conversion
	artifact := manifest.ToCoreArtifact()
	if artifact.Kind != core.ArtifactRunManifest {
		t.Errorf("wrong artifact kind: %s", artifact.Kind)
	}
	if artifact.Payload != manifest {
		t.Errorf("artifact payload must reference the manifest")
	}
}

func TestManifest_FingerprintTracksPlan(t *testing.T) {
	design := testDesign(t)

	base := NewManifest("run-1", design, resample.MethodPermute,
		statistic.KindDiffInMeans, 1000, 42, "1.0.0")

	otherStat := NewManifest("run-1", design, resample.MethodPermute,
		statistic.KindDiffInProps, 1000, 42, "1.0.0")
	if otherStat.Fingerprint.Fingerprint == base.Fingerprint.Fingerprint {
		t.Errorf("changing the statistic must change the fingerprint")
	}

	otherReps := NewManifest("run-1", design, resample.MethodPermute,
		statistic.KindDiffInMeans, 2000, 42, "1.0.0")
	if otherReps.Fingerprint.Fingerprint == base.Fingerprint.Fingerprint {
		t.Errorf("changing reps must change the fingerprint")
	}

	otherSeed := NewManifest("run-1", design, resample.MethodPermute,
		statistic.KindDiffInMeans, 1000, 43, "1.0.0")
	if otherSeed.Fingerprint.Fingerprint == base.Fingerprint.Fingerprint {
		t.Errorf("changing the seed must change the fingerprint")
	}
}

func TestManifest_Validate(t *testing.T) {
	design := testDesign(t)

	valid := NewManifest("run-1", design, resample.MethodBootstrap,
		statistic.KindMean, 10, 1, "1.0.0")
	if err := valid.Validate(); err != nil {
		t.Errorf("valid manifest rejected: %v", err)
	}

	missingRun := *valid
	missingRun.RunID = ""
	if err := missingRun.Validate(); err == nil {
		t.Errorf("empty run_id must fail validation")
	}

	zeroReps := *valid
	zeroReps.Reps = 0
	if err := zeroReps.Validate(); err == nil {
		t.Errorf("zero reps must fail validation")
	}

	noVersion := *valid
	noVersion.CodeVersion = ""
	if err := noVersion.Validate(); err == nil {
		t.Errorf("empty code_version must fail validation")
	}
}
