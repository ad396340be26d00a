package httpapi

import (
	"encoding/json"
	"fmt"

	"goinfer/app"
	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/run"
	"goinfer/domain/statistic"
	"goinfer/domain/table"
	"goinfer/internal/report"
)

// runRequest is the wire form of one inference run. Column order is
// preserved from the JSON array; it matters for independence permutation,
// which shuffles the first column positionally.
type runRequest struct {
	Columns  []columnSpec           `json:"columns"`
	Response string                 `json:"response"`
	Group    string                 `json:"group,omitempty"`
	Null     string                 `json:"null,omitempty"`
	Point    []hypothesis.LevelProb `json:"point,omitempty"`
	Method   string                 `json:"method,omitempty"`
	Stat     string                 `json:"stat"`
	Reps     int                    `json:"reps,omitempty"`
	Seed     int64                  `json:"seed"`
	Parallel bool                   `json:"parallel,omitempty"`
	Workers  int                    `json:"workers,omitempty"`
}

// columnSpec carries one column. All-number values build a numeric column,
// all-string values a factor; levels (optional) fix the factor level order
// instead of first-seen order.
type columnSpec struct {
	Name   string            `json:"name"`
	Values []json.RawMessage `json:"values"`
	Levels []string          `json:"levels,omitempty"`
}

// toInferenceRequest validates the wire form and builds the service request
func (req runRequest) toInferenceRequest() (app.InferenceRequest, error) {
	if len(req.Columns) == 0 {
		return app.InferenceRequest{}, core.NewInputError("request declares no columns")
	}

	cols := make([]table.Column, len(req.Columns))
	for i, spec := range req.Columns {
		col, err := spec.toColumn()
		if err != nil {
			return app.InferenceRequest{}, err
		}
		cols[i] = col
	}
	tbl, err := table.New(cols...)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	null, err := hypothesis.ParseNull(req.Null)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	var point hypothesis.PointMass
	if len(req.Point) > 0 {
		point, err = hypothesis.NewPointMass(req.Point...)
		if err != nil {
			return app.InferenceRequest{}, err
		}
	}

	design, err := hypothesis.NewDesign(tbl, req.Response, req.Group, null, point)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	stat, err := statistic.ParseKind(req.Stat)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	method := resample.Method(req.Method)
	if req.Method == "" {
		method = resample.MethodBootstrap
	}
	reps := req.Reps
	if reps == 0 {
		reps = 1
	}

	return app.InferenceRequest{
		Design:   design,
		Method:   method,
		Stat:     stat,
		Reps:     reps,
		Seed:     req.Seed,
		Parallel: req.Parallel,
		Workers:  req.Workers,
	}, nil
}

// toColumn decides the column kind from the JSON value types
func (spec columnSpec) toColumn() (table.Column, error) {
	if spec.Name == "" {
		return nil, core.NewInputError("column without a name")
	}
	if len(spec.Values) == 0 {
		return nil, core.NewInputError(fmt.Sprintf("column %q has no values", spec.Name))
	}

	if len(spec.Levels) > 0 || isStringValue(spec.Values[0]) {
		labels := make([]string, len(spec.Values))
		for i, raw := range spec.Values {
			if err := json.Unmarshal(raw, &labels[i]); err != nil {
				return nil, core.NewInputError(fmt.Sprintf(
					"column %q mixes strings and other values", spec.Name))
			}
		}
		if len(spec.Levels) > 0 {
			return table.NewFactorColumnWithLevels(spec.Name, labels, spec.Levels)
		}
		return table.NewFactorColumn(spec.Name, labels), nil
	}

	values := make([]float64, len(spec.Values))
	for i, raw := range spec.Values {
		if err := json.Unmarshal(raw, &values[i]); err != nil {
			return nil, core.NewInputError(fmt.Sprintf(
				"column %q mixes numbers and other values", spec.Name))
		}
	}
	return table.NewNumericColumn(spec.Name, values), nil
}

func isStringValue(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}

// runResponse is the wire form of a completed run
type runResponse struct {
	RunID       core.RunID     `json:"run_id"`
	Stat        statistic.Kind `json:"stat"`
	Observed    core.Float     `json:"observed"`
	Replicates  []int          `json:"replicates"`
	Values      []core.Float   `json:"values"`
	Summary     report.Summary `json:"summary"`
	Fingerprint core.Hash      `json:"fingerprint"`
	RuntimeMs   int64          `json:"runtime_ms"`
	Manifest    *run.Manifest  `json:"manifest"`
}

func newRunResponse(result *app.InferenceResult) runResponse {
	resp := runResponse{
		RunID:       result.RunID,
		Stat:        result.Manifest.Stat,
		Observed:    result.Observed,
		Summary:     result.Summary,
		Fingerprint: result.Fingerprint,
		RuntimeMs:   result.RuntimeMs,
		Manifest:    result.Manifest,
	}
	if repCol, err := result.Statistics.Int(resample.ReplicateColumn); err == nil {
		resp.Replicates = repCol.Values
	}
	if valCol, err := result.Statistics.Numeric(statistic.StatColumn); err == nil {
		resp.Values = core.Floats(valCol.Values)
	}
	return resp
}

type artifactsResponse struct {
	RunID     core.RunID      `json:"run_id"`
	Artifacts []core.Artifact `json:"artifacts"`
	Count     int             `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
