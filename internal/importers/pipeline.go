package importers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

// Stage is a named group of operations. Plan is called right before the
// stage runs, after every earlier stage has been drained.
type Stage struct {
	Name string
	Plan func(ctx context.Context) ([]batch.Operation, error)
}

type StageResult struct {
	Name  string      `json:"name"`
	Tally batch.Tally `json:"tally"`
}

// Result is the outcome of importing one document.
type Result struct {
	Dialect Dialect       `json:"dialect"`
	Tally   batch.Tally   `json:"tally"`
	Stages  []StageResult `json:"stages,omitempty"`
}

// Recognized is false only for documents matching no dialect. A recognized
// document with zero records is still recognized.
func (r Result) Recognized() bool {
	return r.Dialect != DialectUnrecognized
}

// StagePlan summarizes what a stage would do, for dry runs.
type StagePlan struct {
	Name       string         `json:"name"`
	Operations int            `json:"operations"`
	ByKind     map[string]int `json:"byKind"`
}

// Pipeline handles the common import workflow:
// detect → pick importer → plan stage → run stage, one stage at a time.
type Pipeline struct {
	runner *batch.Runner
	deps   Deps
}

func NewPipeline(runner *batch.Runner, deps Deps) *Pipeline {
	deps = deps.withDefaults()
	if runner == nil {
		runner = batch.NewRunner(batch.WithLogger(deps.Log))
	}
	return &Pipeline{runner: runner, deps: deps}
}

// Import detects the document's dialect and applies it. Failed records are
// counted in the result. An error is returned only when a stage cannot be
// planned or ctx is done; the result then holds what already ran.
func (p *Pipeline) Import(ctx context.Context, doc *xmldoc.Node) (Result, error) {
	dialect := Detect(doc)
	result := Result{Dialect: dialect, Tally: batch.NewTally()}

	importer, ok := ForDialect(dialect, p.deps)
	if !ok {
		p.deps.Log.Warn("XML document matches no known format")
		return result, nil
	}

	for _, stage := range importer.Stages(doc) {
		ops, err := stage.Plan(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to plan stage %s: %w", stage.Name, err)
		}

		log := p.deps.Log.WithFields(logrus.Fields{
			"dialect": dialect.String(),
			"stage":   stage.Name,
		})
		log.WithField("operations", len(ops)).Debug("Running import stage")

		tally, err := p.runner.Run(ctx, ops)
		result.Stages = append(result.Stages, StageResult{Name: stage.Name, Tally: tally})
		result.Tally = result.Tally.Add(tally)
		if err != nil {
			return result, err
		}

		log.WithFields(logrus.Fields{
			"ok":      tally.OK,
			"fail":    tally.Fail,
			"skipped": tally.Skipped,
		}).Info("Import stage finished")
	}

	return result, nil
}

// Plan detects the dialect and plans every stage against current state
// without applying anything. Later stages do not see what earlier ones
// would have created.
func (p *Pipeline) Plan(ctx context.Context, doc *xmldoc.Node) (Dialect, []StagePlan, error) {
	dialect := Detect(doc)
	importer, ok := ForDialect(dialect, p.deps)
	if !ok {
		return dialect, nil, nil
	}

	var plans []StagePlan
	for _, stage := range importer.Stages(doc) {
		ops, err := stage.Plan(ctx)
		if err != nil {
			return dialect, plans, fmt.Errorf("failed to plan stage %s: %w", stage.Name, err)
		}
		plan := StagePlan{Name: stage.Name, Operations: len(ops), ByKind: make(map[string]int)}
		for _, op := range ops {
			plan.ByKind[op.Kind()]++
		}
		plans = append(plans, plan)
	}
	return dialect, plans, nil
}
