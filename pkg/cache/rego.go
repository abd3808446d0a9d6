package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/open-policy-agent/opa/v1/rego"
)

// regoGate evaluates data.persist against each candidate record. A policy
// returning {"allow": true} keeps the record; anything else drops it.
type regoGate struct {
	query *rego.PreparedEvalQuery
}

func newRegoGate(ctx context.Context, policyDir string) (*regoGate, error) {
	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return nil, goerr.New("no policy files found", goerr.V("dir", policyDir))
	}

	options := make([]func(*rego.Rego), 0, len(files)+1)
	options = append(options, rego.Query("data.persist"))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		options = append(options, rego.Module(file, string(data)))
	}

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare persist query")
	}

	return &regoGate{query: &prepared}, nil
}

func (g *regoGate) Allow(ctx context.Context, collection string, rec *model.VectorRecord) (bool, error) {
	input := map[string]any{
		"collection": collection,
		"kind":       string(rec.Kind),
		"text":       rec.Text,
		"importance": rec.Importance(),
		"quality":    rec.Quality(),
	}

	results, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, goerr.Wrap(err, "failed to evaluate persist policy")
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, nil
	}

	decision, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return false, nil
	}
	allow, _ := decision["allow"].(bool)
	return allow, nil
}
