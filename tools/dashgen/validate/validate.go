// Package validate checks generated dashboards and rules for PromQL that
// does not parse or that references unknown metrics.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/prometheus/promql/parser"

	"github.com/donaldgifford/secondhand-client/tools/dashgen/rules"
)

// Result collects validation findings. Errors fail generation; warnings do
// not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether no errors were found.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Expr parses expr and checks that every selected metric is in known.
func Expr(expr string, known map[string]bool) []string {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return []string{fmt.Sprintf("parsing %q: %v", expr, err)}
	}

	var problems []string
	parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
		vs, ok := n.(*parser.VectorSelector)
		if !ok || vs.Name == "" {
			return nil
		}
		if !isKnown(vs.Name, known) {
			problems = append(problems, fmt.Sprintf("unknown metric %q in %q", vs.Name, expr))
		}
		return nil
	})
	return problems
}

// isKnown reports whether name is in known, either directly or as one of
// the _bucket, _sum and _count series of a known histogram.
func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if base, found := strings.CutSuffix(name, suffix); found && known[base] {
			return true
		}
	}
	return false
}

// Dashboard validates every query target of every panel in d.
func Dashboard(d dashboard.Dashboard, known map[string]bool) Result {
	var res Result
	for _, p := range d.Panels {
		switch {
		case p.Panel != nil:
			checkPanel(&res, *p.Panel, known)
		case p.RowPanel != nil:
			if len(p.RowPanel.Panels) == 0 {
				res.warnf("row %q has no panels", title(p.RowPanel.Title))
			}
			for _, inner := range p.RowPanel.Panels {
				checkPanel(&res, inner, known)
			}
		}
	}
	return res
}

func checkPanel(res *Result, p dashboard.Panel, known map[string]bool) {
	name := title(p.Title)
	if len(p.Targets) == 0 {
		res.warnf("panel %q has no targets", name)
	}
	for _, t := range p.Targets {
		expr, err := targetExpr(t)
		if err != nil {
			res.errorf("panel %q: %v", name, err)
			continue
		}
		if expr == "" {
			res.errorf("panel %q: target has no expression", name)
			continue
		}
		for _, problem := range Expr(expr, known) {
			res.errorf("panel %q: %s", name, problem)
		}
	}
}

// targetExpr extracts the PromQL expression from a panel target.
func targetExpr(t any) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encoding target: %w", err)
	}
	var q struct {
		Expr string `json:"expr"`
	}
	if err := json.Unmarshal(data, &q); err != nil {
		return "", fmt.Errorf("decoding target: %w", err)
	}
	return q.Expr, nil
}

// Rules validates the expressions of every rule in cr. Recording rule names
// must themselves be known so dashboards can reference them.
func Rules(cr rules.PrometheusRule, known map[string]bool) Result {
	var res Result
	for _, g := range cr.Spec.Groups {
		for _, r := range g.Rules {
			name := r.Record
			if name == "" {
				name = r.Alert
			}
			if r.Record != "" && !known[r.Record] {
				res.errorf("group %q: recording rule %q is not a known metric", g.Name, r.Record)
			}
			for _, problem := range Expr(r.Expr, known) {
				res.errorf("group %q rule %q: %s", g.Name, name, problem)
			}
		}
	}
	return res
}

func title(t *string) string {
	if t == nil {
		return "(untitled)"
	}
	return *t
}
