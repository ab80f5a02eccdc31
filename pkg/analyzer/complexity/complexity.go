// Package complexity computes cyclomatic complexity over lowered syntax trees.
package complexity

import "github.com/panbanda/codemetrics/pkg/syntax"

// Weights maps a node kind to its contribution to cyclomatic complexity.
// Binary operators are handled separately since only short-circuit
// operators count.
type Weights map[syntax.Kind]int

// DefaultWeights counts one for every branch, loop, switch form, catch
// clause and conditional expression.
func DefaultWeights() Weights {
	return Weights{
		syntax.KindIf:         1,
		syntax.KindFor:        1,
		syntax.KindForEach:    1,
		syntax.KindWhile:      1,
		syntax.KindDo:         1,
		syntax.KindSwitch:     1,
		syntax.KindSwitchExpr: 1,
		syntax.KindCatch:      1,
		syntax.KindTernary:    1,
	}
}

// shortCircuit lists the boolean operators that add a decision point.
var shortCircuit = map[string]bool{
	"&&": true,
	"||": true,
}

// Analyzer computes cyclomatic complexity.
type Analyzer struct {
	weights Weights
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWeights replaces the kind weight table.
func WithWeights(w Weights) Option {
	return func(a *Analyzer) {
		a.weights = w
	}
}

// New creates a new complexity analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cyclomatic returns 1 plus the number of decision points in body.
// Every descendant is visited, including nested lambdas. A nil body has
// complexity 1.
func (a *Analyzer) Cyclomatic(body *syntax.Node) int {
	count := 1
	syntax.Walk(body, func(n *syntax.Node) {
		count += a.weight(n)
	})
	return count
}

func (a *Analyzer) weight(n *syntax.Node) int {
	if n.Kind == syntax.KindBinary {
		if shortCircuit[n.Op] {
			return 1
		}
		return 0
	}
	return a.weights[n.Kind]
}

var defaultAnalyzer = New()

// Cyclomatic computes complexity with the default weights.
func Cyclomatic(body *syntax.Node) int {
	return defaultAnalyzer.Cyclomatic(body)
}
