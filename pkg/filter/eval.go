package filter

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/logging"
	"github.com/arthur-debert/sortnbackup/pkg/metadata"
)

// Diagnostic reports a predicate that failed to evaluate. The predicate
// is treated as false; the run continues.
type Diagnostic func(e metadata.Entry, predicate string, err error)

// Evaluator evaluates filter expressions against entries. Evaluation is
// short-circuit, left to right, and uses an explicit work stack so that
// arbitrarily nested configurations cannot overflow the call stack.
type Evaluator struct {
	logger zerolog.Logger
	evals  atomic.Int64

	// Diag, when set, receives every predicate failure.
	Diag Diagnostic
}

// NewEvaluator creates an evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{logger: logging.GetLogger("filter.evaluator")}
}

// PredicateEvals reports how many predicate leaves have been evaluated.
// Tests use this to pin short-circuit behavior.
func (ev *Evaluator) PredicateEvals() int64 {
	return ev.evals.Load()
}

type frame struct {
	expr *Expr
	next int
}

// Matches evaluates expr against the entry. A predicate failure counts
// as false for that leaf and is surfaced through Diag and the log, never
// as an abort.
func (ev *Evaluator) Matches(expr *Expr, e metadata.Entry, cache *metadata.Cache) bool {
	stack := []frame{{expr: expr}}
	result := false

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		switch f.expr.Op {
		case OpCatchAll:
			result = true
			stack = stack[:len(stack)-1]

		case OpPredicate:
			ev.evals.Add(1)
			ok, err := f.expr.Pred.Match(e, cache)
			if err != nil {
				ok = false
				ev.reportFailure(e, f.expr.Pred.Name(), err)
			}
			result = ok
			stack = stack[:len(stack)-1]

		case OpNot:
			if f.next == 0 {
				f.next = 1
				stack = append(stack, frame{expr: f.expr.Children[0]})
			} else {
				result = !result
				stack = stack[:len(stack)-1]
			}

		case OpAll:
			if f.next > 0 && !result {
				stack = stack[:len(stack)-1]
				continue
			}
			if f.next == len(f.expr.Children) {
				result = true
				stack = stack[:len(stack)-1]
				continue
			}
			child := f.expr.Children[f.next]
			f.next++
			stack = append(stack, frame{expr: child})

		case OpAny:
			if f.next > 0 && result {
				stack = stack[:len(stack)-1]
				continue
			}
			if f.next == len(f.expr.Children) {
				result = false
				stack = stack[:len(stack)-1]
				continue
			}
			child := f.expr.Children[f.next]
			f.next++
			stack = append(stack, frame{expr: child})
		}
	}

	return result
}

func (ev *Evaluator) reportFailure(e metadata.Entry, predicate string, err error) {
	// A file that simply is not an image is routine; everything else is
	// worth the operator's attention.
	evt := ev.logger.Warn()
	if errors.IsErrorCode(err, errors.ErrMetadataDecode) {
		evt = ev.logger.Debug()
	}
	evt.
		Str("source", e.Source).
		Str("path", e.RelPath).
		Str("predicate", predicate).
		Err(err).
		Msg("Predicate failed, treating as non-match")

	if ev.Diag != nil {
		ev.Diag(e, predicate, err)
	}
}
