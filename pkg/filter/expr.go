// Package filter implements the boolean filter expressions that decide
// which file group an entry belongs to. An expression is a combinator
// tree (all/any/not/catch_all) over predicates, evaluated short-circuit
// left to right against one entry.
package filter

// Op discriminates the expression tree nodes.
type Op int

const (
	OpAll Op = iota
	OpAny
	OpNot
	OpCatchAll
	OpPredicate
)

// Expr is one node of a filter expression tree. Combinator nodes use
// Children; predicate leaves use Pred.
type Expr struct {
	Op       Op
	Children []*Expr
	Pred     Predicate
}

// All matches when every child matches. An empty list matches.
func All(children ...*Expr) *Expr {
	return &Expr{Op: OpAll, Children: children}
}

// Any matches when at least one child matches. An empty list never matches.
func Any(children ...*Expr) *Expr {
	return &Expr{Op: OpAny, Children: children}
}

// Not inverts its child.
func Not(child *Expr) *Expr {
	return &Expr{Op: OpNot, Children: []*Expr{child}}
}

// CatchAll always matches.
func CatchAll() *Expr {
	return &Expr{Op: OpCatchAll}
}

// Pred wraps a predicate leaf.
func Pred(p Predicate) *Expr {
	return &Expr{Op: OpPredicate, Pred: p}
}
