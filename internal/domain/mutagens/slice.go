package mutagens

import (
	"go/ast"
	"go/token"
	"strconv"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// visitSlice handles slice expressions with two independent mutation
// families: bound-side swaps for half-bounded slices, and range narrowing
// for slices whose upper endpoint is an integer literal. Fully-unbounded
// slices and non-literal upper bounds are not indexed. The capacity index of
// a 3-index slice is never changed.
func (w *Walker) visitSlice(n *ast.SliceExpr) {
	switch {
	case n.Low == nil && n.High != nil:
		w.sliceSwap(n, m.SliceUnboundLower)
	case n.High == nil && n.Low != nil:
		w.sliceSwap(n, m.SliceUnboundUpper)
	case n.Low != nil && n.High != nil:
		w.sliceRangeChange(n)
	}
}

// sliceSwap records a half-bounded slice under its current form and, on
// apply, rebuilds the expression in the mutated form: x[2:] <-> x[:2], or
// fully unbounded x[:].
func (w *Walker) sliceSwap(n *ast.SliceExpr, current m.Variant) {
	idx := w.locIndex(m.KindSliceUS, n, current)
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	bound := n.Low
	if bound == nil {
		bound = n.High
	}

	switch w.mutation {
	case m.SliceUnboundUpper:
		n.Low, n.High = bound, nil
	case m.SliceUnboundLower:
		n.Low, n.High = nil, bound
	case m.SliceUnbounded:
		n.Low, n.High = nil, nil
	}
}

// sliceRangeChange narrows a literal upper endpoint one step toward zero:
// x[1:5] becomes x[1:4], and a unary-minus literal upper moves the same way.
// The transform is its own substitute; the catalog maps these variants to
// themselves.
func (w *Walker) sliceRangeChange(n *ast.SliceExpr) {
	switch upper := n.High.(type) {
	case *ast.BasicLit:
		if upper.Kind != token.INT {
			return
		}

		idx := w.locIndex(m.KindSliceRC, n, m.SliceUPosToZero)
		w.record(idx)

		if w.isTarget(idx) && w.mutation == m.SliceUPosToZero {
			n.High = decrementedLit(upper)
		}

	case *ast.UnaryExpr:
		if upper.Op != token.SUB {
			return
		}

		lit, ok := upper.X.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return
		}

		idx := w.locIndex(m.KindSliceRC, n, m.SliceUNegToZero)
		w.record(idx)

		if w.isTarget(idx) && w.mutation == m.SliceUNegToZero {
			upper.X = decrementedLit(lit)
		}
	}
}

// decrementedLit returns a new integer literal one below the given one,
// reusing its position. A malformed literal is returned unchanged.
func decrementedLit(lit *ast.BasicLit) *ast.BasicLit {
	v, err := strconv.Atoi(lit.Value)
	if err != nil {
		return lit
	}

	return &ast.BasicLit{
		ValuePos: lit.ValuePos,
		Kind:     token.INT,
		Value:    strconv.Itoa(v - 1),
	}
}
