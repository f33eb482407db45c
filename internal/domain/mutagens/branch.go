package mutagens

import (
	"go/ast"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// visitIf handles conditional-branch test expressions. A test that already is
// a literal boolean is keyed on that value so it can be flipped in place; any
// other test falls into the If_Statement default bucket, which the catalog
// never offers as a mutation target.
func (w *Walker) visitIf(n *ast.IfStmt) {
	variant := m.IfStatement

	if ident, ok := n.Cond.(*ast.Ident); ok {
		switch ident.Name {
		case "true":
			variant = m.IfTrue
		case "false":
			variant = m.IfFalse
		}
	}

	idx := w.locIndex(m.KindIf, n, variant)
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	switch w.mutation {
	case m.IfTrue:
		n.Cond = &ast.Ident{NamePos: n.Cond.Pos(), Name: "true"}
	case m.IfFalse:
		n.Cond = &ast.Ident{NamePos: n.Cond.Pos(), Name: "false"}
	}
}

// visitNameConstant handles the literal constants true, false and nil, keyed
// on the literal's own value. The substitution replaces the value directly.
func (w *Walker) visitNameConstant(n *ast.Ident) {
	switch n.Name {
	case "true", "false", "nil":
	default:
		return
	}

	idx := w.locIndex(m.KindNameConstant, n, m.Variant(n.Name))
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	switch w.mutation {
	case m.ConstTrue, m.ConstFalse, m.ConstNil:
		n.Name = string(w.mutation)
	}
}
