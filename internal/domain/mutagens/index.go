package mutagens

import (
	"go/ast"
	"go/token"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// visitIndex handles index expressions with integer literals, classified by
// sign into negative, zero and positive buckets so sign-flip and zero-edge
// mutations are distinguishable. Non-literal indices are not mutable sites.
func (w *Walker) visitIndex(n *ast.IndexExpr) {
	variant, ok := classifyIndex(n.Index)
	if !ok {
		return
	}

	idx := w.locIndex(m.KindIndex, n.Index, variant)
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	if repl := indexReplacement(w.mutation, n.Index.Pos()); repl != nil {
		n.Index = repl
	}
}

// classifyIndex buckets an index expression: an integer literal is zero or
// positive, a unary minus over an integer literal is negative.
func classifyIndex(expr ast.Expr) (m.Variant, bool) {
	switch node := expr.(type) {
	case *ast.BasicLit:
		if node.Kind != token.INT {
			return "", false
		}

		if node.Value == "0" {
			return m.IndexNumZero, true
		}

		return m.IndexNumPos, true

	case *ast.UnaryExpr:
		if node.Op != token.SUB {
			return "", false
		}

		if lit, ok := node.X.(*ast.BasicLit); ok && lit.Kind == token.INT {
			return m.IndexNumNeg, true
		}
	}

	return "", false
}

// indexReplacement builds the canonical literal for each index bucket:
// 1 for positive, 0 for zero, -1 for negative.
func indexReplacement(mutation m.Variant, pos token.Pos) ast.Expr {
	switch mutation {
	case m.IndexNumPos:
		return &ast.BasicLit{ValuePos: pos, Kind: token.INT, Value: "1"}
	case m.IndexNumZero:
		return &ast.BasicLit{ValuePos: pos, Kind: token.INT, Value: "0"}
	case m.IndexNumNeg:
		return &ast.UnaryExpr{
			OpPos: pos,
			Op:    token.SUB,
			X:     &ast.BasicLit{ValuePos: pos, Kind: token.INT, Value: "1"},
		}
	default:
		return nil
	}
}
