// Package mutagens implements the per-category node rules and the dual-mode
// AST walker they share. In scan mode the walker only records location
// indices; in apply mode it additionally rewrites the one node whose index
// equals the configured target. Discovery and mutation run the identical
// traversal, so a recorded index always locates the node it was computed
// from.
package mutagens

import (
	"go/ast"
	"go/token"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// Walker is the dual-mode visitor. Zero-value is not usable; construct with
// NewScanner or NewApplier.
type Walker struct {
	fset     *token.FileSet
	target   m.LocIndex
	mutation m.Variant
	readonly bool

	seen map[m.LocIndex]struct{}
	locs []m.LocIndex
}

// NewScanner returns a read-only walker that records mutable sites.
func NewScanner(fset *token.FileSet) *Walker {
	return &Walker{
		fset:     fset,
		readonly: true,
		seen:     make(map[m.LocIndex]struct{}),
	}
}

// NewApplier returns a walker that records sites and rewrites the node
// matching target with the supplied mutation.
func NewApplier(fset *token.FileSet, target m.LocIndex, mutation m.Variant) *Walker {
	return &Walker{
		fset:     fset,
		target:   target,
		mutation: mutation,
		seen:     make(map[m.LocIndex]struct{}),
	}
}

// Walk traverses the file and returns the recorded location indices in
// traversal order.
func (w *Walker) Walk(file *ast.File) []m.LocIndex {
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			return true
		}

		w.visit(n)

		return true
	})

	return w.locs
}

func (w *Walker) visit(n ast.Node) {
	switch node := n.(type) {
	case *ast.BinaryExpr:
		w.visitBinary(node)
	case *ast.AssignStmt:
		w.visitAugAssign(node)
	case *ast.IfStmt:
		w.visitIf(node)
	case *ast.Ident:
		w.visitNameConstant(node)
	case *ast.IndexExpr:
		w.visitIndex(node)
	case *ast.SliceExpr:
		w.visitSlice(node)
	}
}

// locIndex builds the identity for a node: kind tag, start and end position,
// and the node's current operator variant.
func (w *Walker) locIndex(kind string, n ast.Node, op m.Variant) m.LocIndex {
	start := w.fset.Position(n.Pos())
	end := w.fset.Position(n.End())

	return m.LocIndex{
		Kind:    kind,
		Line:    start.Line,
		Col:     start.Column,
		EndLine: end.Line,
		EndCol:  end.Column,
		Op:      op,
	}
}

func (w *Walker) record(idx m.LocIndex) {
	if _, ok := w.seen[idx]; ok {
		return
	}

	w.seen[idx] = struct{}{}
	w.locs = append(w.locs, idx)
}

// isTarget reports whether idx is the node to rewrite on this walk.
func (w *Walker) isTarget(idx m.LocIndex) bool {
	return !w.readonly && idx == w.target
}
