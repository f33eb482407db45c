package mutagens

import (
	"go/ast"
	"go/token"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// binaryKinds classifies binary operator tokens into the catalog node kinds.
// Tokens outside this table (e.g. string concatenation is still ADD and is
// covered; channel ops are not binary exprs) are not mutable sites.
var binaryKinds = map[token.Token]string{
	token.ADD: m.KindBinOp,
	token.SUB: m.KindBinOp,
	token.MUL: m.KindBinOp,
	token.QUO: m.KindBinOp,
	token.REM: m.KindBinOp,

	token.AND:     m.KindBinOpBC,
	token.OR:      m.KindBinOpBC,
	token.XOR:     m.KindBinOpBC,
	token.AND_NOT: m.KindBinOpBC,

	token.SHL: m.KindBinOpBS,
	token.SHR: m.KindBinOpBS,

	token.LAND: m.KindBoolOp,
	token.LOR:  m.KindBoolOp,

	token.EQL: m.KindCompare,
	token.NEQ: m.KindCompare,
	token.LSS: m.KindCompare,
	token.LEQ: m.KindCompare,
	token.GTR: m.KindCompare,
	token.GEQ: m.KindCompare,
}

var operatorTokens = map[m.Variant]token.Token{
	m.OpAdd: token.ADD,
	m.OpSub: token.SUB,
	m.OpMul: token.MUL,
	m.OpDiv: token.QUO,
	m.OpMod: token.REM,

	m.OpBitAnd:    token.AND,
	m.OpBitOr:     token.OR,
	m.OpBitXor:    token.XOR,
	m.OpBitAndNot: token.AND_NOT,

	m.OpShiftLeft:  token.SHL,
	m.OpShiftRight: token.SHR,

	m.OpLogicalAnd: token.LAND,
	m.OpLogicalOr:  token.LOR,

	m.OpEqual:        token.EQL,
	m.OpNotEqual:     token.NEQ,
	m.OpLess:         token.LSS,
	m.OpLessEqual:    token.LEQ,
	m.OpGreater:      token.GTR,
	m.OpGreaterEqual: token.GEQ,
}

// OperatorToken resolves an operator variant back to its Go token.
func OperatorToken(v m.Variant) (token.Token, bool) {
	tok, ok := operatorTokens[v]
	return tok, ok
}

// visitBinary handles binary arithmetic, bitwise, shift, boolean connective
// and comparison operators. The substitution swaps the operator token only.
// Nested comparisons like (a < b) == c parse as separate binary nodes, each
// addressed independently.
func (w *Walker) visitBinary(n *ast.BinaryExpr) {
	kind, ok := binaryKinds[n.Op]
	if !ok {
		return
	}

	idx := w.locIndex(kind, n, m.Variant(n.Op.String()))
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	if tok, ok := OperatorToken(w.mutation); ok {
		n.Op = tok
	}
}

// augAssignTags maps the recognized augmented-assignment tokens to their
// synthetic variant tags. The augmented form shares the binary operator type
// space, so sites are keyed on string tags instead of raw tokens. Any other
// assignment operator (%=, &=, <<=, ...) is left untouched and not indexed.
var augAssignTags = map[token.Token]m.Variant{
	token.ADD_ASSIGN: m.AugAssignAdd,
	token.SUB_ASSIGN: m.AugAssignSub,
	token.MUL_ASSIGN: m.AugAssignMult,
	token.QUO_ASSIGN: m.AugAssignDiv,
}

var augAssignTokens = map[m.Variant]token.Token{
	m.AugAssignAdd:  token.ADD_ASSIGN,
	m.AugAssignSub:  token.SUB_ASSIGN,
	m.AugAssignMult: token.MUL_ASSIGN,
	m.AugAssignDiv:  token.QUO_ASSIGN,
}

func (w *Walker) visitAugAssign(n *ast.AssignStmt) {
	tag, ok := augAssignTags[n.Tok]
	if !ok {
		return
	}

	idx := w.locIndex(m.KindAugAssign, n, tag)
	w.record(idx)

	if !w.isTarget(idx) {
		return
	}

	if tok, ok := augAssignTokens[w.mutation]; ok {
		n.Tok = tok
	}
}
