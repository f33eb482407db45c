// Package model defines the data structures for mutation testing.
package model

import "fmt"

// Variant is a single interchangeable operator or value within an operator
// group. Operator variants use the Go token spelling ("+", "<=", "&&"),
// value variants use the literal itself ("true", "nil"), and forms that
// overlap the plain operator token space use synthetic tags
// ("AugAssign_Add", "If_True", "Index_NumPos").
type Variant string

// Operator variants for binary, bitwise, shift, boolean and comparison sites.
const (
	OpAdd Variant = "+"
	OpSub Variant = "-"
	OpMul Variant = "*"
	OpDiv Variant = "/"
	OpMod Variant = "%"

	OpBitAnd    Variant = "&"
	OpBitOr     Variant = "|"
	OpBitXor    Variant = "^"
	OpBitAndNot Variant = "&^"

	OpShiftLeft  Variant = "<<"
	OpShiftRight Variant = ">>"

	OpLogicalAnd Variant = "&&"
	OpLogicalOr  Variant = "||"

	OpEqual        Variant = "=="
	OpNotEqual     Variant = "!="
	OpLess         Variant = "<"
	OpLessEqual    Variant = "<="
	OpGreater      Variant = ">"
	OpGreaterEqual Variant = ">="
)

// Synthetic variants. Augmented assignment overlaps the binary operator token
// space and is disambiguated with string tags; branch tests, index literals
// and slice forms have no operator token at all.
const (
	AugAssignAdd  Variant = "AugAssign_Add"
	AugAssignSub  Variant = "AugAssign_Sub"
	AugAssignMult Variant = "AugAssign_Mult"
	AugAssignDiv  Variant = "AugAssign_Div"

	IfTrue      Variant = "If_True"
	IfFalse     Variant = "If_False"
	IfStatement Variant = "If_Statement"

	ConstTrue  Variant = "true"
	ConstFalse Variant = "false"
	ConstNil   Variant = "nil"

	IndexNumPos  Variant = "Index_NumPos"
	IndexNumZero Variant = "Index_NumZero"
	IndexNumNeg  Variant = "Index_NumNeg"

	SliceUnboundUpper Variant = "Slice_UnboundUpper"
	SliceUnboundLower Variant = "Slice_UnboundLower"
	SliceUnbounded    Variant = "Slice_Unbounded"

	SliceUPosToZero Variant = "Slice_UPosToZero"
	SliceUNegToZero Variant = "Slice_UNegToZero"
)

// Node kind tags carried by LocIndex. Each kind maps to exactly one operator
// group in the catalog.
const (
	KindAugAssign    = "AugAssign"
	KindBinOp        = "BinOp"
	KindBinOpBC      = "BinOpBC"
	KindBinOpBS      = "BinOpBS"
	KindBoolOp       = "BoolOp"
	KindCompare      = "Compare"
	KindIf           = "If"
	KindIndex        = "Index"
	KindNameConstant = "NameConstant"
	KindSliceUS      = "SliceUS"
	KindSliceRC      = "SliceRC"
)

// LocIndex identifies one mutable syntactic position in a parsed file.
// It is a value-equal key: the same traversal that records a LocIndex in scan
// mode must locate the identical node in apply mode, so indexing and mutation
// share one addressing scheme. Immutable once created.
type LocIndex struct {
	Kind    string  `yaml:"kind"`
	Line    int     `yaml:"line"`
	Col     int     `yaml:"col"`
	EndLine int     `yaml:"end_line"`
	EndCol  int     `yaml:"end_col"`
	Op      Variant `yaml:"op"`
}

// String renders the index in the file:line:col form used in logs and reports.
func (l LocIndex) String() string {
	return fmt.Sprintf("%s(%s) %d:%d", l.Kind, l.Op, l.Line, l.Col)
}
