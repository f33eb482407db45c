package domain

import (
	"slices"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// OperatorGroup is one set of mutually substitutable operators or values with
// its display name and 2-letter category code.
type OperatorGroup struct {
	Name     string
	Desc     string
	Category string
	Variants []m.Variant
}

// categoryByKind maps a LocIndex node kind to its 2-letter category code.
var categoryByKind = map[string]string{
	m.KindAugAssign:    "aa",
	m.KindBinOp:        "bn",
	m.KindBinOpBC:      "bc",
	m.KindBinOpBS:      "bs",
	m.KindBoolOp:       "bl",
	m.KindCompare:      "cp",
	m.KindIf:           "if",
	m.KindIndex:        "ix",
	m.KindNameConstant: "nc",
	m.KindSliceUS:      "su",
	m.KindSliceRC:      "sr",
}

// catalog is the static table of compatible operation sets. Built once at
// startup, never mutated; callers receive copies of the variant slices.
var catalog = []OperatorGroup{
	{
		Name:     "AugAssign",
		Desc:     "Augmented assignment e.g. += -= /= *=",
		Category: "aa",
		Variants: []m.Variant{m.AugAssignAdd, m.AugAssignSub, m.AugAssignMult, m.AugAssignDiv},
	},
	{
		Name:     "BinOp",
		Desc:     "Binary operations e.g. + - * / %",
		Category: "bn",
		Variants: []m.Variant{m.OpAdd, m.OpSub, m.OpMul, m.OpDiv, m.OpMod},
	},
	{
		Name:     "BinOp Bit Comparison",
		Desc:     "Bitwise operations e.g. x & y, x | y, x ^ y, x &^ y",
		Category: "bc",
		Variants: []m.Variant{m.OpBitAnd, m.OpBitOr, m.OpBitXor, m.OpBitAndNot},
	},
	{
		Name:     "BinOp Bit Shifts",
		Desc:     "Bitwise shift operations e.g. << >>",
		Category: "bs",
		Variants: []m.Variant{m.OpShiftLeft, m.OpShiftRight},
	},
	{
		Name:     "BoolOp",
		Desc:     "Boolean connective operations e.g. && ||",
		Category: "bl",
		Variants: []m.Variant{m.OpLogicalAnd, m.OpLogicalOr},
	},
	{
		Name:     "Compare",
		Desc:     "Comparison operations e.g. == != < <= > >=",
		Category: "cp",
		Variants: []m.Variant{m.OpEqual, m.OpNotEqual, m.OpLess, m.OpLessEqual, m.OpGreater, m.OpGreaterEqual},
	},
	{
		Name:     "If",
		Desc:     "If statement tests e.g. original statement, true, false",
		Category: "if",
		Variants: []m.Variant{m.IfTrue, m.IfFalse, m.IfStatement},
	},
	{
		Name:     "Index",
		Desc:     "Integer literal index values e.g. i[-1], i[0], i[1]",
		Category: "ix",
		Variants: []m.Variant{m.IndexNumPos, m.IndexNumZero, m.IndexNumNeg},
	},
	{
		Name:     "NameConstant",
		Desc:     "Named constant mutations e.g. true, false, nil",
		Category: "nc",
		Variants: []m.Variant{m.ConstTrue, m.ConstFalse, m.ConstNil},
	},
	{
		Name:     "Slice Unbounded Swap",
		Desc:     "Swap slice bound sides, x[2:] (unbound upper) to x[:2] (unbound lower)",
		Category: "su",
		Variants: []m.Variant{m.SliceUnboundUpper, m.SliceUnboundLower, m.SliceUnbounded},
	},
	{
		Name:     "Slice Range Change",
		Desc:     "Move a literal upper bound one step toward zero e.g. x[1:5] to x[1:4]",
		Category: "sr",
		Variants: []m.Variant{m.SliceUPosToZero, m.SliceUNegToZero},
	},
}

// Catalog returns the full table of operator groups.
func Catalog() []OperatorGroup {
	groups := make([]OperatorGroup, len(catalog))
	for i, g := range catalog {
		g.Variants = slices.Clone(g.Variants)
		groups[i] = g
	}

	return groups
}

// CategoryCode returns the 2-letter code for a LocIndex node kind.
func CategoryCode(kind string) (string, bool) {
	code, ok := categoryByKind[kind]
	return code, ok
}

// ValidCategoryCodes returns the sorted set of all known category codes.
func ValidCategoryCodes() []string {
	codes := make([]string, 0, len(categoryByKind))
	for _, code := range categoryByKind {
		codes = append(codes, code)
	}

	slices.Sort(codes)

	return codes
}

// ValidateCategoryCodes checks a filter-code set against the catalog.
func ValidateCategoryCodes(codes []string) error {
	valid := ValidCategoryCodes()
	for _, code := range codes {
		if !slices.Contains(valid, code) {
			return &ConfigurationError{
				Reason: "unknown category code " + code,
			}
		}
	}

	return nil
}

// SubstitutesFor returns the operators a site may be mutated into: its
// group's variant set minus the site's own operator. The slice range-change
// variants are self-referential (the transform, not a different name, is the
// mutation), and If_Statement is the default bucket for branch tests and is
// never offered as a target.
func SubstitutesFor(op m.Variant) []m.Variant {
	if op == m.SliceUPosToZero || op == m.SliceUNegToZero {
		return []m.Variant{op}
	}

	for _, group := range catalog {
		if !slices.Contains(group.Variants, op) {
			continue
		}

		subs := make([]m.Variant, 0, len(group.Variants)-1)
		for _, v := range group.Variants {
			if v == op || v == m.IfStatement {
				continue
			}

			subs = append(subs, v)
		}

		return subs
	}

	return nil
}

// ValidMutationsForCategory returns every variant reachable within the given
// category codes, used to validate a requested mutation against its target's
// category.
func ValidMutationsForCategory(code string) []m.Variant {
	for _, group := range catalog {
		if group.Category == code {
			return slices.Clone(group.Variants)
		}
	}

	return nil
}
