package domain

import (
	"context"
	"fmt"
	"testing"

	m "github.com/EvanKepner/mutatest/internal/model"
)

func makeSpace(n int) []GenomeTarget {
	space := make([]GenomeTarget, n)
	for i := range space {
		space[i] = GenomeTarget{
			SourceFile: m.Path(fmt.Sprintf("file%02d.go", i)),
			Loc:        m.LocIndex{Kind: m.KindBinOp, Line: i + 1, Col: 1, Op: m.OpAdd},
		}
	}

	return space
}

func TestSampleLocations_RejectsNonPositive(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := SampleLocations(makeSpace(5), n, 1)
		if err == nil {
			t.Fatalf("expected error for n=%d", n)
		}

		var cfgErr *ConfigurationError
		if !asError(err, &cfgErr) {
			t.Fatalf("expected ConfigurationError, got %T", err)
		}
	}
}

func TestSampleLocations_CapsAtSpaceSize(t *testing.T) {
	space := makeSpace(3)

	sample, err := SampleLocations(space, 10, 1)
	if err != nil {
		t.Fatalf("SampleLocations failed: %v", err)
	}

	if len(sample) != 3 {
		t.Fatalf("expected cap at 3, got %d", len(sample))
	}
}

func TestSampleLocations_ExactSizeReturnsWholeSpace(t *testing.T) {
	space := makeSpace(4)

	sample, err := SampleLocations(space, 4, 99)
	if err != nil {
		t.Fatalf("SampleLocations failed: %v", err)
	}

	if len(sample) != 4 {
		t.Fatalf("expected the full space, got %d", len(sample))
	}
}

func TestSampleLocations_SeededDrawIsReproducible(t *testing.T) {
	space := makeSpace(20)

	first, err := SampleLocations(space, 5, 42)
	if err != nil {
		t.Fatalf("first draw failed: %v", err)
	}

	second, err := SampleLocations(space, 5, 42)
	if err != nil {
		t.Fatalf("second draw failed: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed must reproduce the draw: %v vs %v", first, second)
		}
	}
}

func TestSampleLocations_WithoutReplacement(t *testing.T) {
	space := makeSpace(20)

	sample, err := SampleLocations(space, 10, 7)
	if err != nil {
		t.Fatalf("SampleLocations failed: %v", err)
	}

	seen := make(map[GenomeTarget]bool)

	for _, target := range sample {
		if seen[target] {
			t.Fatalf("duplicate draw: %+v", target)
		}

		seen[target] = true
	}
}

func TestSampleLocations_DifferentSeedsDiffer(t *testing.T) {
	space := makeSpace(50)

	first, _ := SampleLocations(space, 10, 1)
	second, _ := SampleLocations(space, 10, 2)

	same := true

	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}

	if same {
		t.Fatal("different seeds should draw different samples for a large space")
	}
}

func TestBuildSampleSpace_IgnoreCoverage(t *testing.T) {
	root := writeTree(t, map[string]string{
		"calc.go": "package p\n\nfunc Add(a, b int) int { return a + b }\n",
	})

	group := newTestGroup(t)
	if err := group.AddFolder(context.Background(), m.Path(root), nil); err != nil {
		t.Fatalf("AddFolder failed: %v", err)
	}

	space, err := BuildSampleSpace(context.Background(), group, m.RunConfig{IgnoreCoverage: true})
	if err != nil {
		t.Fatalf("BuildSampleSpace failed: %v", err)
	}

	if len(space) != 1 {
		t.Fatalf("expected 1 target, got %d", len(space))
	}
}

func TestBuildSampleSpace_MissingProfileEqualsIgnore(t *testing.T) {
	root := writeTree(t, map[string]string{
		"calc.go": "package p\n\nfunc Add(a, b int) int { return a + b }\n",
	})

	group := newTestGroup(t)
	if err := group.AddFolder(context.Background(), m.Path(root), nil); err != nil {
		t.Fatalf("AddFolder failed: %v", err)
	}

	ignored, err := BuildSampleSpace(context.Background(), group, m.RunConfig{IgnoreCoverage: true})
	if err != nil {
		t.Fatalf("ignore-coverage space failed: %v", err)
	}

	restricted, err := BuildSampleSpace(context.Background(), group, m.RunConfig{CoverageProfile: "missing.out"})
	if err != nil {
		t.Fatalf("restricted space failed: %v", err)
	}

	if len(ignored) != len(restricted) {
		t.Fatalf("missing profile must behave like ignore: %d vs %d", len(ignored), len(restricted))
	}
}
