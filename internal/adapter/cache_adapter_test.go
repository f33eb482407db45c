package adapter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	m "github.com/EvanKepner/mutatest/internal/model"
)

func tempCache(t *testing.T) CacheAdapter {
	t.Helper()

	return NewLocalCacheAdapter().WithRoot(m.Path(t.TempDir()))
}

func sampleMutant(t *testing.T, root string) m.Mutant {
	t.Helper()

	src := filepath.Join(root, "calc.go")
	if err := os.WriteFile(src, []byte("package calc\n"), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	info, err := os.Stat(src)
	if err != nil {
		t.Fatalf("stat source: %v", err)
	}

	return m.Mutant{
		Artifact: []byte("package calc // mutated\n"),
		SrcFile:  m.Path(src),
		Stats:    m.SourceStats{MTime: info.ModTime(), Size: info.Size()},
		Mode:     m.FileMode(info.Mode()),
	}
}

func TestCacheFileIsDeterministic(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	first, err := cache.CacheFile(ctx, "pkg/calc.go")
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	second, err := cache.CacheFile(ctx, "pkg/calc.go")
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	if first != second {
		t.Fatalf("same source must map to same artifact: %s vs %s", first, second)
	}

	if !strings.HasSuffix(string(first), "-calc.go") {
		t.Fatalf("artifact name must keep the base name: %s", first)
	}

	other, err := cache.CacheFile(ctx, "other/calc.go")
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	if other == first {
		t.Fatalf("distinct sources must not collide: %s", other)
	}
}

func TestWriteMutantMaterializesEntry(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	mutant := sampleMutant(t, t.TempDir())

	if err := cache.WriteMutant(ctx, mutant); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	cfile, err := cache.CacheFile(ctx, mutant.SrcFile)
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	artifact, err := os.ReadFile(string(cfile))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	if string(artifact) != string(mutant.Artifact) {
		t.Fatalf("artifact content mismatch: %q", artifact)
	}

	metaData, err := os.ReadFile(string(cfile) + ".meta.yaml")
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}

	var meta cacheMeta
	if err := yaml.Unmarshal(metaData, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}

	if meta.Source != mutant.SrcFile || meta.Stats.Size != mutant.Stats.Size {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestWriteMutantOverlayPointsAtArtifact(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	mutant := sampleMutant(t, t.TempDir())

	if err := cache.WriteMutant(ctx, mutant); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	overlay, err := cache.OverlayFile(ctx)
	if err != nil {
		t.Fatalf("OverlayFile failed: %v", err)
	}

	data, err := os.ReadFile(string(overlay))
	if err != nil {
		t.Fatalf("read overlay: %v", err)
	}

	var manifest overlayManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("decode overlay: %v", err)
	}

	absSrc, err := filepath.Abs(string(mutant.SrcFile))
	if err != nil {
		t.Fatalf("abs source: %v", err)
	}

	cfile, err := cache.CacheFile(ctx, mutant.SrcFile)
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	absCfile, err := filepath.Abs(string(cfile))
	if err != nil {
		t.Fatalf("abs artifact: %v", err)
	}

	if got := manifest.Replace[absSrc]; got != absCfile {
		t.Fatalf("overlay must map source to artifact, got %q", got)
	}
}

func TestWriteMutantReplacesPriorEntry(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	first := sampleMutant(t, t.TempDir())

	if err := cache.WriteMutant(ctx, first); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	cfile, err := cache.CacheFile(ctx, first.SrcFile)
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	// A second mutation of the same unchanged source shares the artifact
	// path and identical stats; its trial must still see its own code,
	// never a leftover from the previous mutation.
	second := first
	second.Artifact = []byte("package calc // second mutation\n")

	if err := cache.WriteMutant(ctx, second); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	artifact, err := os.ReadFile(string(cfile))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	if !strings.Contains(string(artifact), "second mutation") {
		t.Fatalf("prior artifact must be overwritten, got %q", artifact)
	}
}

func TestRemoveMutantTolerant(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	// Removing an entry that was never written is not an error.
	if err := cache.RemoveMutant(ctx, "pkg/never.go"); err != nil {
		t.Fatalf("RemoveMutant on missing entry failed: %v", err)
	}

	mutant := sampleMutant(t, t.TempDir())

	if err := cache.WriteMutant(ctx, mutant); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	if err := cache.RemoveMutant(ctx, mutant.SrcFile); err != nil {
		t.Fatalf("RemoveMutant failed: %v", err)
	}

	cfile, err := cache.CacheFile(ctx, mutant.SrcFile)
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	for _, path := range []string{string(cfile), string(cfile) + ".meta.yaml"} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err = %v", path, err)
		}
	}
}

func TestEnvOverrideTargetsOverlay(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	env, err := cache.EnvOverride(ctx)
	if err != nil {
		t.Fatalf("EnvOverride failed: %v", err)
	}

	if len(env) != 1 {
		t.Fatalf("expected one env entry, got %v", env)
	}

	overlay, err := cache.OverlayFile(ctx)
	if err != nil {
		t.Fatalf("OverlayFile failed: %v", err)
	}

	if want := "GOFLAGS=-overlay=" + string(overlay); env[0] != want {
		t.Fatalf("expected %q, got %q", want, env[0])
	}
}

func TestWithRootIsolatesCaches(t *testing.T) {
	ctx := context.Background()

	shared := NewLocalCacheAdapter()
	private := shared.WithRoot(m.Path(t.TempDir()))

	if shared.Root(ctx) == private.Root(ctx) {
		t.Fatal("WithRoot must bind a different directory")
	}

	sharedFile, err := shared.CacheFile(ctx, "pkg/calc.go")
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	privateFile, err := private.CacheFile(ctx, "pkg/calc.go")
	if err != nil {
		t.Fatalf("CacheFile failed: %v", err)
	}

	if filepath.Base(string(sharedFile)) != filepath.Base(string(privateFile)) {
		t.Fatal("artifact naming must not depend on the root")
	}

	if sharedFile == privateFile {
		t.Fatal("roots must not share artifact paths")
	}
}

func TestRemoveRoot(t *testing.T) {
	cache := tempCache(t)
	ctx := context.Background()

	mutant := sampleMutant(t, t.TempDir())

	if err := cache.WriteMutant(ctx, mutant); err != nil {
		t.Fatalf("WriteMutant failed: %v", err)
	}

	if err := cache.RemoveRoot(ctx); err != nil {
		t.Fatalf("RemoveRoot failed: %v", err)
	}

	if _, err := os.Stat(string(cache.Root(ctx))); !os.IsNotExist(err) {
		t.Fatalf("expected cache root removed, stat err = %v", err)
	}
}
