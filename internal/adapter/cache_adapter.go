package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "github.com/EvanKepner/mutatest/internal/model"
)

// DefaultCacheDir is the shared artifact-cache location used by sequential
// runs. It is a single mutable resource: parallel workers must isolate
// themselves with WithRoot.
const DefaultCacheDir = ".mutatest_cache"

// overlayName is the manifest the toolchain consumes via -overlay.
const overlayName = "overlay.json"

// CacheAdapter owns the host-toolchain artifact protocol: given a compiled
// form plus the original file's mtime, size and mode, it produces a cache
// entry the build accepts in place of the on-disk source, at a deterministic
// path derived from the source path.
type CacheAdapter interface {
	// Root returns the cache directory this adapter writes under.
	Root(ctx context.Context) m.Path

	// CacheFile returns the deterministic artifact path for a source file.
	CacheFile(ctx context.Context, src m.Path) (m.Path, error)

	// OverlayFile returns the substitution manifest path under the root.
	OverlayFile(ctx context.Context) (m.Path, error)

	// EnvOverride returns the environment entries that point a subprocess
	// at this cache root's overlay.
	EnvOverride(ctx context.Context) ([]string, error)

	// WriteMutant materializes the mutant's artifact, its invalidation
	// metadata and the overlay entry. A prior entry for the same source is
	// always overwritten: consecutive mutants share the artifact path and
	// the source stats alone cannot tell them apart.
	WriteMutant(ctx context.Context, mutant m.Mutant) error

	// RemoveMutant deletes the artifact and overlay for a source file.
	// Already-missing files are tolerated and logged, never escalated.
	RemoveMutant(ctx context.Context, src m.Path) error

	// WithRoot returns an adapter bound to a different cache directory,
	// used for private per-trial caches in parallel mode.
	WithRoot(root m.Path) CacheAdapter

	// RemoveRoot deletes the cache directory and everything under it.
	RemoveRoot(ctx context.Context) error
}

// cacheMeta is the invalidation record stored next to each artifact.
type cacheMeta struct {
	Source m.Path        `yaml:"source"`
	Stats  m.SourceStats `yaml:"stats"`
	Mode   uint32        `yaml:"mode"`
}

// overlayManifest mirrors the toolchain's -overlay JSON schema.
type overlayManifest struct {
	Replace map[string]string `json:"Replace"`
}

// LocalCacheAdapter is the concrete CacheAdapter rooted at one directory.
type LocalCacheAdapter struct {
	root m.Path
}

// NewLocalCacheAdapter constructs an adapter over the default shared cache
// location.
func NewLocalCacheAdapter() *LocalCacheAdapter {
	return &LocalCacheAdapter{root: DefaultCacheDir}
}

// Root implements CacheAdapter.
func (a *LocalCacheAdapter) Root(_ context.Context) m.Path {
	return a.root
}

// WithRoot implements CacheAdapter.
func (a *LocalCacheAdapter) WithRoot(root m.Path) CacheAdapter {
	return &LocalCacheAdapter{root: root}
}

// CacheFile implements CacheAdapter. The artifact name is derived from a
// digest of the absolute source path so distinct files never collide inside
// one cache root.
func (a *LocalCacheAdapter) CacheFile(_ context.Context, src m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(src))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", src, err)
	}

	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:8]) + "-" + filepath.Base(abs)

	return m.Path(filepath.Join(string(a.root), name)), nil
}

// OverlayFile implements CacheAdapter.
func (a *LocalCacheAdapter) OverlayFile(_ context.Context) (m.Path, error) {
	abs, err := filepath.Abs(filepath.Join(string(a.root), overlayName))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}

// EnvOverride implements CacheAdapter.
func (a *LocalCacheAdapter) EnvOverride(ctx context.Context) ([]string, error) {
	overlay, err := a.OverlayFile(ctx)
	if err != nil {
		return nil, err
	}

	return []string{"GOFLAGS=-overlay=" + string(overlay)}, nil
}

// WriteMutant implements CacheAdapter.
func (a *LocalCacheAdapter) WriteMutant(ctx context.Context, mutant m.Mutant) error {
	if err := os.MkdirAll(string(a.root), 0o750); err != nil {
		return fmt.Errorf("create cache dir %s: %w", a.root, err)
	}

	cfile, err := a.CacheFile(ctx, mutant.SrcFile)
	if err != nil {
		return err
	}

	// Every mutation of a source maps to the same artifact path, so always
	// overwrite: a leftover entry from an earlier mutation of this source
	// carries the same stats but different code.
	if err := os.WriteFile(string(cfile), mutant.Artifact, mutant.Mode.Perm()); err != nil {
		return fmt.Errorf("write artifact %s: %w", cfile, err)
	}

	meta := cacheMeta{Source: mutant.SrcFile, Stats: mutant.Stats, Mode: uint32(mutant.Mode)}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode cache metadata: %w", err)
	}

	if err := os.WriteFile(metaPath(cfile), data, 0o600); err != nil {
		return fmt.Errorf("write cache metadata: %w", err)
	}

	slog.Debug("wrote mutant cache entry", "cfile", cfile, "src", mutant.SrcFile)

	return a.writeOverlay(ctx, mutant.SrcFile, cfile)
}

func (a *LocalCacheAdapter) writeOverlay(ctx context.Context, src, cfile m.Path) error {
	absSrc, err := filepath.Abs(string(src))
	if err != nil {
		return err
	}

	absCfile, err := filepath.Abs(string(cfile))
	if err != nil {
		return err
	}

	manifest := overlayManifest{Replace: map[string]string{absSrc: absCfile}}

	data, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}

	overlay, err := a.OverlayFile(ctx)
	if err != nil {
		return err
	}

	if err := os.WriteFile(string(overlay), data, 0o600); err != nil {
		return fmt.Errorf("write overlay %s: %w", overlay, err)
	}

	return nil
}

// RemoveMutant implements CacheAdapter.
func (a *LocalCacheAdapter) RemoveMutant(ctx context.Context, src m.Path) error {
	cfile, err := a.CacheFile(ctx, src)
	if err != nil {
		return err
	}

	overlay, overlayErr := a.OverlayFile(ctx)

	for _, path := range []string{string(cfile), metaPath(cfile), string(overlay)} {
		if overlayErr != nil && path == string(overlay) {
			continue
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("cache cleanup failed", "path", path, "error", err)
		}
	}

	return nil
}

// RemoveRoot implements CacheAdapter.
func (a *LocalCacheAdapter) RemoveRoot(_ context.Context) error {
	return os.RemoveAll(string(a.root))
}

func metaPath(cfile m.Path) string {
	return string(cfile) + ".meta.yaml"
}
