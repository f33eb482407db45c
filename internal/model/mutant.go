package model

// Mutant is one synthesized substitute for a source file with exactly one
// site altered. It is immutable once built: writing its artifact to the cache
// is a separate explicit step, so a Mutant can be inspected in memory without
// any filesystem side effect.
type Mutant struct {
	// Artifact is the rendered, gofmt-formatted mutated source. This is the
	// compiled form the toolchain consumes through the overlay in place of
	// the file on disk.
	Artifact []byte

	// SrcFile is the original, never-modified source file.
	SrcFile Path

	// CacheFile is the deterministic artifact path under the cache root.
	CacheFile Path

	// OverlayFile is the manifest the toolchain loads to substitute
	// CacheFile for SrcFile.
	OverlayFile Path

	// Stats and Mode are the invalidation metadata for the cache entry.
	Stats SourceStats
	Mode  FileMode

	// SrcIdx and Mutation record which site was rewritten and with what.
	SrcIdx   LocIndex
	Mutation Variant

	// Diff is a unified diff of the original source against the artifact.
	Diff string
}
