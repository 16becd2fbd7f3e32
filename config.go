package bsdiff

// Format selects a patch container wire layout.
type Format uint8

const (
	// FormatClassic is wire-compatible with the reference "BSDIFF40" tool:
	// an 8-byte magic, three size fields, then three independently
	// bzip2-framed substreams (control, diff, data).
	FormatClassic Format = iota
	// FormatEndsley is wire-compatible with "ENDSLEY/BSDIFF43": a 16-byte
	// magic, a new-size field, then a single bzip2 stream interleaving
	// control/diff/data records back to back.
	FormatEndsley
	// FormatAuto tells Patch to detect which container format a patch was
	// written in by peeking at its magic bytes, instead of the caller
	// naming one up front. Diff, which cannot detect anything, writes
	// FormatClassic when given it.
	FormatAuto
)

// DefaultCacheSize is the number of built suffix-array indices kept by the
// in-process index cache when no explicit size is configured.
const DefaultCacheSize = 8

// Config holds settings for a Diff, Patch or Index call.
type Config struct {
	// IndexPath, if set, is read as a persisted suffix-array index for old
	// instead of building one from scratch. Diff only.
	IndexPath string
	// CacheSize bounds the in-process suffix-array index cache. Zero uses
	// DefaultCacheSize; a negative value disables the cache.
	CacheSize int
	// CompressionLevel is forwarded to the bzip2 writer used by the patch
	// container. Zero uses the codec's own default.
	CompressionLevel int
}

// Option configures a Diff, Patch or Index call.
type Option func(*Config)

// WithIndexPath reuses a previously persisted suffix-array index instead of
// building one from old. See Index.
func WithIndexPath(path string) Option {
	return func(c *Config) {
		c.IndexPath = path
	}
}

// WithCacheSize bounds the in-process suffix-array index cache used across
// repeated Diff calls against the same old buffer within one process.
// Zero keeps DefaultCacheSize; a negative value disables the cache for
// this call.
func WithCacheSize(n int) Option {
	return func(c *Config) {
		c.CacheSize = n
	}
}

// WithCompressionLevel sets the bzip2 compression level used by the patch
// container. The container passes the value to the codec unchanged (zero
// selects the codec's default), so the valid range is the codec's own.
func WithCompressionLevel(level int) Option {
	return func(c *Config) {
		c.CompressionLevel = level
	}
}

func newConfig(opts ...Option) Config {
	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) cacheSize() int {
	if c.CacheSize == 0 {
		return DefaultCacheSize
	}
	return c.CacheSize
}
