package config

const SourceFileExt = ".revo"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".revo", ".rv"}

// ConfigFileName is the optional per-project tuning overlay.
const ConfigFileName = ".revo.yml"

// Pool geometry and collector defaults. These are starting values; Load
// may overlay them from a .revo.yml file.
const (
	// DefaultStubSegment is how many stubs a pool segment holds.
	DefaultStubSegment = 1024

	// DefaultGCTrigger is the number of stub allocations between
	// collection attempts.
	DefaultGCTrigger = 8192

	// DefaultMaxLevels caps the heap-resident level stack. Guest
	// recursion is bounded by memory, not the host stack, so this is
	// deliberately large.
	DefaultMaxLevels = 1_000_000
)

// Well-known word spellings the core itself needs to agree on with the
// native set.
const (
	ThrowNameBreak    = "break"
	ThrowNameContinue = "continue"
	ThrowNameReturn   = "return"
	ThrowNameDefault  = "throw"
)
