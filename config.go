package dat

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Config gathers the engine's instance-scoped tunables. Resize policy
// is modeled as a field here rather than a process-wide global so
// multiple Tries in the same process can disagree about it;
// UseGlobalResizeToggle is a thin shim for hosts that still want a
// single shared on/off switch across every Trie.
type Config struct {
	// AllowResize gates every growth path when UseGlobalResizeToggle
	// is false (the default).
	AllowResize bool

	// InitialSize is the first power-of-two array length to allocate
	// on lazy setup. Zero means "use the package default".
	InitialSize int

	// UseGlobalResizeToggle makes the engine consult the package-level
	// EnableResize/DisableResize state instead of AllowResize.
	UseGlobalResizeToggle bool

	// KeyDup/ValDup duplicate a key/value into the trie's own storage
	// on insert; nil means "borrow the caller's pointer, caller
	// guarantees lifetime".
	KeyDup func([]byte) []byte
	ValDup func(interface{}) interface{}

	// KeyDestroy/ValDestroy, if set, run on deletion, replacement and
	// teardown.
	KeyDestroy func([]byte)
	ValDestroy func(interface{})

	// Logger receives structured growth/relocation events. A
	// nil Logger disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns a Config with resizing enabled and no
// duplication/destruction hooks (borrowed keys/values).
func DefaultConfig() Config {
	return Config{AllowResize: true, InitialSize: minArraySize}
}

var globalAllowResize atomic.Bool

func init() {
	globalAllowResize.Store(true)
}

// EnableResize and DisableResize toggle the package-level resize
// policy consulted by any Trie constructed with
// Config.UseGlobalResizeToggle set.
func EnableResize()  { globalAllowResize.Store(true) }
func DisableResize() { globalAllowResize.Store(false) }
