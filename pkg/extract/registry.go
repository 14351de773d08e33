package extract

import "sync"

var (
	builtinMu sync.RWMutex
	builtins  = make(map[string]InternalExtractor)
)

// RegisterBuiltin registers a built-in decoder under the given tag,
// replacing any previous registration. The builtin package registers the
// standard decoders from its init function; tests may register their own.
func RegisterBuiltin(tag string, fn InternalExtractor) {
	if tag == "" || fn == nil {
		panic("extract: built-in registration requires a tag and a function")
	}
	builtinMu.Lock()
	defer builtinMu.Unlock()
	builtins[tag] = fn
}

// LookupBuiltin returns the decoder registered under tag.
func LookupBuiltin(tag string) (InternalExtractor, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	fn, ok := builtins[tag]
	return fn, ok
}
