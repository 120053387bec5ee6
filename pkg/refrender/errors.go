package refrender

import "errors"

// ErrArity is returned when rendering resolves a key to a host callable
// that requires one or more arguments; the zero-arg auto-invoke rule
// (§4.4) has nothing to invoke it with. Mirrors the STACHE_ERR_ARITY
// fault a tmpl_* function in emitted C returns to its caller.
var ErrArity = errors.New("stache: resolved callable requires arguments")

// ErrType is returned, in Strict mode only, when a dotted key's
// non-head segment is looked up against a value with no fields to look
// up at all (a string, number, bool, list, nil, or callable). Mirrors
// the STACHE_ERR_TYPE fault reserved in the runtime ABI for the same
// condition reported by a host's lookup implementation.
var ErrType = errors.New("stache: dotted resolution against a non-container value")
