// Package aspect implements the Aspect Manager: a per-element ordered list
// of cross-cutting hooks invoked before/after each lifecycle phase.
//
// It is grounded on the original engine's GAspectManager protocol
// (doAspect/reflect in _examples/original_source/.../GElement.cpp) and
// follows the teacher's registry shape (internal/registry.Registry /
// Module: a small set of typed lookup tables populated at configuration
// time, read lock-free — or near lock-free — during execution).
package aspect

import (
	"context"

	"github.com/vk/gridwork/internal/status"
)

// Kind is the closed set of hook points around an element's phases.
type Kind int

const (
	BeginInit Kind = iota
	FinishInit
	BeginRun
	FinishRun
	BeginDestroy
	FinishDestroy
)

func (k Kind) String() string {
	switch k {
	case BeginInit:
		return "BEGIN_INIT"
	case FinishInit:
		return "FINISH_INIT"
	case BeginRun:
		return "BEGIN_RUN"
	case FinishRun:
		return "FINISH_RUN"
	case BeginDestroy:
		return "BEGIN_DESTROY"
	case FinishDestroy:
		return "FINISH_DESTROY"
	default:
		return "UNKNOWN"
	}
}

// Hook is a single cross-cutting behavior registered against one Kind.
// BEGIN_* hooks may veto the phase by returning a non-OK status; FINISH_*
// hooks observe the phase's outcome and may still report their own failure,
// but they never prevent the phase body itself from having run.
type Hook interface {
	Kind() Kind
	Invoke(ctx context.Context, current status.Status) status.Status
}

// HookFunc adapts a plain function to the Hook interface for a fixed Kind.
type HookFunc struct {
	HookKind Kind
	Fn       func(ctx context.Context, current status.Status) status.Status
}

func (f HookFunc) Kind() Kind { return f.HookKind }

func (f HookFunc) Invoke(ctx context.Context, current status.Status) status.Status {
	return f.Fn(ctx, current)
}

// Manager holds the ordered hook lists for a single element and diagnostic
// name used when hooks report errors.
type Manager struct {
	name  string
	hooks map[Kind][]Hook
}

// NewManager returns an empty Manager ready to accept Register calls.
func NewManager() *Manager {
	return &Manager{hooks: make(map[Kind][]Hook)}
}

// Register appends h to the list for its Kind, in insertion order. Register
// is only safe during configuration, before any phase has been reflected;
// the engine never mutates hook lists concurrently with Reflect.
func (m *Manager) Register(h Hook) {
	m.hooks[h.Kind()] = append(m.hooks[h.Kind()], h)
}

// Reflect invokes every hook registered for kind, in insertion order,
// passing the phase's current status forward. The first non-OK result
// short-circuits the remaining hooks of this kind and is returned.
func (m *Manager) Reflect(ctx context.Context, kind Kind, current status.Status) status.Status {
	result := current
	for _, h := range m.hooks[kind] {
		result = h.Invoke(ctx, result)
		if !result.IsOK() {
			return result
		}
	}
	return result
}

// Size reports the total number of registered hooks across all kinds.
// Observability only.
func (m *Manager) Size() int {
	n := 0
	for _, hs := range m.hooks {
		n += len(hs)
	}
	return n
}

// SetName propagates the owning element's diagnostic name. Hooks that
// report errors by name (logging, tracing) read it back via Name.
func (m *Manager) SetName(name string) {
	m.name = name
}

// Name returns the diagnostic name last set via SetName.
func (m *Manager) Name() string {
	return m.name
}
