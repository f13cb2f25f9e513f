// Package element implements the scheduled unit of work: the Element
// lifecycle contract, the Node that wraps a user Element with scheduling
// state, and the aspect-wrapped fatProcessor that dispatches init/run/
// destroy.
//
// Node's atomic readiness bookkeeping (leftDepend, done) is grounded on the
// teacher's two node types — internal/dag.Node's depCount/state
// atomics in specialistvlad-burstgridgo's wired executor, and the parallel
// internal/node.Node's DecrementDepCount/SetState/sync.Once pattern in its
// unwired graph/scheduler rewrite. fatProcessor itself is a direct
// translation of GElement::fatProcessor
// (_examples/original_source/.../GElement.cpp).
package element

import (
	"context"
	"fmt"

	"github.com/vk/gridwork/internal/aspect"
	"github.com/vk/gridwork/internal/session"
	"github.com/vk/gridwork/internal/status"
	"sync"
	"sync/atomic"
)

// Element is the user-overridable contract each scheduled unit of work
// implements. BaseElement supplies every method's default; concrete element
// kinds embed BaseElement and override only what they need.
type Element interface {
	Init(ctx context.Context) status.Status
	Run(ctx context.Context) status.Status
	Destroy(ctx context.Context) status.Status
	IsHold() bool
	Crashed(ctx context.Context, err error) status.Status
}

// BaseElement provides the default Element behavior: Init and Destroy are
// no-ops, Run is unsupported, IsHold is always false, and Crashed converts
// the panic into a fatal status rather than re-panicking across a worker
// goroutine boundary (the original C++ element rethrows; Go cannot let a
// recovered panic continue unwinding past its own recover, so the default
// instead returns a KindException status that becomes the phase's final
// result).
type BaseElement struct{}

func (BaseElement) Init(ctx context.Context) status.Status { return status.OK() }

func (BaseElement) Run(ctx context.Context) status.Status {
	return status.New(status.KindUnsupported, 1, "run not overridden", "BaseElement.Run")
}

func (BaseElement) Destroy(ctx context.Context) status.Status { return status.OK() }

func (BaseElement) IsHold() bool { return false }

func (BaseElement) Crashed(ctx context.Context, err error) status.Status {
	return status.New(status.KindException, 1, err.Error(), "BaseElement.Crashed")
}

// Phase identifies which lifecycle phase fatProcessor is asked to run.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseRun
	PhaseDestroy
)

// Node wraps a user Element with the identity, configuration, wiring, and
// runtime state the Dependency Scheduler needs: session, name, loop count,
// level, dependence/run-before sets, the readiness counter, the done flag,
// and handles to the aspect manager, parameter store, and worker pool.
type Node struct {
	session string
	seq     int64

	mu         sync.RWMutex
	name       string
	loop       int
	level      int
	linkable   bool
	dependence map[*Node]struct{}
	runBefore  map[*Node]struct{}

	leftDepend atomic.Int32
	done       atomic.Bool
	locked     atomic.Bool // true once the owning scheduler has started initialization

	holdRepeats atomic.Int64
	lastStatus  status.Status

	aspects *aspect.Manager
	params  any
	pool    any // opaque worker-pool handle; the scheduler owns actual submission

	impl Element
}

// NewNode constructs a Node wrapping impl, assigning it a fresh session and
// defaulting name to the session, loop to 1, and level to 0. It is not yet
// wired to any dependency, parameter store, or pool — call SetElementInfo
// before the first run.
func NewNode(impl Element) *Node {
	s := session.New()
	return &Node{
		session:    s,
		name:       s,
		loop:       1,
		dependence: make(map[*Node]struct{}),
		runBefore:  make(map[*Node]struct{}),
		aspects:    aspect.NewManager(),
		impl:       impl,
	}
}

// Session returns the element's process-unique, opaque identifier.
func (n *Node) Session() string { return n.session }

// Name returns the element's human-readable name (defaults to Session).
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Loop returns the configured executions-per-scheduling count.
func (n *Node) Loop() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.loop
}

// Level returns the configured dispatch priority (higher runs earlier).
func (n *Node) Level() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.level
}

// Seq returns the insertion-order tie-break value assigned by the
// scheduler when the node was created.
func (n *Node) Seq() int64 { return n.seq }

// SetSeq is called once by the scheduler at creation time.
func (n *Node) SetSeq(seq int64) { n.seq = seq }

// Linkable reports whether this element may appear in a linked/fused
// sub-chain. False unless a specific element kind sets it.
func (n *Node) Linkable() bool { return n.linkable }

// SetLinkable is exposed for element kinds (e.g. a future ClusterElement)
// that fuse several nodes into one schedulable chain.
func (n *Node) SetLinkable(v bool) { n.linkable = v }

// Aspects returns the node's aspect manager, for registering hooks during
// configuration.
func (n *Node) Aspects() *aspect.Manager { return n.aspects }

// Params returns the opaque parameter-store handle bound via
// SetElementInfo.
func (n *Node) Params() any { return n.params }

// Pool returns the opaque worker-pool handle bound via SetElementInfo. The
// scheduler submits this node's phases through its own bound pool rather
// than through this handle; Node itself never imports the pool package.
func (n *Node) Pool() any { return n.pool }

// Impl returns the wrapped user Element.
func (n *Node) Impl() Element { return n.impl }

// Done reports whether the node finished its current epoch.
func (n *Node) Done() bool { return n.done.Load() }

// LastStatus returns the status of the most recently completed phase.
func (n *Node) LastStatus() status.Status { return n.lastStatus }

// HoldRepeats returns how many times IsHold caused a Run repetition within
// the current epoch.
func (n *Node) HoldRepeats() int64 { return n.holdRepeats.Load() }

// Dependence returns a snapshot of the elements this node depends on.
func (n *Node) Dependence() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, 0, len(n.dependence))
	for d := range n.dependence {
		out = append(out, d)
	}
	return out
}

// RunBefore returns a snapshot of the elements that depend on this node.
func (n *Node) RunBefore() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, 0, len(n.runBefore))
	for d := range n.runBefore {
		out = append(out, d)
	}
	return out
}

// IsRunnable reports whether the node has no outstanding predecessors and
// has not already finished this epoch.
func (n *Node) IsRunnable() bool {
	return n.leftDepend.Load() <= 0 && !n.done.Load()
}

// BeforeRun clears done and resets the readiness counter to the number of
// dependencies, starting a new epoch. It also clears the per-epoch hold
// counter.
func (n *Node) BeforeRun() {
	n.mu.RLock()
	depCount := len(n.dependence)
	n.mu.RUnlock()
	n.done.Store(false)
	n.leftDepend.Store(int32(depCount))
	n.holdRepeats.Store(0)
}

// AfterRun decrements left_depend on every dependent and marks this node
// done. It returns exactly the dependents whose decrement reached zero —
// the atomic Add result, not a re-read — so each successor is reported
// ready exactly once even under concurrent completions.
func (n *Node) AfterRun() []*Node {
	n.mu.RLock()
	dependents := make([]*Node, 0, len(n.runBefore))
	for d := range n.runBefore {
		dependents = append(dependents, d)
	}
	n.mu.RUnlock()

	var ready []*Node
	for _, d := range dependents {
		if d.leftDepend.Add(-1) == 0 {
			ready = append(ready, d)
		}
	}
	n.done.Store(true)
	return ready
}

// AddDependElements wires this node to depend on each element in elements:
// self-loops are silently skipped, every other edge inserts the
// predecessor into this.dependence and this into the predecessor's
// run_before, then left_depend is recomputed. It refuses if the owning
// scheduler has already moved past configuration.
func (n *Node) AddDependElements(elements ...*Node) status.Status {
	if n.locked.Load() {
		return status.New(status.KindConfiguration, 1, "cannot wire dependencies after initialization has started", "Node.AddDependElements")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, d := range elements {
		if d == n {
			continue // self-loop: silently skipped, per spec
		}
		n.dependence[d] = struct{}{}
		d.mu.Lock()
		d.runBefore[n] = struct{}{}
		d.mu.Unlock()
	}
	n.leftDepend.Store(int32(len(n.dependence)))
	return status.OK()
}

// SetElementInfo atomically applies name/loop/level, captures the
// parameter-store and pool handles, then wires dependencies. It rejects a
// nil pool, a non-positive loop, or a call after the owning scheduler has
// started initialization.
func (n *Node) SetElementInfo(deps []*Node, name string, loop, level int, params any, p any) status.Status {
	if n.locked.Load() {
		return status.New(status.KindConfiguration, 1, "cannot configure element after initialization has started", "Node.SetElementInfo")
	}
	if p == nil {
		return status.New(status.KindConfiguration, 1, "pool must not be nil", "Node.SetElementInfo")
	}
	if loop < 1 {
		return status.New(status.KindConfiguration, 1, fmt.Sprintf("loop must be >= 1, got %d", loop), "Node.SetElementInfo")
	}

	n.mu.Lock()
	if name == "" {
		name = n.session
	}
	n.name = name
	n.loop = loop
	n.level = level
	n.aspects.SetName(name)
	n.params = params
	n.pool = p
	n.mu.Unlock()

	return n.AddDependElements(deps...)
}

// LockConfiguration is called by the scheduler once for every node before
// the first Init dispatch, enforcing "no mutation of dependence,
// run_before, name, loop, level ... after the owning scheduler has started
// initialization."
func (n *Node) LockConfiguration() {
	n.locked.Store(true)
}
