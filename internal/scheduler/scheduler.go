package scheduler

import (
	"context"
	"sync"

	"github.com/vk/gridwork/internal/aspect"
	"github.com/vk/gridwork/internal/ctxlog"
	"github.com/vk/gridwork/internal/element"
	"github.com/vk/gridwork/internal/pool"
	"github.com/vk/gridwork/internal/status"
)

// Scheduler owns a set of elements forming a DAG and runs them to completion
// honoring dependencies. It is the ingress API's implementation: create
// elements, bind their pool, then Init/Run/Destroy.
type Scheduler struct {
	mu     sync.Mutex
	nodes  []*element.Node
	nextID int64

	pool     *pool.Pool
	locked   bool
	initDone bool
}

// New returns a Scheduler with no elements yet created and no pool bound.
// BindPool must be called before the first CreateElement.
func New() *Scheduler {
	return &Scheduler{}
}

// BindPool wires the worker pool every created element submits its phases
// to. It must be called before CreateElement and may not be changed once
// Init has started.
func (s *Scheduler) BindPool(p *pool.Pool) status.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return status.New(status.KindConfiguration, 1, "cannot rebind pool after initialization has started", "Scheduler.BindPool")
	}
	s.pool = p
	return status.OK()
}

// CreateElement wraps impl in a new Node, wires deps, and registers it with
// the scheduler. It refuses once Init has locked configuration, and refuses
// if no pool has been bound yet.
func (s *Scheduler) CreateElement(impl element.Element, deps []*element.Node, name string, loop, level int, params any) (*element.Node, status.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return nil, status.New(status.KindConfiguration, 1, "cannot create element after initialization has started", "Scheduler.CreateElement")
	}
	if s.pool == nil {
		return nil, status.New(status.KindConfiguration, 1, "pool must be bound before creating elements", "Scheduler.CreateElement")
	}

	n := element.NewNode(impl)
	n.SetSeq(s.nextID)
	s.nextID++

	if sc := n.SetElementInfo(deps, name, loop, level, params, s.pool); !sc.IsOK() {
		return nil, sc
	}
	s.nodes = append(s.nodes, n)
	return n, status.OK()
}

// BindParameters rebinds a single node's parameter-store handle without
// touching its wiring. It is a convenience for callers that create an
// element before its parameters are known (e.g. a declarative loader
// resolving forward references).
func (s *Scheduler) BindParameters(n *element.Node, params any) status.Status {
	return n.SetElementInfo(n.Dependence(), n.Name(), n.Loop(), n.Level(), params, n.Pool())
}

// Aspects returns n's aspect manager, for registering hooks during
// configuration. Exposed here so callers that only hold a Scheduler (not the
// Node directly) can still configure aspects uniformly.
func (s *Scheduler) Aspects(n *element.Node) *aspect.Manager { return n.Aspects() }

// Init performs topological feasibility checking (refusing on any cycle),
// locks configuration, and runs every element's INIT phase concurrently.
// It is idempotent: a second call is a no-op returning OK.
func (s *Scheduler) Init(ctx context.Context) status.Status {
	s.mu.Lock()
	if s.initDone {
		s.mu.Unlock()
		return status.OK()
	}
	nodes := append([]*element.Node(nil), s.nodes...)
	s.mu.Unlock()

	if sc := detectCycles(nodes); !sc.IsOK() {
		return sc
	}

	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
	for _, n := range nodes {
		n.LockConfiguration()
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("scheduler: running INIT phase", "elements", len(nodes))

	result := s.runPhaseAll(ctx, nodes, element.PhaseInit)

	s.mu.Lock()
	s.initDone = true
	s.mu.Unlock()
	return result
}

// Destroy runs every element's DESTROY phase concurrently.
func (s *Scheduler) Destroy(ctx context.Context) status.Status {
	s.mu.Lock()
	nodes := append([]*element.Node(nil), s.nodes...)
	s.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("scheduler: running DESTROY phase", "elements", len(nodes))
	return s.runPhaseAll(ctx, nodes, element.PhaseDestroy)
}

// runPhaseAll submits phase for every node to the pool, waits for all to
// complete, and returns the first non-OK status encountered in node creation
// order (deterministic given the concurrent completions), or OK if every
// element succeeded.
func (s *Scheduler) runPhaseAll(ctx context.Context, nodes []*element.Node, phase element.Phase) status.Status {
	if len(nodes) == 0 {
		return status.OK()
	}

	results := make([]status.Status, len(nodes))
	futures := make([]*pool.Future, len(nodes))
	for i, n := range nodes {
		n := n
		futures[i] = s.pool.Submit(func(ctx context.Context) (any, error) {
			return n.FatProcessor(ctx, phase), nil
		})
	}
	for i, f := range futures {
		res, err := f.Wait(ctx)
		if err != nil {
			results[i] = status.Wrap(err, "Scheduler.runPhaseAll")
			continue
		}
		results[i] = res.Value.(status.Status)
	}

	for _, r := range results {
		if !r.IsOK() {
			return r
		}
	}
	return status.OK()
}

// nodeResult pairs a completed RUN dispatch with its outcome.
type nodeResult struct {
	node   *element.Node
	status status.Status
}

// Run performs one epoch: it auto-initializes (idempotent) if needed, resets
// every element's readiness state via BeforeRun, then dispatches ready
// elements to the pool highest-level-first, fanning in completions and
// re-entering newly-ready dependents, until nothing is ready and nothing is
// in-flight. On the first element that reports a non-OK status, the
// scheduler stops dispatching new work but drains whatever is already
// in-flight (no cancellation of running tasks).
func (s *Scheduler) Run(ctx context.Context) status.Status {
	if sc := s.Init(ctx); !sc.IsOK() {
		return sc
	}

	s.mu.Lock()
	nodes := append([]*element.Node(nil), s.nodes...)
	s.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	for _, n := range nodes {
		n.BeforeRun()
	}

	ready := newReadySet()
	for _, n := range nodes {
		if n.IsRunnable() {
			ready.push(n)
		}
	}

	completions := make(chan nodeResult)
	inflight := 0
	dispatch := func(n *element.Node) {
		inflight++
		logger.Debug("scheduler: dispatching element", "name", n.Name(), "level", n.Level())
		f := s.pool.Submit(func(ctx context.Context) (any, error) {
			return n.FatProcessor(ctx, element.PhaseRun), nil
		})
		go func() {
			res, err := f.Wait(ctx)
			var st status.Status
			if err != nil {
				st = status.Wrap(err, "Scheduler.Run")
			} else {
				st = res.Value.(status.Status)
			}
			completions <- nodeResult{node: n, status: st}
		}()
	}

	for n := ready.pop(); n != nil; n = ready.pop() {
		dispatch(n)
	}

	overall := status.OK()
	stopDispatch := false
	for inflight > 0 {
		res := <-completions
		inflight--

		if !res.status.IsOK() {
			logger.Warn("scheduler: element failed", "name", res.node.Name(), "status", res.status.Error())
			if overall.IsOK() {
				overall = res.status
			}
			stopDispatch = true
			continue
		}

		newlyReady := res.node.AfterRun()
		if stopDispatch {
			continue
		}
		for _, succ := range newlyReady {
			ready.push(succ)
		}
		for n := ready.pop(); n != nil; n = ready.pop() {
			dispatch(n)
		}
	}

	return overall
}

// detectCycles runs a Kahn's-algorithm feasibility check over nodes: if not
// every node can be peeled off by repeatedly removing zero-indegree nodes,
// the remainder forms at least one cycle.
func detectCycles(nodes []*element.Node) status.Status {
	indegree := make(map[*element.Node]int, len(nodes))
	for _, n := range nodes {
		indegree[n] = len(n.Dependence())
	}

	queue := make([]*element.Node, 0, len(nodes))
	for n, d := range indegree {
		if d == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, succ := range n.RunBefore() {
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if visited != len(nodes) {
		return status.New(status.KindWiring, 1, "cycle detected among elements", "Scheduler.detectCycles")
	}
	return status.OK()
}
