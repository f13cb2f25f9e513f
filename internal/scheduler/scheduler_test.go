package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vk/gridwork/internal/aspect"
	"github.com/vk/gridwork/internal/element"
	"github.com/vk/gridwork/internal/pool"
	"github.com/vk/gridwork/internal/status"
)

// orderRecordingElement appends its name to a shared, mutex-guarded slice
// every time Run is invoked, letting tests assert relative dispatch order.
type orderRecordingElement struct {
	element.BaseElement
	name     string
	mu       *sync.Mutex
	order    *[]string
	runCount int32
	runErr   status.Status
}

func (e *orderRecordingElement) Run(ctx context.Context) status.Status {
	atomic.AddInt32(&e.runCount, 1)
	e.mu.Lock()
	*e.order = append(*e.order, e.name)
	e.mu.Unlock()
	if !e.runErr.IsOK() {
		return e.runErr
	}
	return status.OK()
}

func newTestScheduler(t *testing.T) (*Scheduler, *pool.Pool) {
	t.Helper()
	p := pool.New(context.Background(), pool.Config{ThreadCount: 4, MaxPoolBatchSize: 4})
	t.Cleanup(func() { p.Shutdown(context.Background()) })
	s := New()
	require.True(t, s.BindPool(p).IsOK())
	return s, p
}

func TestScheduler_EmptyGraph_OK(t *testing.T) {
	s, _ := newTestScheduler(t)
	st := s.Run(context.Background())
	assert.True(t, st.IsOK())
}

func TestScheduler_Diamond(t *testing.T) {
	s, _ := newTestScheduler(t)
	var mu sync.Mutex
	var order []string

	a, st := s.CreateElement(&orderRecordingElement{name: "A", mu: &mu, order: &order}, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())
	b, st := s.CreateElement(&orderRecordingElement{name: "B", mu: &mu, order: &order}, []*element.Node{a}, "B", 1, 0, nil)
	require.True(t, st.IsOK())
	c, st := s.CreateElement(&orderRecordingElement{name: "C", mu: &mu, order: &order}, []*element.Node{a}, "C", 1, 0, nil)
	require.True(t, st.IsOK())
	_, st = s.CreateElement(&orderRecordingElement{name: "D", mu: &mu, order: &order}, []*element.Node{b, c}, "D", 1, 0, nil)
	require.True(t, st.IsOK())

	result := s.Run(context.Background())
	require.True(t, result.IsOK())

	require.Len(t, order, 4)
	assert.Equal(t, "A", order[0])
	assert.Equal(t, "D", order[3])
	assert.ElementsMatch(t, []string{"B", "C"}, order[1:3])
}

func TestScheduler_FailurePropagation(t *testing.T) {
	s, _ := newTestScheduler(t)
	var mu sync.Mutex
	var order []string

	a, st := s.CreateElement(&orderRecordingElement{name: "A", mu: &mu, order: &order}, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())
	bImpl := &orderRecordingElement{name: "B", mu: &mu, order: &order, runErr: status.New(status.KindPhase, 7, "boom", "B.Run")}
	b, st := s.CreateElement(bImpl, []*element.Node{a}, "B", 1, 0, nil)
	require.True(t, st.IsOK())
	cImpl := &orderRecordingElement{name: "C", mu: &mu, order: &order}
	_, st = s.CreateElement(cImpl, []*element.Node{b}, "C", 1, 0, nil)
	require.True(t, st.IsOK())

	result := s.Run(context.Background())
	require.False(t, result.IsOK())
	assert.Equal(t, 7, result.Code)

	assert.Equal(t, int32(1), atomic.LoadInt32(&bImpl.runCount))
	assert.Equal(t, int32(0), atomic.LoadInt32(&cImpl.runCount))
	assert.Equal(t, []string{"A", "B"}, order)
}

// holdingElement holds (re-runs within the same loop iteration) for a fixed
// number of calls before letting the iteration finish.
type holdingElement struct {
	element.BaseElement
	holdUntil int32
	runCount  int32
}

func (e *holdingElement) Run(ctx context.Context) status.Status {
	atomic.AddInt32(&e.runCount, 1)
	return status.OK()
}

func (e *holdingElement) IsHold() bool {
	return atomic.LoadInt32(&e.runCount) <= e.holdUntil
}

func TestScheduler_HoldLoop(t *testing.T) {
	s, _ := newTestScheduler(t)
	impl := &holdingElement{holdUntil: 2}
	a, st := s.CreateElement(impl, nil, "A", 2, 0, nil)
	require.True(t, st.IsOK())

	result := s.Run(context.Background())
	require.True(t, result.IsOK())
	// holdUntil=2 against a monotonic runCount: iteration 1 holds at counts
	// 1 and 2, then stops at 3 (3 calls); iteration 2's first call is at
	// count 4, already past holdUntil, so it stops immediately (1 call).
	// Total: 3 + 1 = 4.
	assert.EqualValues(t, 4, impl.runCount)
	_ = a
}

func TestScheduler_AspectVeto(t *testing.T) {
	s, _ := newTestScheduler(t)
	impl := &orderRecordingElement{name: "A", mu: &sync.Mutex{}, order: &[]string{}}
	a, st := s.CreateElement(impl, nil, "A", 3, 0, nil)
	require.True(t, st.IsOK())

	a.Aspects().Register(aspect.HookFunc{
		HookKind: aspect.BeginRun,
		Fn: func(ctx context.Context, current status.Status) status.Status {
			return status.New(status.KindAspectVeto, 9, "vetoed", "test")
		},
	})

	result := s.Run(context.Background())
	require.False(t, result.IsOK())
	assert.Equal(t, 9, result.Code)
	assert.EqualValues(t, 0, impl.runCount)
}

type throwingElement struct {
	element.BaseElement
	crashedCode int
}

func (e *throwingElement) Run(ctx context.Context) status.Status {
	panic("kaboom")
}

func (e *throwingElement) Crashed(ctx context.Context, err error) status.Status {
	return status.New(status.KindException, e.crashedCode, err.Error(), "throwingElement.Crashed")
}

func TestScheduler_ExceptionRoutedViaCrashed(t *testing.T) {
	s, _ := newTestScheduler(t)
	impl := &throwingElement{crashedCode: 11}
	downstream := &orderRecordingElement{name: "downstream", mu: &sync.Mutex{}, order: &[]string{}}

	a, st := s.CreateElement(impl, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())
	_, st = s.CreateElement(downstream, []*element.Node{a}, "B", 1, 0, nil)
	require.True(t, st.IsOK())

	result := s.Run(context.Background())
	require.False(t, result.IsOK())
	assert.Equal(t, 11, result.Code)
	assert.EqualValues(t, 0, downstream.runCount)
}

func TestScheduler_CycleRejected(t *testing.T) {
	s, _ := newTestScheduler(t)
	a, st := s.CreateElement(&element.BaseElement{}, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())
	b, st := s.CreateElement(&element.BaseElement{}, []*element.Node{a}, "B", 1, 0, nil)
	require.True(t, st.IsOK())

	// Close the cycle A -> B -> A. AddDependElements on a pre-lock node is
	// still legal since Init hasn't run yet.
	require.True(t, a.AddDependElements(b).IsOK())

	result := s.Run(context.Background())
	assert.False(t, result.IsOK())
	assert.Equal(t, status.KindWiring, result.Kind)
}

func TestScheduler_SelfLoopSilentlyIgnored(t *testing.T) {
	s, _ := newTestScheduler(t)
	impl := &orderRecordingElement{name: "A", mu: &sync.Mutex{}, order: &[]string{}}
	a, st := s.CreateElement(impl, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())
	require.True(t, a.AddDependElements(a).IsOK())

	result := s.Run(context.Background())
	require.True(t, result.IsOK())
	assert.EqualValues(t, 1, impl.runCount)
}

func TestScheduler_RepeatedRunsProduceIdenticalOutcome(t *testing.T) {
	s, _ := newTestScheduler(t)
	impl := &orderRecordingElement{name: "A", mu: &sync.Mutex{}, order: &[]string{}}
	_, st := s.CreateElement(impl, nil, "A", 1, 0, nil)
	require.True(t, st.IsOK())

	first := s.Run(context.Background())
	second := s.Run(context.Background())
	require.True(t, first.IsOK())
	require.True(t, second.IsOK())
	assert.EqualValues(t, 2, impl.runCount)
}

func TestScheduler_LevelOrdersReadyDispatchAmongIndependents(t *testing.T) {
	// A single worker drains the pool's FIFO queue in submission order, and
	// the scheduler submits its initial ready set in heap-pop order
	// (level desc, seq asc), so with no dependency between two elements the
	// higher-level one must be observed first.
	p := pool.New(context.Background(), pool.Config{ThreadCount: 1, MaxPoolBatchSize: 1})
	t.Cleanup(func() { p.Shutdown(context.Background()) })
	s := New()
	require.True(t, s.BindPool(p).IsOK())

	var mu sync.Mutex
	var order []string

	low := &orderRecordingElement{name: "low", mu: &mu, order: &order}
	high := &orderRecordingElement{name: "high", mu: &mu, order: &order}
	_, st := s.CreateElement(low, nil, "low", 1, 1, nil)
	require.True(t, st.IsOK())
	_, st = s.CreateElement(high, nil, "high", 1, 5, nil)
	require.True(t, st.IsOK())

	result := s.Run(context.Background())
	require.True(t, result.IsOK())
	assert.Equal(t, []string{"high", "low"}, order)
}

// TestScheduler_MockElement_LifecycleCallCounts exercises the scheduler
// against a go.uber.org/mock-generated Element double rather than a
// hand-written fake, verifying the exact Init/Run/Destroy/IsHold call
// counts the scheduler drives independent of any concrete element's own
// bookkeeping.
func TestScheduler_MockElement_LifecycleCallCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockElement(ctrl)

	m.EXPECT().Init(gomock.Any()).Return(status.OK()).Times(1)
	m.EXPECT().Run(gomock.Any()).Return(status.OK()).Times(1)
	m.EXPECT().IsHold().Return(false).Times(1)

	s, _ := newTestScheduler(t)
	_, st := s.CreateElement(m, nil, "mocked", 1, 0, nil)
	require.True(t, st.IsOK())

	require.True(t, s.Init(context.Background()).IsOK())
	require.True(t, s.Run(context.Background()).IsOK())

	m.EXPECT().Destroy(gomock.Any()).Return(status.OK()).Times(1)
	require.True(t, s.Destroy(context.Background()).IsOK())
}
