package element

import (
	"context"
	"fmt"

	"github.com/vk/gridwork/internal/aspect"
	"github.com/vk/gridwork/internal/status"
)

// FatProcessor is the element's single entry point for dispatching a
// lifecycle phase: it wraps the user method with aspect hooks and
// exception trapping, exactly as GElement::fatProcessor does for
// CFunctionType::{INIT,RUN,DESTROY}.
func (n *Node) FatProcessor(ctx context.Context, phase Phase) status.Status {
	var s status.Status
	switch phase {
	case PhaseRun:
		s = n.runPhase(ctx)
	case PhaseInit:
		s = n.wrappedPhase(ctx, aspect.BeginInit, aspect.FinishInit, n.impl.Init)
	case PhaseDestroy:
		s = n.wrappedPhase(ctx, aspect.BeginDestroy, aspect.FinishDestroy, n.impl.Destroy)
	default:
		s = status.New(status.KindConfiguration, 1, fmt.Sprintf("unknown phase %v", phase), "Node.FatProcessor")
	}
	n.lastStatus = s
	return s
}

// runPhase implements the RUN phase's loop: for each of loop iterations,
// a BEGIN_RUN hook may veto the iteration outright; otherwise run() repeats
// while it succeeds and isHold() holds, then FINISH_RUN observes (and may
// itself fail) the iteration's outcome. Per the spec's resolution of the
// isHold/aspect open question, BEGIN_RUN/FINISH_RUN fire once per loop
// iteration, not once per hold repetition.
func (n *Node) runPhase(ctx context.Context) status.Status {
	s := status.OK()
	for i := 0; i < n.loop; i++ {
		s = n.aspects.Reflect(ctx, aspect.BeginRun, status.OK())
		if !s.IsOK() {
			break
		}

		for {
			s = n.callSafely(ctx, n.impl.Run)
			if !s.IsOK() {
				break
			}
			if !n.impl.IsHold() {
				break
			}
			n.holdRepeats.Add(1)
		}

		s = n.aspects.Reflect(ctx, aspect.FinishRun, s)
		if !s.IsOK() {
			break
		}
	}
	return s
}

// wrappedPhase implements the shared INIT/DESTROY shape: a BEGIN_* hook may
// veto the phase body; the FINISH_* hook always runs afterward and observes
// (and may override) the body's outcome, even if the body failed.
func (n *Node) wrappedPhase(ctx context.Context, begin, finish aspect.Kind, fn func(context.Context) status.Status) status.Status {
	s := n.aspects.Reflect(ctx, begin, status.OK())
	if !s.IsOK() {
		return s
	}
	s = n.callSafely(ctx, fn)
	return n.aspects.Reflect(ctx, finish, s)
}

// callSafely invokes fn, recovering any panic and routing it through the
// element's Crashed hook so a user exception never escapes the element
// boundary as anything but a Status.
func (n *Node) callSafely(ctx context.Context, fn func(context.Context) status.Status) (result status.Status) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			result = n.impl.Crashed(ctx, err)
		}
	}()
	return fn(ctx)
}
