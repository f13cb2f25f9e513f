// Package scheduler implements the Dependency Scheduler: given a set of
// elements forming a DAG, it runs every element to completion honoring
// dependencies, dispatching ready elements to a worker pool and re-entering
// dependents as their predecessors finish.
//
// The dispatch loop — pop-highest-priority-ready, submit, fan in completions,
// stop-dispatching-new-work-on-first-failure-but-drain-in-flight — is
// grounded on the teacher's internal/dag/executor.go Run loop
// (specialistvlad-burstgridgo), adapted from its fixed worker-channel model
// to submission against internal/pool and generalized from
// HCL-step-execution to arbitrary elements.
package scheduler
