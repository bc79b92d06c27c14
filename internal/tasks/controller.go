package tasks

import (
	"context"
	"time"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/edge"
	"github.com/thruflo/lightnode/internal/logging"
	"github.com/thruflo/lightnode/internal/request"
)

// DefaultPacing is the pause before acting on a pending task.
const DefaultPacing = time.Second

// Operations are the remote calls the controller needs. *edge.Client
// implements it.
type Operations interface {
	Address() string
	ProofStatus(ctx context.Context) (edge.ProofStatus, bool)
	SubmitProof(ctx context.Context) bool
	GenerateCard(ctx context.Context) bool
	CompleteTask(ctx context.Context, task config.Task) edge.TaskResult
}

// CompletionStore persists completed task ids per address. *state.Store
// implements it.
type CompletionStore interface {
	Completed(addr string) []string
	MarkCompleted(addr, id string) error
}

// Status is the outcome of one Advance call.
type Status int

const (
	StatusIdle      Status = iota // Nothing pending
	StatusCompleted               // A task was confirmed and recorded
	StatusAdvanced                // Progress without completion (card generated)
	StatusFailed                  // Nothing confirmed; the task stays pending
)

// String returns a human-readable description of the status.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusAdvanced:
		return "advanced"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Result reports which task Advance worked on and how it ended.
type Result struct {
	TaskID string
	Status Status
}

// Controller advances one wallet through the configured task list.
type Controller struct {
	ops    Operations
	store  CompletionStore
	tasks  []config.Task
	pacing time.Duration
	sleep  request.SleepFunc
	log    *logging.Logger
}

// ControllerOptions holds the dependencies of a Controller.
// Zero Pacing means no pause; nil Sleep and Logger use the defaults.
type ControllerOptions struct {
	Ops    Operations
	Store  CompletionStore
	Tasks  []config.Task
	Pacing time.Duration
	Sleep  request.SleepFunc
	Logger *logging.Logger
}

// NewController creates a Controller from opts.
func NewController(opts ControllerOptions) *Controller {
	c := &Controller{
		ops:    opts.Ops,
		store:  opts.Store,
		tasks:  opts.Tasks,
		pacing: opts.Pacing,
		sleep:  opts.Sleep,
		log:    opts.Logger,
	}
	if c.sleep == nil {
		c.sleep = request.Sleep
	}
	if c.log == nil {
		c.log = logging.Default()
	}
	return c
}

// Advance performs at most one pending task.
func (c *Controller) Advance(ctx context.Context) Result {
	addr := c.ops.Address()
	action := NextAction(c.tasks, c.store.Completed(addr))
	if action.Kind == ActionIdle {
		c.log.Info("All tasks completed")
		return Result{Status: StatusIdle}
	}

	task := action.Task
	log := c.log.With("task", task.ID)

	if err := c.sleep(ctx, c.pacing); err != nil {
		log.Warn("Interrupted before task", "error", err)
		return Result{TaskID: task.ID, Status: StatusFailed}
	}

	if action.Kind == ActionProof {
		return c.advanceProof(ctx, task, log)
	}
	return c.complete(ctx, task, log)
}

func (c *Controller) advanceProof(ctx context.Context, task config.Task, log *logging.Logger) Result {
	status, ok := c.ops.ProofStatus(ctx)
	if !ok {
		return Result{TaskID: task.ID, Status: StatusFailed}
	}

	step := NextProofStep(status)
	log.Debug("Proof step", "step", step)

	switch step {
	case StepSubmit:
		if !c.ops.SubmitProof(ctx) {
			return Result{TaskID: task.ID, Status: StatusFailed}
		}
		// The proof is accepted at this point; a missing card does not hold
		// back the task.
		if !c.ops.GenerateCard(ctx) {
			log.Warn("Card generation failed after proof submission, completing task anyway")
		}
		return c.complete(ctx, task, log)
	case StepGenerateCard:
		if !c.ops.GenerateCard(ctx) {
			return Result{TaskID: task.ID, Status: StatusFailed}
		}
		return Result{TaskID: task.ID, Status: StatusAdvanced}
	default:
		return c.complete(ctx, task, log)
	}
}

func (c *Controller) complete(ctx context.Context, task config.Task, log *logging.Logger) Result {
	result := c.ops.CompleteTask(ctx, task)
	if !result.Confirmed() {
		return Result{TaskID: task.ID, Status: StatusFailed}
	}

	if err := c.store.MarkCompleted(c.ops.Address(), task.ID); err != nil {
		log.Error("Failed to record completed task", "error", err)
		return Result{TaskID: task.ID, Status: StatusFailed}
	}
	log.Debug("Recorded completed task", "result", result)
	return Result{TaskID: task.ID, Status: StatusCompleted}
}
