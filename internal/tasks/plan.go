// Package tasks decides which task a wallet works on next and carries it out.
//
// The decision is split into two pure functions, NextAction and NextProofStep,
// so the progression can be tested without a network. Controller executes at
// most one task per Advance call and records it only after the server has
// confirmed it.
package tasks

import (
	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/edge"
)

// ActionKind says what the next pending task requires.
type ActionKind int

const (
	ActionIdle     ActionKind = iota // Every task is completed
	ActionProof                      // Proof chain task
	ActionComplete                   // Plain signed completion
)

// String returns a human-readable description of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionProof:
		return "proof"
	case ActionComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Action is the next thing to do. Task is zero for ActionIdle.
type Action struct {
	Kind ActionKind
	Task config.Task
}

// NextAction returns the first task in order whose id is not in completed.
func NextAction(tasks []config.Task, completed []string) Action {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	for _, task := range tasks {
		if done[task.ID] {
			continue
		}
		if task.ID == config.ProofTaskID {
			return Action{Kind: ActionProof, Task: task}
		}
		return Action{Kind: ActionComplete, Task: task}
	}
	return Action{Kind: ActionIdle}
}

// ProofStep is the position within the proof chain.
type ProofStep int

const (
	StepSubmit       ProofStep = iota // Proof not submitted yet
	StepGenerateCard                  // Submitted, card missing
	StepComplete                      // Submitted and card generated
)

// String returns a human-readable description of the proof step.
func (s ProofStep) String() string {
	switch s {
	case StepGenerateCard:
		return "generate_card"
	case StepComplete:
		return "complete"
	default:
		return "submit"
	}
}

// NextProofStep maps the dashboard's proof status to the next step.
func NextProofStep(status edge.ProofStatus) ProofStep {
	switch {
	case !status.HasSubmitted:
		return StepSubmit
	case !status.IsCardGenerated:
		return StepGenerateCard
	default:
		return StepComplete
	}
}
