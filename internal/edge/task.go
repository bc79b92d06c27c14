package edge

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/request"
)

// AlreadyCompletedMarker is matched case-insensitively against the message of
// a 409 from a task endpoint.
const AlreadyCompletedMarker = "already completed"

// TaskResult is the outcome of one task completion request.
type TaskResult int

const (
	// TaskFailed means nothing was confirmed; the task stays pending.
	TaskFailed TaskResult = iota
	// TaskDone means the server confirmed completion.
	TaskDone
	// TaskAlreadyDone means the server reported the task was completed earlier.
	TaskAlreadyDone
)

func (r TaskResult) String() string {
	switch r {
	case TaskDone:
		return "done"
	case TaskAlreadyDone:
		return "already_done"
	default:
		return "failed"
	}
}

// Confirmed reports whether the task may be recorded as completed.
func (r TaskResult) Confirmed() bool {
	return r == TaskDone || r == TaskAlreadyDone
}

// CompleteTask sends the signed completion request for task.
func (c *Client) CompleteTask(ctx context.Context, task config.Task) TaskResult {
	log := c.log.With("task", task.ID)

	payload, err := c.sign(task.Message, true)
	if err != nil {
		log.Error("Failed to sign task", "error", err)
		return TaskFailed
	}

	out := c.req.Send(ctx, http.MethodPost, c.referralURL("task", task.ID), payload, request.AllowConflict())

	switch out.Kind {
	case request.KindSuccess:
		var resp envelope
		if out.Decode(&resp) == nil && strings.Contains(resp.Message, "successfully") {
			log.Success("Completed task " + task.Title)
			return TaskDone
		}
	case request.KindConflict:
		if isAlreadyCompleted(out.Body) {
			log.Info("Task " + task.Title + " already completed")
			return TaskAlreadyDone
		}
	}

	log.Warn("Failed to complete task "+task.Title, "outcome", out.Kind, "body", out.Body)
	return TaskFailed
}

// isAlreadyCompleted checks the JSON message field, falling back to the raw
// body when the conflict body is not a JSON object.
func isAlreadyCompleted(body []byte) bool {
	text := string(body)
	var resp envelope
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		text = resp.Message
	}
	return strings.Contains(strings.ToLower(text), AlreadyCompletedMarker)
}
