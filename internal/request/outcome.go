package request

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies the result of a request.
type Kind int

const (
	// KindSuccess is a 2xx with an empty or JSON body.
	KindSuccess Kind = iota
	// KindNotFound is a 404. Upstream uses it for wallets that are not registered yet.
	KindNotFound
	// KindBadRequest is a 400, or a request that could not be built.
	KindBadRequest
	// KindConflict is a 409 on a request sent with AllowConflict.
	KindConflict
	// KindRateLimited is a 429.
	KindRateLimited
	// KindTransient covers network errors, timeouts, 5xx and malformed bodies.
	KindTransient
	// KindExhausted means the attempt budget ran out on retryable failures.
	KindExhausted
)

var kindNames = map[Kind]string{
	KindSuccess:     "success",
	KindNotFound:    "not_found",
	KindBadRequest:  "bad_request",
	KindConflict:    "conflict",
	KindRateLimited: "rate_limited",
	KindTransient:   "transient",
	KindExhausted:   "exhausted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ErrEmptyBody is returned by Outcome.Decode when there is nothing to decode.
var ErrEmptyBody = errors.New("empty response body")

// ErrMalformedBody marks a 2xx response whose body is not JSON.
var ErrMalformedBody = errors.New("malformed response body")

// StatusError describes an HTTP status that was not classified as success.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// Outcome is the classified result of Client.Send. It is consumed by the
// calling operation and never persisted.
type Outcome struct {
	Kind       Kind
	StatusCode int
	// Body is the decoded response body of the last attempt, if any.
	Body []byte
	// Err is the last transport or status error. Nil on success.
	Err      error
	Attempts int
}

// OK reports whether the request succeeded.
func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

// Decode unmarshals the body into v.
func (o Outcome) Decode(v any) error {
	if len(o.Body) == 0 {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(o.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
