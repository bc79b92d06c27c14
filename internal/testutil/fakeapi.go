package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/thruflo/lightnode/internal/config"
)

// Response is one canned reply of the fake API.
type Response struct {
	Status int
	Body   string
}

// OK is a 200 with body.
func OK(body string) Response {
	return Response{Status: http.StatusOK, Body: body}
}

// Call is one request received by the fake API.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

// FakeAPI is an httptest server standing in for the referral API, the
// dashboard and the card API. Routes are exact METHOD+path matches; unrouted
// requests get a 404, which the request client treats as terminal.
type FakeAPI struct {
	Server *httptest.Server

	mu     sync.Mutex
	routes map[string][]Response
	served map[string]int
	calls  []Call
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		routes: make(map[string][]Response),
		served: make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// API returns endpoints that all point at the fake server.
func (f *FakeAPI) API() config.APIConfig {
	return config.APIConfig{
		ReferralURL:  f.Server.URL + "/api",
		DashboardURL: f.Server.URL,
		CardURL:      f.Server.URL + "/card-api",
	}
}

// Reply answers method+path with the given responses in order, repeating the
// last one once they run out. It replaces any previous script for the route.
func (f *FakeAPI) Reply(method, path string, responses ...Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = responses
	f.served[method+" "+path] = 0
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	script, ok := f.routes[key]
	var resp Response
	if ok && len(script) > 0 {
		n := f.served[key]
		if n >= len(script) {
			n = len(script) - 1
		}
		resp = script[n]
		f.served[key]++
	} else {
		resp = Response{Status: http.StatusNotFound, Body: `{"message":"not found"}`}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	io.WriteString(w, resp.Body)
}

// Calls returns every request received so far.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the requests received for method+path.
func (f *FakeAPI) CallsTo(method, path string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many requests were received for method+path.
func (f *FakeAPI) Count(method, path string) int {
	return len(f.CallsTo(method, path))
}

// Paths returns "METHOD path" for every call in arrival order.
func (f *FakeAPI) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

// Endpoint paths as seen by the fake server for address addr.
func NodeStatusPath(addr string) string    { return "/api/light-node/node-status/" + addr }
func NodeStartPath(addr string) string     { return "/api/light-node/node-action/" + addr + "/start" }
func NodeStopPath(addr string) string      { return "/api/light-node/node-action/" + addr + "/stop" }
func WalletDetailsPath(addr string) string { return "/api/referral/wallet-details/" + addr }
func RegisterPath(refCode string) string   { return "/api/referral/register-wallet/" + refCode }
func TaskPath(id string) string            { return "/api/task/" + id }

// Fixed endpoint paths.
const (
	VerifyCodePath  = "/api/referral/verify-referral-code"
	ClaimPointsPath = "/api/light-node/claim-node-points"
	ProofStatusPath = "/api/proofs/status"
	SendProofPath   = "/api/send-proof"
	CardPath        = "/card-api/card/shareable-card"
)

// RouteHappyPath answers every endpoint for addr with a success body: node
// running, last claim recent, proof and card done, every task completes.
func (f *FakeAPI) RouteHappyPath(addr string, tasks []config.Task) {
	f.Reply(http.MethodGet, NodeStatusPath(addr), OK(`{"data":{"startTimestamp":1739000000}}`))
	f.Reply(http.MethodPost, NodeStartPath(addr), OK(`{"message":"node action executed successfully"}`))
	f.Reply(http.MethodPost, NodeStopPath(addr), OK(`{"message":"node action executed successfully"}`))
	f.Reply(http.MethodGet, WalletDetailsPath(addr), OK(`{"data":{"nodePoints":1200,"lastClaimed":"2099-01-01T00:00:00.000Z"}}`))
	f.Reply(http.MethodPost, ClaimPointsPath, OK(`{"message":"node points claimed successfully"}`))
	f.Reply(http.MethodGet, ProofStatusPath, OK(`{"hasSubmitted":true,"isCardGenerated":true}`))
	f.Reply(http.MethodPost, SendProofPath, OK(`{"message":"proof submitted successfully"}`))
	f.Reply(http.MethodPost, CardPath, OK(`{"data":{"url":"https://cards.example/1.png"}}`))
	f.Reply(http.MethodPost, VerifyCodePath, OK(`{"data":{"valid":true}}`))
	f.Reply(http.MethodPost, RegisterPath(config.DefaultRefCode), OK(`{"message":"registered"}`))
	for _, task := range tasks {
		f.Reply(http.MethodPost, TaskPath(task.ID), OK(`{"message":"task completed successfully"}`))
	}
}
