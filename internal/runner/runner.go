// Package runner wires the per-wallet pipeline together and fans it out over
// every configured wallet.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/edge"
	"github.com/thruflo/lightnode/internal/identity"
	"github.com/thruflo/lightnode/internal/logging"
	"github.com/thruflo/lightnode/internal/request"
	"github.com/thruflo/lightnode/internal/state"
	"github.com/thruflo/lightnode/internal/tasks"
	"github.com/thruflo/lightnode/internal/transport"
)

// Runner executes passes over a set of wallets.
type Runner struct {
	cfg   *config.Config
	store *state.Store
	log   *logging.Logger
	sleep request.SleepFunc
	now   func() time.Time
	runID func() string
}

// Options holds the dependencies of a Runner. Nil Sleep, Clock, Logger and
// RunID use the production defaults.
type Options struct {
	Config *config.Config
	Store  *state.Store
	Logger *logging.Logger
	Sleep  request.SleepFunc
	Clock  func() time.Time
	RunID  func() string
}

// New creates a Runner from opts.
func New(opts Options) *Runner {
	r := &Runner{
		cfg:   opts.Config,
		store: opts.Store,
		log:   opts.Logger,
		sleep: opts.Sleep,
		now:   opts.Clock,
		runID: opts.RunID,
	}
	if r.log == nil {
		r.log = logging.Default()
	}
	if r.sleep == nil {
		r.sleep = request.Sleep
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.runID == nil {
		r.runID = func() string { return uuid.NewString() }
	}
	return r
}

// WalletResult is the outcome of one wallet's pipeline in a pass.
type WalletResult struct {
	Address string
	Proxy   string
	Running bool
	Task    tasks.Result
	Err     error
}

// PassResult collects the wallet results of one pass, in wallet order.
type PassResult struct {
	RunID   string
	Wallets []WalletResult
}

// Failed returns how many wallets ended with an error or a failed task.
func (p PassResult) Failed() int {
	n := 0
	for _, w := range p.Wallets {
		if w.Err != nil || w.Task.Status == tasks.StatusFailed {
			n++
		}
	}
	return n
}

// ProxyFor assigns proxies round-robin. It returns "" when there are none.
func ProxyFor(proxies []string, i int) string {
	if len(proxies) == 0 {
		return ""
	}
	return proxies[i%len(proxies)]
}

// client builds identity, transport, request client and edge client for one
// wallet, all logging with the wallet's fields.
func (r *Runner) client(wallet config.Wallet, proxy string, log *logging.Logger) (*edge.Client, error) {
	id, err := identity.FromPrivateKey(wallet.PrivateKey)
	if err != nil {
		return nil, err
	}
	if wallet.Address != "" && !strings.EqualFold(wallet.Address, id.Address()) {
		log.Warn("Wallet address does not match private key, using derived address", "derived", id.Address())
	}

	hc, err := transport.NewClient(proxy, r.cfg.Request.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %s: %w", transport.Redact(proxy), err)
	}

	req := request.NewClient(
		request.WithHTTPClient(hc),
		request.WithHeaders(request.DefaultHeaders(r.cfg.API.DashboardURL)),
		request.WithPolicy(request.NewPolicy(r.cfg.Request.RateLimitDelay, r.cfg.Request.RetryDelay)),
		request.WithMaxAttempts(r.cfg.Request.MaxAttempts),
		request.WithProxy(proxy),
		request.WithLogger(log),
		request.WithSleep(r.sleep),
	)

	return edge.NewClient(id, req, r.cfg.API,
		edge.WithLogger(log),
		edge.WithClock(r.now),
		edge.WithRefCode(r.cfg.RefCode),
	), nil
}

func (r *Runner) walletLogger(base *logging.Logger, wallet config.Wallet, proxy string) *logging.Logger {
	fields := map[string]interface{}{"wallet": wallet.Address}
	if proxy != "" {
		fields["proxy"] = transport.Redact(proxy)
	}
	return base.WithFields(fields)
}

// RunWallet runs one pass of the pipeline for wallet: node status, connect
// when not running, points and check-in, then at most one task.
func (r *Runner) RunWallet(ctx context.Context, wallet config.Wallet, proxy string) WalletResult {
	return r.runWallet(ctx, r.log, wallet, proxy)
}

func (r *Runner) runWallet(ctx context.Context, base *logging.Logger, wallet config.Wallet, proxy string) WalletResult {
	log := r.walletLogger(base, wallet, proxy)
	res := WalletResult{Address: wallet.Address, Proxy: proxy}

	c, err := r.client(wallet, proxy, log)
	if err != nil {
		log.Error("Failed to set up wallet", "error", err)
		res.Err = err
		return res
	}
	res.Address = c.Address()

	res.Running = c.CheckNodeStatus(ctx)
	if !res.Running {
		log.Info("Connecting node")
		res.Running = c.ConnectNode(ctx)
	}

	c.CheckNodePoints(ctx)

	ctrl := tasks.NewController(tasks.ControllerOptions{
		Ops:    c,
		Store:  r.store,
		Tasks:  r.cfg.Tasks,
		Pacing: r.cfg.TaskDelay,
		Sleep:  r.sleep,
		Logger: log,
	})
	res.Task = ctrl.Advance(ctx)
	return res
}

// RunAll runs RunWallet for every wallet with at most cfg.Concurrency in
// flight. One wallet failing never stops the others. Copies of the same
// wallet in flight at once share a single pipeline.
func (r *Runner) RunAll(ctx context.Context, wallets []config.Wallet, proxies []string) PassResult {
	pass := PassResult{RunID: r.runID(), Wallets: make([]WalletResult, len(wallets))}
	log := r.log.With("run", pass.RunID)
	log.Info("Starting pass", "wallets", len(wallets), "proxies", len(proxies))

	// Pick up records written by other processes since the last pass.
	if err := r.store.Load(); err != nil {
		log.Warn("Failed to reload state, using records in memory", "error", err)
	}

	var sf singleflight.Group
	r.each(ctx, wallets, func(ctx context.Context, i int, w config.Wallet) {
		proxy := ProxyFor(proxies, i)
		if err := ctx.Err(); err != nil {
			pass.Wallets[i] = WalletResult{Address: w.Address, Proxy: proxy, Err: err}
			return
		}
		v, _, _ := sf.Do(dedupeKey(w), func() (interface{}, error) {
			return r.runWallet(ctx, log, w, proxy), nil
		})
		pass.Wallets[i] = v.(WalletResult)
	})

	log.Info("Pass finished", "wallets", len(wallets), "failed", pass.Failed())
	return pass
}

// StopAll stops every wallet's node and returns how many succeeded.
func (r *Runner) StopAll(ctx context.Context, wallets []config.Wallet, proxies []string) int {
	return r.countEach(ctx, wallets, proxies, func(ctx context.Context, c *edge.Client) bool {
		return c.StopNode(ctx)
	})
}

// RegisterAll verifies the referral code and registers every wallet under
// it. It returns how many wallets were registered.
func (r *Runner) RegisterAll(ctx context.Context, wallets []config.Wallet, proxies []string) int {
	return r.countEach(ctx, wallets, proxies, func(ctx context.Context, c *edge.Client) bool {
		if !c.CheckInvite(ctx) {
			return false
		}
		return c.RegisterWallet(ctx)
	})
}

func (r *Runner) countEach(ctx context.Context, wallets []config.Wallet, proxies []string, op func(context.Context, *edge.Client) bool) int {
	ok := make([]bool, len(wallets))
	r.each(ctx, wallets, func(ctx context.Context, i int, w config.Wallet) {
		if ctx.Err() != nil {
			return
		}
		proxy := ProxyFor(proxies, i)
		log := r.walletLogger(r.log, w, proxy)
		c, err := r.client(w, proxy, log)
		if err != nil {
			log.Error("Failed to set up wallet", "error", err)
			return
		}
		ok[i] = op(ctx, c)
	})

	n := 0
	for _, v := range ok {
		if v {
			n++
		}
	}
	return n
}

// each calls fn for every wallet on a bounded errgroup and waits.
func (r *Runner) each(ctx context.Context, wallets []config.Wallet, fn func(context.Context, int, config.Wallet)) {
	var g errgroup.Group
	g.SetLimit(max(r.cfg.Concurrency, 1))

	for i, w := range wallets {
		g.Go(func() error {
			fn(ctx, i, w)
			return nil
		})
	}
	_ = g.Wait()
}

func dedupeKey(w config.Wallet) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(w.PrivateKey), "0x"))
}

// Loop runs passes every interval until ctx is cancelled. With once set it
// runs a single pass.
func (r *Runner) Loop(ctx context.Context, wallets []config.Wallet, proxies []string, interval time.Duration, once bool) error {
	for {
		r.RunAll(ctx, wallets, proxies)
		if once {
			return nil
		}

		r.log.Info("Waiting for next pass", "interval", interval)
		if err := r.sleep(ctx, interval); err != nil {
			return err
		}
	}
}
