// Package edge implements the signed remote operations against the LayerEdge
// light-node API. Every operation reports plain success or failure; the
// classification of failures happens in package request and is resolved here
// into the operation's own result.
package edge

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/thruflo/lightnode/internal/config"
	"github.com/thruflo/lightnode/internal/identity"
	"github.com/thruflo/lightnode/internal/logging"
	"github.com/thruflo/lightnode/internal/request"
)

// Requester sends one classified request. *request.Client implements it.
type Requester interface {
	Send(ctx context.Context, method, url string, body any, opts ...request.SendOption) request.Outcome
}

// Client performs the remote operations for one wallet.
type Client struct {
	signer  identity.Signer
	req     Requester
	api     config.APIConfig
	refCode string
	log     *logging.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithClock replaces time.Now for timestamps and check-in scheduling.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithRefCode sets the referral code used by CheckInvite and RegisterWallet.
func WithRefCode(code string) Option {
	return func(c *Client) {
		c.refCode = code
	}
}

// NewClient creates a Client for signer that sends through req.
func NewClient(signer identity.Signer, req Requester, api config.APIConfig, opts ...Option) *Client {
	c := &Client{
		signer:  signer,
		req:     req,
		api:     api,
		refCode: config.DefaultRefCode,
		log:     logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the wallet address.
func (c *Client) Address() string {
	return c.signer.Address()
}

func (c *Client) referralURL(parts ...string) string {
	return joinURL(c.api.ReferralURL, parts...)
}

func (c *Client) dashboardURL(parts ...string) string {
	return joinURL(c.api.DashboardURL, parts...)
}

func (c *Client) cardURL(parts ...string) string {
	return joinURL(c.api.CardURL, parts...)
}

func joinURL(base string, parts ...string) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(base, "/"))
	for _, p := range parts {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(p))
	}
	return sb.String()
}

// signedPayload is the body shared by the node, check-in and task endpoints.
type signedPayload struct {
	Sign          string `json:"sign"`
	Timestamp     int64  `json:"timestamp"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// sign builds "<phrase> <address> at <unix-millis>" and signs it.
func (c *Client) sign(phrase string, withAddress bool) (signedPayload, error) {
	ts := c.now().UnixMilli()
	message := phrase + " " + c.signer.Address() + " at " + formatMillis(ts)

	sig, err := c.signer.SignMessage(message)
	if err != nil {
		return signedPayload{}, err
	}

	p := signedPayload{Sign: sig, Timestamp: ts}
	if withAddress {
		p.WalletAddress = c.signer.Address()
	}
	return p, nil
}

// envelope is the common response shape: a human message and a data object.
type envelope struct {
	Message string `json:"message"`
}

func formatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}

func hasBody(out request.Outcome) bool {
	body := bytes.TrimSpace(out.Body)
	return out.OK() && len(body) > 0 && !bytes.Equal(body, []byte("null"))
}
