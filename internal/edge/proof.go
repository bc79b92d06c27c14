package edge

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ProofStatus is the dashboard's view of the wallet's proof chain.
type ProofStatus struct {
	HasSubmitted    bool `json:"hasSubmitted"`
	IsCardGenerated bool `json:"isCardGenerated"`
}

const proofPhrase = "I am submitting a proof for LayerEdge at"

// jsDateLayout matches JavaScript's Date.prototype.toString in UTC, which is
// what the dashboard embeds in proof messages.
const jsDateLayout = "Mon Jan 02 2006 15:04:05 GMT-0700"

// ProofStatus fetches the proof status. ok is false when the request failed.
func (c *Client) ProofStatus(ctx context.Context) (status ProofStatus, ok bool) {
	endpoint := c.dashboardURL("api", "proofs", "status") + "?address=" + url.QueryEscape(c.Address())
	out := c.req.Send(ctx, http.MethodGet, endpoint, nil)

	if !hasBody(out) || out.Decode(&status) != nil {
		c.log.Warn("Failed to fetch proof status", "outcome", out.Kind)
		return ProofStatus{}, false
	}
	c.log.Debug("Proof status", "submitted", status.HasSubmitted, "card_generated", status.IsCardGenerated)
	return status, true
}

type proofRequest struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Address   string `json:"address"`
	Proof     string `json:"proof"`
}

// SubmitProof sends the signed proof submission.
func (c *Client) SubmitProof(ctx context.Context) bool {
	message := proofPhrase + " " + c.now().UTC().Format(jsDateLayout) + " (Coordinated Universal Time)"
	sig, err := c.signer.SignMessage(message)
	if err != nil {
		c.log.Error("Failed to sign proof", "error", err)
		return false
	}

	out := c.req.Send(ctx, http.MethodPost, c.dashboardURL("api", "send-proof"), proofRequest{
		Message:   message,
		Signature: sig,
		Address:   c.Address(),
		Proof:     c.Address(),
	})

	var resp envelope
	if out.OK() && out.Decode(&resp) == nil && strings.Contains(resp.Message, "successfully") {
		c.log.Success("Proof submitted", "body", out.Body)
		return true
	}
	c.log.Warn("Failed to submit proof", "outcome", out.Kind)
	return false
}

type cardRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// GenerateCard generates the shareable proof card.
func (c *Client) GenerateCard(ctx context.Context) bool {
	out := c.req.Send(ctx, http.MethodPost, c.cardURL("card", "shareable-card"),
		cardRequest{WalletAddress: c.Address()})

	if hasBody(out) {
		c.log.Success("Generated card", "body", out.Body)
		return true
	}
	c.log.Error("Failed to generate card", "outcome", out.Kind)
	return false
}
