package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/thruflo/lightnode/internal/request"
)

// NodeActionSucceeded is the message the node-action endpoint returns on start.
const NodeActionSucceeded = "node action executed successfully"

const (
	activationPhrase   = "Node activation request for"
	deactivationPhrase = "Node deactivation request for"
)

// ConnectNode starts the light node session.
func (c *Client) ConnectNode(ctx context.Context) bool {
	payload, err := c.sign(activationPhrase, false)
	if err != nil {
		c.log.Error("Failed to sign node activation", "error", err)
		return false
	}

	out := c.req.Send(ctx, http.MethodPost,
		c.referralURL("light-node", "node-action", c.Address(), "start"), payload)

	var resp envelope
	if out.OK() && out.Decode(&resp) == nil && resp.Message == NodeActionSucceeded {
		c.log.Success("Connected node")
		return true
	}
	c.log.Warn("Failed to connect node", "outcome", out.Kind)
	return false
}

// StopNode stops the light node session, which also claims accrued points.
func (c *Client) StopNode(ctx context.Context) bool {
	payload, err := c.sign(deactivationPhrase, false)
	if err != nil {
		c.log.Error("Failed to sign node deactivation", "error", err)
		return false
	}

	out := c.req.Send(ctx, http.MethodPost,
		c.referralURL("light-node", "node-action", c.Address(), "stop"), payload)

	if hasBody(out) {
		c.log.Success("Stopped node and claimed points", "body", out.Body)
		return true
	}
	c.log.Warn("Failed to stop node", "outcome", out.Kind)
	return false
}

type nodeStatusResponse struct {
	Data *struct {
		StartTimestamp json.RawMessage `json:"startTimestamp"`
	} `json:"data"`
}

// CheckNodeStatus reports whether the node is running. An unknown wallet
// (404) is registered on the spot and reported as not running.
func (c *Client) CheckNodeStatus(ctx context.Context) bool {
	out := c.req.Send(ctx, http.MethodGet,
		c.referralURL("light-node", "node-status", c.Address()), nil)

	if out.Kind == request.KindNotFound {
		c.log.Info("Node not found for wallet, registering")
		c.RegisterWallet(ctx)
		return false
	}

	// A missing startTimestamp key is read the same as null: not running.
	var resp nodeStatusResponse
	if out.OK() && out.Decode(&resp) == nil && resp.Data != nil && isSet(resp.Data.StartTimestamp) {
		c.log.Info("Node running", "start_timestamp", string(resp.Data.StartTimestamp))
		return true
	}
	c.log.Warn("Node not running")
	return false
}

func isSet(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
