package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// CheckInInterval is the minimum age of the last claim before checking in again.
const CheckInInterval = 24 * time.Hour

const checkInPhrase = "I am claiming my daily node point for"

type walletDetailsResponse struct {
	Data *struct {
		NodePoints  float64 `json:"nodePoints"`
		LastClaimed json.RawMessage `json:"lastClaimed"`
	} `json:"data"`
}

// CheckNodePoints logs the wallet's points and checks in when the last claim
// is missing or at least CheckInInterval old.
func (c *Client) CheckNodePoints(ctx context.Context) bool {
	out := c.req.Send(ctx, http.MethodGet,
		c.referralURL("referral", "wallet-details", c.Address()), nil)

	var resp walletDetailsResponse
	if !hasBody(out) || out.Decode(&resp) != nil {
		c.log.Error("Failed to check total points", "outcome", out.Kind)
		return false
	}

	var points float64
	var lastClaimed json.RawMessage
	if resp.Data != nil {
		points = resp.Data.NodePoints
		lastClaimed = resp.Data.LastClaimed
	}
	c.log.Info("Total points", "points", points)

	if c.checkInDue(lastClaimed) {
		c.CheckIn(ctx)
	}
	return true
}

// checkInDue treats a missing claim as due. An unparseable timestamp is not
// due, so a format change upstream cannot cause a check-in on every pass.
func (c *Client) checkInDue(lastClaimed json.RawMessage) bool {
	claimed, ok, err := parseClaimed(lastClaimed)
	if err != nil {
		c.log.Warn("Unrecognized lastClaimed timestamp", "last_claimed", string(lastClaimed), "error", err)
		return false
	}
	if !ok {
		return true
	}
	return c.now().Sub(claimed) >= CheckInInterval
}

// parseClaimed accepts an ISO 8601 string or a number of Unix milliseconds.
// ok is false when the value is absent, null or an empty string.
func parseClaimed(raw json.RawMessage) (t time.Time, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false, nil
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, false, fmt.Errorf("lastClaimed is neither a string nor a number: %s", raw)
	}
	return time.UnixMilli(int64(ms)), true, nil
}

// CheckIn claims the daily node points.
func (c *Client) CheckIn(ctx context.Context) bool {
	payload, err := c.sign(checkInPhrase, true)
	if err != nil {
		c.log.Error("Failed to sign check-in", "error", err)
		return false
	}

	out := c.req.Send(ctx, http.MethodPost,
		c.referralURL("light-node", "claim-node-points"), payload)

	if hasBody(out) {
		c.log.Success("Check-in succeeded", "body", out.Body)
		return true
	}
	c.log.Error("Failed to check in", "outcome", out.Kind)
	return false
}
