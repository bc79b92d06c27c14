package edge

import (
	"context"
	"net/http"
)

type inviteRequest struct {
	InviteCode string `json:"invite_code"`
}

type inviteResponse struct {
	Data struct {
		Valid bool `json:"valid"`
	} `json:"data"`
}

// CheckInvite verifies the configured referral code.
func (c *Client) CheckInvite(ctx context.Context) bool {
	out := c.req.Send(ctx, http.MethodPost,
		c.referralURL("referral", "verify-referral-code"),
		inviteRequest{InviteCode: c.refCode})

	var resp inviteResponse
	if out.OK() && out.Decode(&resp) == nil && resp.Data.Valid {
		c.log.Info("Invite code valid", "ref_code", c.refCode)
		return true
	}
	c.log.Error("Failed to check invite", "ref_code", c.refCode, "outcome", out.Kind)
	return false
}

type registerRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// RegisterWallet registers the wallet under the referral code.
func (c *Client) RegisterWallet(ctx context.Context) bool {
	out := c.req.Send(ctx, http.MethodPost,
		c.referralURL("referral", "register-wallet", c.refCode),
		registerRequest{WalletAddress: c.Address()})

	if hasBody(out) {
		c.log.Success("Wallet registered", "body", out.Body)
		return true
	}
	c.log.Error("Failed to register wallet", "outcome", out.Kind)
	return false
}
