package testutil

import "github.com/thruflo/lightnode/internal/config"

// Well-known development keys and their checksummed addresses.
const (
	PrivateKeyA = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	AddressA    = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"

	PrivateKeyB = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	AddressB    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

	PrivateKeyC = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	AddressC    = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

// SampleWallets returns the three development wallets.
func SampleWallets() []config.Wallet {
	return []config.Wallet{
		{Address: AddressA, PrivateKey: PrivateKeyA},
		{Address: AddressB, PrivateKey: PrivateKeyB},
		{Address: AddressC, PrivateKey: PrivateKeyC},
	}
}

// SampleTasks returns a proof task followed by two plain tasks.
// Returns a new slice each time to prevent test interference.
func SampleTasks() []config.Task {
	return []config.Task{
		{ID: config.ProofTaskID, Title: "Submit Proof", Message: "I am claiming my proof submission node points for"},
		{ID: "t1", Title: "Task One", Message: "I am claiming task one for"},
		{ID: "t2", Title: "Task Two", Message: "I am claiming task two for"},
	}
}

// PlainTasks returns two tasks with no proof chain.
func PlainTasks() []config.Task {
	return []config.Task{
		{ID: "t1", Title: "Task One", Message: "I am claiming task one for"},
		{ID: "t2", Title: "Task Two", Message: "I am claiming task two for"},
	}
}
