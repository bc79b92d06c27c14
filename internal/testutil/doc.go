// Package testutil provides shared test helpers for lightnode.
//
// # Fake API
//
// FakeAPI is an httptest server that plays the referral API, the dashboard
// and the card API at once. Routes are scripted per METHOD+path with Reply;
// RouteHappyPath scripts every endpoint for one wallet. Every request is
// recorded and can be inspected with Calls, CallsTo, Count and Paths.
//
// # Environment
//
//   - SetupTestDir(t, api, wallets, tasks) writes a .lightnode directory
//     whose config points at a FakeAPI with zero delays
//   - WriteTestFile, MustMarshalJSON
//   - Context(t, fallback) and NoSleep for pipelines under test
//
// # Fixtures and assertions
//
//   - PrivateKeyA/B/C with AddressA/B/C, SampleWallets, SampleTasks, PlainTasks
//   - AssertCompleted(t, store, addr, ids...)
//   - AssertSignedBy(t, call, phrase, addr) recovers the signer of a request
//
// Usage:
//
//	api := testutil.NewFakeAPI(t)
//	api.RouteHappyPath(testutil.AddressA, testutil.PlainTasks())
//	dir, store := testutil.SetupTestDir(t, api.API(), testutil.SampleWallets()[:1], testutil.PlainTasks())
package testutil
