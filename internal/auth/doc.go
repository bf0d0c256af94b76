// SPDX-License-Identifier: Apache-2.0

// Package auth implements the credential-authentication core: password
// hashing, the local credential strategy, session-identity serialization,
// and the signup/login/logout flows.
//
// # Domain Types
//
// User records should be created through the factories:
//   - NewUser - creates a password-backed record; the secret is hashed
//     exactly once, here, and never again on any later save
//   - NewProviderUser - creates a provider-only record with no password
//
// Direct struct initialization bypasses normalization and may create
// invalid state. Repository implementations receive pre-validated records
// from these factories.
//
// # Services
//
// Service orchestrates the flows. It is handed a session.Handle per call;
// the core never reaches into an ambient request object. All failures are
// typed oops errors (see the Code* constants) and no secret is ever logged.
package auth
