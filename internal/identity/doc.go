// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package identity implements the Jobify user-identity core: account
// registration, credential verification, session-token issuance, profile
// updates with partial-merge semantics, and password recovery.
//
// # Domain Types
//
// A User is created with NewUser, which validates the username, email and
// password hash. The reset-token pair is modelled as a single optional
// ResetTokenState so the hash and its expiry can only be set or cleared
// together.
//
// # Services
//
// Service types coordinate domain operations:
//   - CredentialService - register and login
//   - UserService - read, list, profile merge, photo upload, delete
//   - RecoveryFlow - request, check and complete a password reset
//
// Services are created with New* constructors that validate dependencies.
// Persistence, mail delivery and image storage are consumed through the
// UserStore, Notifier and ImageStore interfaces.
//
// # Errors
//
// Every error returned by a service carries an oops code. KindOf maps the
// code onto the closed set of Kind values that callers are allowed to see.
package identity
