// Package auth implements credential authentication and bearer token
// lifecycle management: registration, the login/lockout state machine,
// single-use refresh token rotation, and role/permission resolution.
//
// Lockout:
//   - Users carry a failure counter and a lockout window. The helpers
//     in lockout.go are pure functions over those fields; the Auther
//     decides when the result is persisted, and failed-attempt updates
//     commit even when the login itself is rejected.
//
// Token rotation:
//   - Refresh tokens are single use. The ledger row for the presented
//     token is revoked with a conditional update in the same
//     transaction that records its replacement; a replay or a lost
//     race both surface as an invalid token.
//
// Authorization context:
//   - Access tokens embed ROLE_-prefixed role names plus raw permission
//     names, recomputed from the persisted role graph at issuance. Use
//     WithClaimsContext/HasAuthority to carry verified claims to
//     downstream authorization checks.
package auth
