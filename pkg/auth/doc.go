// Package auth implements the token-gated admin access control in front of
// the analytics core.
//
// Two pieces cooperate:
//
// TokenCodec issues and verifies signed, time-bounded identity tokens
// (HMAC-SHA256 JWTs carrying subject, issue time, expiry and a unique id).
// Verification is a pure, synchronous check with no server-side state;
// tokens are valid until expiry and there is no revocation list.
//
// Gate resolves a verified token to an Identity through a UserDirectory and
// enforces the active/admin policy. Its checks are strictly ordered: a bad
// or expired token and an unresolvable subject both come back as
// Unauthorized (deliberately indistinguishable, so the gate cannot be used
// to enumerate accounts), while a resolved but inactive or non-admin
// identity comes back as Forbidden. The gate records a best-effort
// last-login timestamp; failures to persist it are logged and never fail
// the authorization.
package auth
