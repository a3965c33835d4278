package auth

import "time"

// Lockout helpers are pure functions over the User's counters so the
// authenticator decides when the result is persisted.

// IsAccountLocked reports whether the lockout window is still open.
func IsAccountLocked(u *User, now time.Time) bool {
	if u == nil || u.LockedUntil == nil {
		return false
	}
	return u.LockedUntil.After(now)
}

// RecordFailedLogin increments the failure counter and, once the
// threshold is reached, opens the lockout window. It returns true when
// this attempt locked the account. The lockout itself is silent: the
// caller still reports invalid credentials and the account only shows
// as locked on the next attempt.
func RecordFailedLogin(u *User, threshold int, lockFor time.Duration, now time.Time) bool {
	if u == nil {
		return false
	}

	u.FailedLoginAttempts++

	if threshold > 0 && u.FailedLoginAttempts >= threshold {
		until := now.Add(lockFor)
		u.LockedUntil = &until
		return true
	}

	return false
}

// ClearLockout resets the failure counter and closes any lockout
// window. Invariant: the counter is always 0 when LockedUntil is nil.
func ClearLockout(u *User) {
	if u == nil {
		return
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
}
