package chat

import "time"

// lastActiveWindow is how recent the last activity must be for a user to
// count as online.
const lastActiveWindow = 5 * time.Minute

// OnlineAt reports whether a user with the given lastSeen timestamp counts
// as online at the given moment. A user with no recorded activity is never
// online.
func OnlineAt(lastSeen *time.Time, now time.Time) bool {
	return lastSeen != nil && lastSeen.After(now.Add(-lastActiveWindow))
}

// Online reports whether the user is online right now.
func (u *User) Online() bool {
	return OnlineAt(u.LastSeen, time.Now())
}
