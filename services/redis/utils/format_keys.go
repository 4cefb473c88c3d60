package utils

import "fmt"

// FormatPresenceKey builds the key for a user's presence lease.
// Key format: "presence:{username}"
func FormatPresenceKey(username string) string {
	return fmt.Sprintf("presence:%s", username)
}

// FormatSessionKey builds the key for a cached game session snapshot.
// Key format: "session:{id}"
func FormatSessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
