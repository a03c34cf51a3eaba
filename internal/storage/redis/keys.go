package redis

import (
	"fmt"

	"github.com/mcoot/colorsort/internal/model"
)

// Key prefix for all colorsort data
const keyPrefix = "colorsort"

// sessionSeqKey returns the key of the session id counter
func sessionSeqKey() string {
	return keyPrefix + ":session_seq"
}

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%d", keyPrefix, id)
}

// accountKey returns the Redis key for an Account
func accountKey(username string) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, username)
}

// leaderboardKey returns the key of the LIST holding leaderboard rows in rank order
func leaderboardKey() string {
	return keyPrefix + ":leaderboard"
}
