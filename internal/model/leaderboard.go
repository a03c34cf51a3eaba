package model

// LeaderboardEntry is a stored leaderboard row.
// Usernames may repeat: every submission is its own row.
type LeaderboardEntry struct {
	Username string
	Score    int
}

// RankedEntry is a leaderboard row with its 1-based position.
// Rank is computed on every read and never stored.
type RankedEntry struct {
	Rank     int
	Username string
	Score    int
}
