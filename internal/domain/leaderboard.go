package domain

// RankedPlayer is a leaderboard row: a player summary with its 1-based rank
type RankedPlayer struct {
	Rank int64 `json:"rank"`
	PlayerSummary
}

// Pagination describes a leaderboard page
type Pagination struct {
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int64 `json:"totalPages"`
	TotalPlayers int64 `json:"totalPlayers"`
}

// LeaderboardPage is one page of the full leaderboard
type LeaderboardPage struct {
	Players    []RankedPlayer
	Pagination Pagination
}

// NearbyPlayer is the trimmed projection used for rank neighbors
type NearbyPlayer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
	HighScore      int64  `json:"highScore"`
}

// NearbyPlayers holds up to two players on either side of a subject's rank.
// Above is ordered closest-first-from-the-subject's view (ascending score),
// Below closest-first (descending score).
type NearbyPlayers struct {
	Above []NearbyPlayer `json:"above"`
	Below []NearbyPlayer `json:"below"`
}

// RankedPlayerDetail is the subject player's view inside a ranking response
type RankedPlayerDetail struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	HighScore      int64  `json:"highScore"`
	GamesPlayed    int64  `json:"gamesPlayed"`
	TotalScore     int64  `json:"totalScore"`
	AverageScore   int64  `json:"averageScore"`
}

// PlayerRanking is the full rank/percentile/neighbors view for one player
type PlayerRanking struct {
	Player        RankedPlayerDetail `json:"player"`
	Rank          int64              `json:"rank"`
	TotalPlayers  int64              `json:"totalPlayers"`
	Percentile    int64              `json:"percentile"`
	NearbyPlayers NearbyPlayers      `json:"nearbyPlayers"`
}

// TopPlayerRef is the current top scorer in the global stats view
type TopPlayerRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
	HighScore      int64  `json:"highScore"`
}

// LeaderboardStats contains global totals across all players
type LeaderboardStats struct {
	TotalPlayers     int64         `json:"totalPlayers"`
	TotalGamesPlayed int64         `json:"totalGamesPlayed"`
	TopPlayer        *TopPlayerRef `json:"topPlayer"`
}
