package domain

import "time"

// SourceRank is one row of the misinformation-source leaderboard. Rank is
// dense: ties share a rank and the next distinct count increments it by one.
type SourceRank struct {
	Rank   int    `json:"rank"`
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

type RankingSnapshot struct {
	Ranks       []SourceRank `json:"ranks"`
	GeneratedAt time.Time    `json:"generated_at"`
}
