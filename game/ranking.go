package game

import (
	"cmp"
	"math"
	"slices"
)

type RankEntry struct {
	Position            int     `json:"position"`
	PlayerId            string  `json:"playerId"`
	Name                string  `json:"name"`
	Score               int     `json:"score"`
	TotalLatencySeconds float64 `json:"totalLatencySeconds"`
	CorrectAnswers      int     `json:"correctAnswers"`
}

// computeRankings orders by score descending, then total latency ascending.
// Full ties keep the order of players, which is join order.
func computeRankings(players []*Player) []RankEntry {
	entries := make([]RankEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, RankEntry{
			PlayerId:            p.id,
			Name:                p.name,
			Score:               p.score,
			TotalLatencySeconds: p.totalLatency(),
			CorrectAnswers:      p.correctAnswers(),
		})
	}

	slices.SortStableFunc(entries, func(a, b RankEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.TotalLatencySeconds, b.TotalLatencySeconds)
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// scoreAnswer clamps the reported latency into [0, limit] and returns the
// clamped latency with the points earned.
func scoreAnswer(correct bool, points int, limitSeconds int, latency float64) (float64, int) {
	limit := float64(limitSeconds)
	if math.IsNaN(latency) || latency < 0 {
		latency = 0
	}
	if latency > limit {
		latency = limit
	}
	if !correct {
		return latency, 0
	}
	return latency, points + int(math.Floor(math.Max(0, limit-latency)))
}
