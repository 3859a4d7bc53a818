package adaptive

import (
	"github.com/dshills/reviewloop/internal/history"
)

// DefaultRewardPath is where the reward matrix is persisted.
const DefaultRewardPath = "reward_matrix.json"

// RewardMatrix summarizes how well recent reviews are paying off: a base
// reward plus the share of attention each category has received.
type RewardMatrix struct {
	BaseReward    float64            `json:"base_reward"`
	PerCategory   map[string]float64 `json:"per_category"`
	HistoryLen    int                `json:"history_len"`
	AvgPriority   float64            `json:"avg_priority"`
	SelfEvalScore *float64           `json:"self_eval_score"`
}

// ComputeRewards builds the reward matrix from review history and an
// optional self-evaluation score.
func ComputeRewards(entries []history.Entry, selfEvalScore *float64) RewardMatrix {
	var sum float64
	counts := map[string]int{}
	for _, e := range entries {
		sum += float64(e.PriorityScore)
		cat := e.Category
		if cat == "" {
			cat = "general"
		}
		counts[cat]++
	}
	var avg float64
	if len(entries) > 0 {
		avg = sum / float64(len(entries))
	}

	base := 50 + avg*0.2
	if selfEvalScore != nil {
		base += *selfEvalScore * 0.3
	}

	total := len(entries)
	if total == 0 {
		total = 1
	}
	perCat := make(map[string]float64, len(counts))
	for cat, n := range counts {
		perCat[cat] = round2(float64(n) / float64(total) * 100)
	}

	return RewardMatrix{
		BaseReward:    round2(base),
		PerCategory:   perCat,
		HistoryLen:    len(entries),
		AvgPriority:   round2(avg),
		SelfEvalScore: selfEvalScore,
	}
}

// AdjustWeights tunes a weight set using the reward matrix: high average
// priority deepens analysis, otherwise depth is dampened slightly, and a
// high base reward nudges the security bias up.
func AdjustWeights(w Weights, r RewardMatrix) Weights {
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	depth := out["depth_multiplier"]
	if depth == 0 {
		depth = 1.0
	}
	if r.AvgPriority > 60 {
		out["depth_multiplier"] = round3(depth * 1.05)
	} else {
		out["depth_multiplier"] = round3(depth * 0.98)
	}
	if r.BaseReward > 60 {
		sec := out["security_bias"]
		if sec == 0 {
			sec = 1.0
		}
		out["security_bias"] = round3(sec * 1.03)
	}
	return out
}
