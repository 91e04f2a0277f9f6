package engagement

import "github.com/habitflow/habitflow/internal/domain"

// ApplyPoints evaluates every reward against the point total.
// unlocked' = unlocked || total >= requirement, so a reward never relocks.
// Order is preserved and the input slice is not modified. UnlockedAt is
// stamped with on only for rewards that flip in this call.
func ApplyPoints(rewards []domain.Reward, total int, on domain.DateKey) []domain.Reward {
	out := make([]domain.Reward, len(rewards))
	for i, r := range rewards {
		if !r.Unlocked && total >= r.PointRequirement {
			r.Unlocked = true
			r.UnlockedAt = on
		}
		out[i] = r
	}
	return out
}

// NewlyUnlocked returns rewards locked in before and unlocked in after,
// matched by ID.
func NewlyUnlocked(before, after []domain.Reward) []domain.Reward {
	was := make(map[string]bool, len(before))
	for _, r := range before {
		was[r.ID] = r.Unlocked
	}

	var fresh []domain.Reward
	for _, r := range after {
		if r.Unlocked && !was[r.ID] {
			fresh = append(fresh, r)
		}
	}
	return fresh
}

// MergeRewards reconciles a persisted reward list with the configured seed.
// Seeds keep their configured order and text; unlock state is carried over
// from persisted rewards with the same ID. Persisted rewards no longer in the
// seed are kept at the end so an unlocked tier is never lost.
func MergeRewards(seed, persisted []domain.Reward) []domain.Reward {
	prior := make(map[string]domain.Reward, len(persisted))
	for _, r := range persisted {
		prior[r.ID] = r
	}

	out := make([]domain.Reward, 0, len(seed)+len(persisted))
	seen := make(map[string]bool, len(seed))
	for _, r := range seed {
		if p, ok := prior[r.ID]; ok && p.Unlocked {
			r.Unlocked = true
			r.UnlockedAt = p.UnlockedAt
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	for _, r := range persisted {
		if !seen[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// ─── Reward Catalog ─────────────────────────────────────────────────────────

// DefaultRewards returns the three built-in tiers.
func DefaultRewards() []domain.Reward {
	return []domain.Reward{
		{ID: "1", Title: "Starter", Description: "Complete 7 days streak", PointRequirement: 100, Icon: "🌱"},
		{ID: "2", Title: "Pro", Description: "Reach 500 points", PointRequirement: 500, Icon: "🏆"},
		{ID: "3", Title: "Master", Description: "Complete 100 days streak", PointRequirement: 2000, Icon: "👑"},
	}
}
