// Package load holds the cognitive-load calculators: deterministic, pure
// scoring functions with no I/O. Task scores are absolute values in [0,1];
// survey scores are each member's share of the family total.
package load

import "math"

var priorityWeights = map[string]float64{
	"low":    0.1,
	"medium": 0.2,
	"high":   0.3,
}

var categoryWeights = map[string]float64{
	"admin":  0.3,
	"health": 0.25,
	"school": 0.25,
	"family": 0.15,
	"home":   0.1,
}

const (
	defaultPriorityWeight = 0.2
	defaultCategoryWeight = 0.15
)

// TaskScore estimates the mental overhead a task carries from its
// priority, category and description length. Unrecognized priorities and
// categories fall back to their default weights; the result is capped
// at 1.0.
func TaskScore(priority, category, description string) float64 {
	score := defaultPriorityWeight
	if weight, ok := priorityWeights[priority]; ok {
		score = weight
	}

	if weight, ok := categoryWeights[category]; ok {
		score += weight
	} else {
		score += defaultCategoryWeight
	}

	switch {
	case len(description) > 200:
		score += 0.2
	case len(description) > 100:
		score += 0.1
	}

	return math.Min(1.0, score)
}
