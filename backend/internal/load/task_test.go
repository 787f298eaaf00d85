package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskScore(t *testing.T) {
	tests := []struct {
		name        string
		priority    string
		category    string
		description string
		expected    float64
	}{
		{
			name:        "low priority home chore",
			priority:    "low",
			category:    "home",
			description: "Water plants",
			expected:    0.2,
		},
		{
			name:        "medium priority family task",
			priority:    "medium",
			category:    "family",
			description: "Plan family dinner",
			expected:    0.35,
		},
		{
			name:        "missing category falls back to default weight",
			priority:    "medium",
			category:    "",
			description: "",
			expected:    0.35,
		},
		{
			name:        "missing priority falls back to default weight",
			priority:    "",
			category:    "home",
			description: "",
			expected:    0.3,
		},
		{
			name:        "high admin with long description",
			priority:    "high",
			category:    "admin",
			description: strings.Repeat("x", 150),
			expected:    0.7,
		},
		{
			name:        "very long description bonus",
			priority:    "low",
			category:    "home",
			description: strings.Repeat("x", 201),
			expected:    0.4,
		},
		{
			name:        "unrecognized priority and category",
			priority:    "urgent",
			category:    "chaos",
			description: "",
			expected:    0.35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, TaskScore(tt.priority, tt.category, tt.description), 1e-9)
		})
	}
}

func TestTaskScore_CappedAtOne(t *testing.T) {
	score := TaskScore("high", "admin", strings.Repeat("x", 300))
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestTaskScore_AlwaysInUnitInterval(t *testing.T) {
	priorities := []string{"", "low", "medium", "high", "bogus"}
	categories := []string{"", "admin", "health", "school", "family", "home", "bogus"}
	descriptions := []string{"", strings.Repeat("a", 101), strings.Repeat("a", 500)}

	for _, priority := range priorities {
		for _, category := range categories {
			for _, description := range descriptions {
				score := TaskScore(priority, category, description)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}
