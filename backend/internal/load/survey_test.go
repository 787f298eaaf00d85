package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTaskType(t *testing.T) {
	tests := []struct {
		text     string
		expected TaskType
	}{
		{"Who plans the weekly meals?", TaskTypeAnticipation},
		{"Who schedules doctor appointments?", TaskTypeAnticipation},
		{"Who tracks when homework is due?", TaskTypeMonitoring},
		{"Who checks the kids brushed their teeth?", TaskTypeMonitoring},
		{"Who does the dishes?", TaskTypeExecution},
		{"", TaskTypeExecution},
		// anticipation keywords win over monitoring keywords
		{"Who plans and tracks the groceries?", TaskTypeAnticipation},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyTaskType(tt.text), "text: %q", tt.text)
	}
}

func TestQuestionCategory(t *testing.T) {
	assert.Equal(t, "meals", QuestionCategory("meals_who_plans"))
	assert.Equal(t, "school", QuestionCategory("school_forms_tracking"))
	assert.Equal(t, "laundry", QuestionCategory("laundry"))
	assert.Equal(t, "", QuestionCategory(""))
}

func TestSkippedAnswer(t *testing.T) {
	assert.True(t, SkippedAnswer("Neither"))
	assert.True(t, SkippedAnswer("neutral"))
	assert.True(t, SkippedAnswer(" Neutral "))
	assert.False(t, SkippedAnswer("mama"))
	assert.False(t, SkippedAnswer(42))
	assert.False(t, SkippedAnswer(nil))
}

func TestResolveRespondents(t *testing.T) {
	const familyID = "fam123"

	tests := []struct {
		name     string
		answer   interface{}
		expected []string
	}{
		{"raw id array", []interface{}{"fam123_mama", "fam123_papa"}, []string{"fam123_mama", "fam123_papa"}},
		{"agent id string", "smith_agent", []string{"smith_agent"}},
		{"family-scoped id string", "fam123_kid1", []string{"fam123_kid1"}},
		{"both is skipped", "both", nil},
		{"Both is skipped case-insensitively", "Both", nil},
		{"legacy mama", "mama", []string{"fam123_mama"}},
		{"legacy mom", "Mom", []string{"fam123_mama"}},
		{"legacy mother", "mother", []string{"fam123_mama"}},
		{"legacy papa", "papa", []string{"fam123_papa"}},
		{"legacy dad", "Dad", []string{"fam123_papa"}},
		{"legacy father", "father", []string{"fam123_papa"}},
		{"unrecognized name", "grandma", nil},
		{"empty string", "", nil},
		{"non-string non-array", 7, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveRespondents(tt.answer, familyID))
		})
	}
}

func TestScoreSurvey_WeightsAndShares(t *testing.T) {
	const familyID = "fam123"

	responses := []Response{
		{QuestionKey: "meals_who_plans", Answer: "mama"},
		{QuestionKey: "appointments_who_schedules", Answer: "mama"},
		{QuestionKey: "dishes_who_does", Answer: "papa"},
	}

	members := ScoreSurvey(responses, familyID)
	require.Len(t, members, 2)

	mama := members["fam123_mama"]
	require.NotNil(t, mama)
	assert.Equal(t, 2, mama.Anticipation)
	assert.Equal(t, 0, mama.Monitoring)
	assert.Equal(t, 0, mama.Execution)
	assert.InDelta(t, 4.0, mama.Score, 1e-9)
	assert.InDelta(t, 0.8, mama.Share, 1e-9)

	papa := members["fam123_papa"]
	require.NotNil(t, papa)
	assert.Equal(t, 1, papa.Execution)
	assert.InDelta(t, 1.0, papa.Score, 1e-9)
	assert.InDelta(t, 0.2, papa.Share, 1e-9)
}

func TestScoreSurvey_SharesSumToOne(t *testing.T) {
	const familyID = "fam9"

	responses := []Response{
		{QuestionKey: "meals_who_plans", Answer: "mama"},
		{QuestionKey: "homework_who_tracks", Answer: "papa"},
		{QuestionKey: "laundry_who_does", Answer: []interface{}{"fam9_kid1"}},
		{QuestionKey: "groceries_who_buys", Answer: "fam9_papa"},
		{QuestionKey: "bedtime_who_checks", Answer: "smith_agent"},
	}

	members := ScoreSurvey(responses, familyID)
	require.NotEmpty(t, members)

	total := 0.0
	for _, member := range members {
		total += member.Share
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestScoreSurvey_SkipsNonInformativeAnswers(t *testing.T) {
	responses := []Response{
		{QuestionKey: "meals_who_plans", Answer: "Neither"},
		{QuestionKey: "dishes_who_does", Answer: "Neutral"},
		{QuestionKey: "bedtime_who_checks", Answer: "both"},
		{QuestionKey: "laundry_who_does", Answer: "grandma"},
	}

	members := ScoreSurvey(responses, "fam1")
	assert.Empty(t, members)
}

func TestScoreSurvey_UsesQuestionTextForClassification(t *testing.T) {
	responses := []Response{
		{QuestionKey: "q1", QuestionText: "Who plans the birthday party?", Answer: "mama"},
	}

	members := ScoreSurvey(responses, "fam1")
	require.NotNil(t, members["fam1_mama"])
	assert.Equal(t, 1, members["fam1_mama"].Anticipation)
}

func TestImbalance(t *testing.T) {
	members := map[string]*MemberLoad{
		"a": {Share: 0.8},
		"b": {Share: 0.2},
	}
	assert.InDelta(t, 0.6, Imbalance(members), 1e-9)

	assert.Zero(t, Imbalance(map[string]*MemberLoad{"a": {Share: 1.0}}))
	assert.Zero(t, Imbalance(nil))
}
