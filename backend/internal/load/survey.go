package load

import "strings"

// TaskType classifies what kind of mental work a survey question probes.
type TaskType string

const (
	TaskTypeAnticipation TaskType = "anticipation"
	TaskTypeMonitoring   TaskType = "monitoring"
	TaskTypeExecution    TaskType = "execution"
)

// Per-type weights in the composite score. Anticipating work is counted
// heavier than monitoring it, which is heavier than doing it.
const (
	anticipationWeight = 2.0
	monitoringWeight   = 1.5
	executionWeight    = 1.0
)

var anticipationKeywords = []string{
	"plan", "prepar", "schedul", "anticipat", "arrang", "organiz",
	"book", "research", "decide",
}

var monitoringKeywords = []string{
	"track", "monitor", "check", "remind", "notic", "watch",
	"follow up", "keep an eye", "supervis",
}

// taskTypeRules is evaluated first-match-wins: anticipation keywords are
// checked before monitoring keywords, and anything unmatched is execution.
var taskTypeRules = []struct {
	keywords []string
	taskType TaskType
}{
	{anticipationKeywords, TaskTypeAnticipation},
	{monitoringKeywords, TaskTypeMonitoring},
}

// ClassifyTaskType assigns a task type by substring matching on the
// combined question text and key.
func ClassifyTaskType(text string) TaskType {
	lower := strings.ToLower(text)
	for _, rule := range taskTypeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.taskType
			}
		}
	}
	return TaskTypeExecution
}

// QuestionCategory derives a category from the question key's prefix
// before the first underscore ("meals_who_plans" -> "meals").
func QuestionCategory(questionKey string) string {
	if idx := strings.Index(questionKey, "_"); idx > 0 {
		return questionKey[:idx]
	}
	return questionKey
}

// SkippedAnswer reports whether an answer is non-informative and should
// be ignored entirely.
func SkippedAnswer(answer interface{}) bool {
	str, ok := answer.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "neither", "neutral":
		return true
	}
	return false
}

// ResolveRespondents maps an answer value to the user id(s) it credits.
// Handles raw id arrays, id-looking strings (containing "_agent" or the
// family id), and legacy parent names mapped to synthesized ids. The
// literal "both" is skipped rather than fanned out to two users; that is
// a known gap kept for behavior parity, not an oversight.
func ResolveRespondents(answer interface{}, familyID string) []string {
	switch value := answer.(type) {
	case []interface{}:
		ids := make([]string, 0, len(value))
		for _, item := range value {
			if id, ok := item.(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		lower := strings.ToLower(trimmed)
		if lower == "both" {
			return nil
		}
		if strings.Contains(trimmed, "_agent") || (familyID != "" && strings.Contains(trimmed, familyID)) {
			return []string{trimmed}
		}
		switch lower {
		case "mama", "mom", "mother":
			return []string{familyID + "_mama"}
		case "papa", "dad", "father":
			return []string{familyID + "_papa"}
		}
	}
	return nil
}

// Response is one question/answer pair from a survey document.
type Response struct {
	QuestionKey  string
	QuestionText string
	Answer       interface{}
}

// MemberLoad is the per-member breakdown derived from one survey.
type MemberLoad struct {
	Anticipation int
	Monitoring   int
	Execution    int
	Score        float64 // anticipation*2.0 + monitoring*1.5 + execution*1.0
	Share        float64 // this member's proportion of the family total
}

// ScoreSurvey computes each member's load breakdown from a survey's
// responses. Shares are normalized so they sum to 1.0 across all members
// whenever the total is positive.
func ScoreSurvey(responses []Response, familyID string) map[string]*MemberLoad {
	members := make(map[string]*MemberLoad)

	for _, response := range responses {
		if SkippedAnswer(response.Answer) {
			continue
		}
		userIDs := ResolveRespondents(response.Answer, familyID)
		if len(userIDs) == 0 {
			continue
		}

		taskType := ClassifyTaskType(response.QuestionText + " " + response.QuestionKey)
		for _, userID := range userIDs {
			member, ok := members[userID]
			if !ok {
				member = &MemberLoad{}
				members[userID] = member
			}
			switch taskType {
			case TaskTypeAnticipation:
				member.Anticipation++
			case TaskTypeMonitoring:
				member.Monitoring++
			default:
				member.Execution++
			}
		}
	}

	total := 0.0
	for _, member := range members {
		member.Score = float64(member.Anticipation)*anticipationWeight +
			float64(member.Monitoring)*monitoringWeight +
			float64(member.Execution)*executionWeight
		total += member.Score
	}
	if total > 0 {
		for _, member := range members {
			member.Share = member.Score / total
		}
	}

	return members
}

// Imbalance summarizes how unevenly a survey's load fell: the spread
// between the most and least burdened members' shares.
func Imbalance(members map[string]*MemberLoad) float64 {
	if len(members) < 2 {
		return 0
	}
	min, max := 1.0, 0.0
	for _, member := range members {
		if member.Share < min {
			min = member.Share
		}
		if member.Share > max {
			max = member.Share
		}
	}
	if max < min {
		return 0
	}
	return max - min
}
