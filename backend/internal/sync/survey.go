package sync

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"famsync/backend/internal/firestore"
	"famsync/backend/internal/load"
)

// syncSurvey mirrors a completed survey into the graph: per-member load
// scores on the Person nodes, the Survey node itself, COMPLETED and
// MEASURES edges per member, then a Question / SurveyResponse subgraph
// per informative answer. By far the chattiest mapper: roughly
// 3 + 2*members + 3*responses statements per survey.
func (s *Service) syncSurvey(ctx context.Context, log *zap.Logger, surveyID, familyID string, doc map[string]interface{}) (string, error) {
	if familyID == "" {
		return "", fmt.Errorf("survey %s has no familyId", surveyID)
	}

	responses := decodeResponses(firestore.GetMap(doc, "responses"))
	members := load.ScoreSurvey(responses, familyID)
	imbalance := load.Imbalance(members)

	completedAt, ok := firestore.GetTime(doc, "completedAt")
	if !ok {
		completedAt = time.Now().UTC()
	}
	completedAtStr := completedAt.UTC().Format(time.RFC3339)

	_, err := s.exec.ExecuteWrite(ctx, `
		MERGE (sv:Survey {surveyId: $surveyId, familyId: $familyId})
		SET sv.surveyType = $surveyType,
		    sv.cycleNumber = $cycleNumber,
		    sv.completedAt = datetime($completedAt),
		    sv.overallImbalance = $overallImbalance
	`, map[string]interface{}{
		"surveyId":         surveyID,
		"familyId":         familyID,
		"surveyType":       firestore.GetString(doc, "surveyType", ""),
		"cycleNumber":      firestore.GetInt(doc, "cycleNumber", 0),
		"completedAt":      completedAtStr,
		"overallImbalance": imbalance,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upsert survey %s: %w", surveyID, err)
	}

	for _, userID := range sortedMemberIDs(members) {
		member := members[userID]

		_, err := s.exec.ExecuteWrite(ctx, `
			MERGE (p:Person {userId: $userId})
			SET p.familyId = coalesce(p.familyId, $familyId),
			    p.anticipationScore = $anticipationScore,
			    p.monitoringScore = $monitoringScore,
			    p.executionScore = $executionScore,
			    p.totalLoadScore = $totalLoadScore,
			    p.invisibleLaborScore = $invisibleLaborScore,
			    p.lastUpdated = datetime()
		`, map[string]interface{}{
			"userId":              userID,
			"familyId":            familyID,
			"anticipationScore":   int64(member.Anticipation),
			"monitoringScore":     int64(member.Monitoring),
			"executionScore":      int64(member.Execution),
			"totalLoadScore":      member.Score,
			"invisibleLaborScore": member.Share,
		})
		if err != nil {
			return "", fmt.Errorf("failed to upsert survey member %s: %w", userID, err)
		}

		_, err = s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $userId})
			MATCH (sv:Survey {surveyId: $surveyId, familyId: $familyId})
			MERGE (p)-[c:COMPLETED]->(sv)
			SET c.responseCount = $responseCount
			MERGE (sv)-[m:MEASURES]->(p)
			SET m.anticipationScore = $anticipationScore,
			    m.monitoringScore = $monitoringScore,
			    m.executionScore = $executionScore,
			    m.totalLoadScore = $totalLoadScore
		`, map[string]interface{}{
			"userId":            userID,
			"surveyId":          surveyID,
			"familyId":          familyID,
			"responseCount":     int64(len(responses)),
			"anticipationScore": int64(member.Anticipation),
			"monitoringScore":   int64(member.Monitoring),
			"executionScore":    int64(member.Execution),
			"totalLoadScore":    member.Score,
		})
		if err != nil {
			return "", fmt.Errorf("failed to link survey member %s: %w", userID, err)
		}
	}

	for _, response := range responses {
		if load.SkippedAnswer(response.Answer) {
			log.Debug("Skipping non-informative answer",
				zap.String("question_key", response.QuestionKey),
			)
			continue
		}
		if err := s.syncSurveyResponse(ctx, log, surveyID, familyID, completedAtStr, response); err != nil {
			return "", err
		}
	}

	log.Info("Survey synced",
		zap.String("survey_id", surveyID),
		zap.String("family_id", familyID),
		zap.Int("members", len(members)),
		zap.Int("responses", len(responses)),
		zap.Float64("overall_imbalance", imbalance),
	)
	return ActionSynced, nil
}

// syncSurveyResponse writes the Question / SurveyResponse pair for one
// answer and wires Survey -CONTAINS-> SurveyResponse -ANSWERS-> Question,
// plus a MENTIONED_IN edge when the answer names a person.
func (s *Service) syncSurveyResponse(ctx context.Context, log *zap.Logger, surveyID, familyID, timestamp string, response load.Response) error {
	taskType := load.ClassifyTaskType(response.QuestionText + " " + response.QuestionKey)
	category := load.QuestionCategory(response.QuestionKey)
	responseID := surveyID + "_" + response.QuestionKey

	_, err := s.exec.ExecuteWrite(ctx, `
		MERGE (q:Question {questionKey: $questionKey, familyId: $familyId})
		SET q.category = $category,
		    q.taskType = $taskType
	`, map[string]interface{}{
		"questionKey": response.QuestionKey,
		"familyId":    familyID,
		"category":    category,
		"taskType":    string(taskType),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert question %s: %w", response.QuestionKey, err)
	}

	_, err = s.exec.ExecuteWrite(ctx, `
		MATCH (sv:Survey {surveyId: $surveyId, familyId: $familyId})
		MERGE (sr:SurveyResponse {responseId: $responseId, familyId: $familyId})
		SET sr.answer = $answer,
		    sr.questionKey = $questionKey,
		    sr.surveyId = $surveyId,
		    sr.timestamp = datetime($timestamp)
		MERGE (sv)-[:CONTAINS]->(sr)
	`, map[string]interface{}{
		"surveyId":    surveyID,
		"familyId":    familyID,
		"responseId":  responseID,
		"answer":      answerText(response.Answer),
		"questionKey": response.QuestionKey,
		"timestamp":   timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert survey response %s: %w", responseID, err)
	}

	_, err = s.exec.ExecuteWrite(ctx, `
		MATCH (sr:SurveyResponse {responseId: $responseId, familyId: $familyId})
		MATCH (q:Question {questionKey: $questionKey, familyId: $familyId})
		MERGE (sr)-[:ANSWERS]->(q)
	`, map[string]interface{}{
		"responseId":  responseID,
		"familyId":    familyID,
		"questionKey": response.QuestionKey,
	})
	if err != nil {
		return fmt.Errorf("failed to link response %s to question: %w", responseID, err)
	}

	if userID := mentionedUser(response.Answer, familyID); userID != "" {
		records, err := s.exec.ExecuteWrite(ctx, `
			MATCH (p:Person {userId: $userId})
			MATCH (sr:SurveyResponse {responseId: $responseId, familyId: $familyId})
			MERGE (p)-[:MENTIONED_IN]->(sr)
			RETURN count(*) AS linked
		`, map[string]interface{}{
			"userId":     userID,
			"responseId": responseID,
			"familyId":   familyID,
		})
		switch {
		case err != nil:
			log.Warn("Failed to link mentioned person",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		case linkCount(records) == 0:
			log.Warn("Mentioned person not found in graph, skipping MENTIONED_IN edge",
				zap.String("user_id", userID),
			)
		}
	}

	return nil
}

// decodeResponses flattens the survey's responses map into an ordered
// slice. Each entry is either a bare answer value or a map carrying the
// answer plus the human-readable question text. Ordering by question key
// keeps the statement sequence deterministic.
func decodeResponses(raw map[string]interface{}) []load.Response {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	responses := make([]load.Response, 0, len(keys))
	for _, key := range keys {
		response := load.Response{QuestionKey: key, Answer: raw[key]}
		if m, ok := raw[key].(map[string]interface{}); ok {
			if answer, found := m["answer"]; found {
				response.Answer = answer
				response.QuestionText = firestore.GetString(m, "questionText", "")
			}
		}
		responses = append(responses, response)
	}
	return responses
}

func sortedMemberIDs(members map[string]*load.MemberLoad) []string {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mentionedUser returns the user id an answer string encodes, if any.
func mentionedUser(answer interface{}, familyID string) string {
	str, ok := answer.(string)
	if !ok {
		return ""
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return ""
	}
	if strings.Contains(trimmed, "_agent") || (familyID != "" && strings.Contains(trimmed, familyID)) {
		return trimmed
	}
	return ""
}

// answerText renders an answer value for storage on the SurveyResponse
// node.
func answerText(answer interface{}) string {
	switch value := answer.(type) {
	case string:
		return value
	case []interface{}:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", value)
	}
}
