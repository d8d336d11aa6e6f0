// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// LoadRegistry reads an activity registry from a JSON file. The worker manager
// falls back to Default() when no file is configured.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// ValidateInput checks raw job variables against the registered input schema
// for a task type. Unregistered task types pass through unvalidated.
func (r *ActivityRegistry) ValidateInput(taskType string, variables []byte) error {
	if r == nil {
		return nil
	}
	activity := r.Activity(taskType)
	if activity == nil || activity.InputSchema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(activity.InputSchema)
	documentLoader := gojsonschema.NewBytesLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate %s input: %w", taskType, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("invalid %s input: %s", taskType, strings.Join(errs, "; "))
	}
	return nil
}

func proposalIDField() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

// Default returns the built-in registry for the scoring worker fleet.
func Default() *ActivityRegistry {
	return &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-20",
		Activities: []Activity{
			{
				ID:          "scoring.calculate-proposal-score",
				DisplayName: "Calculate Proposal Score",
				Description: "Evaluates all scoring factors and persists a weighted score snapshot",
				Category:    "scoring",
				TaskType:    "calculate-proposal-score",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId"},
					"properties": map[string]interface{}{
						"proposalId":       proposalIDField(),
						"requestedBy":      map[string]interface{}{"type": "string"},
						"forceRecalculate": map[string]interface{}{"type": "boolean"},
					},
				},
				ErrorCodes: []string{"NO_CONTENT", "SCORING_IN_PROGRESS", "SCORE_CALCULATION_FAILED"},
				Timeout:    "120s",
				Retries:    1,
			},
			{
				ID:          "scoring.get-score-improvements",
				DisplayName: "Get Score Improvements",
				Description: "Ranks improvement opportunities from the latest score snapshot",
				Category:    "scoring",
				TaskType:    "get-score-improvements",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId"},
					"properties": map[string]interface{}{
						"proposalId":   proposalIDField(),
						"historyLimit": map[string]interface{}{"type": "integer", "minimum": 1.0},
					},
				},
				ErrorCodes: []string{"SCORE_NOT_FOUND"},
				Timeout:    "10s",
				Retries:    0,
			},
			{
				ID:          "scoring.calculate-benchmark",
				DisplayName: "Calculate Benchmark",
				Description: "Positions a proposal score against its organization's population",
				Category:    "scoring",
				TaskType:    "calculate-benchmark",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId"},
					"properties": map[string]interface{}{
						"proposalId": proposalIDField(),
					},
				},
				ErrorCodes: []string{"SCORE_NOT_FOUND"},
				Timeout:    "15s",
				Retries:    0,
			},
			{
				ID:          "scoring.check-readiness",
				DisplayName: "Check Readiness",
				Description: "Runs the color-team readiness criteria for a proposal",
				Category:    "readiness",
				TaskType:    "check-readiness",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId", "teamType"},
					"properties": map[string]interface{}{
						"proposalId": proposalIDField(),
						"teamType": map[string]interface{}{
							"type": "string",
							"enum": []interface{}{"pink_team", "red_team", "gold_team", "submission"},
						},
						"checkedBy":    map[string]interface{}{"type": "string"},
						"forceRecheck": map[string]interface{}{"type": "boolean"},
					},
				},
				ErrorCodes: []string{"INVALID_TEAM_TYPE", "READINESS_CHECK_FAILED"},
				Timeout:    "30s",
				Retries:    0,
			},
			{
				ID:          "scoring.go-nogo-summary",
				DisplayName: "Go / No-Go Summary",
				Description: "Synthesizes score, trend and readiness into a bid decision summary",
				Category:    "decision",
				TaskType:    "go-nogo-summary",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId"},
					"properties": map[string]interface{}{
						"proposalId": proposalIDField(),
					},
				},
				ErrorCodes: []string{"QUERY_EXECUTION_FAILED"},
				Timeout:    "15s",
				Retries:    0,
			},
			{
				ID:          "scoring.send-score-report",
				DisplayName: "Send Score Report",
				Description: "Delivers the decision summary by email, with an alert for no-go verdicts",
				Category:    "notification",
				TaskType:    "send-score-report",
				InputSchema: map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"proposalId", "recipients"},
					"properties": map[string]interface{}{
						"proposalId": proposalIDField(),
						"recipients": map[string]interface{}{
							"type":     "array",
							"minItems": 1.0,
							"items":    map[string]interface{}{"type": "string", "format": "email"},
						},
					},
				},
				ErrorCodes: []string{"REPORT_SEND_FAILED"},
				Timeout:    "30s",
				Retries:    3,
			},
		},
	}
}
