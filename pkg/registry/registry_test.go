// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_AllTaskTypesRegistered(t *testing.T) {
	reg := Default()

	for _, taskType := range []string{
		"calculate-proposal-score",
		"get-score-improvements",
		"calculate-benchmark",
		"check-readiness",
		"go-nogo-summary",
		"send-score-report",
	} {
		activity := reg.Activity(taskType)
		require.NotNil(t, activity, taskType)
		assert.NotNil(t, activity.InputSchema, taskType)
	}

	assert.Nil(t, reg.Activity("unknown-task"))
}

func TestValidateInput_AcceptsValidPayloads(t *testing.T) {
	reg := Default()

	tests := []struct {
		taskType string
		payload  string
	}{
		{"calculate-proposal-score", `{"proposalId":"prop-1","requestedBy":"user-1","forceRecalculate":true}`},
		{"calculate-proposal-score", `{"proposalId":"prop-1"}`},
		{"get-score-improvements", `{"proposalId":"prop-1","historyLimit":5}`},
		{"calculate-benchmark", `{"proposalId":"prop-1"}`},
		{"check-readiness", `{"proposalId":"prop-1","teamType":"red_team","forceRecheck":false}`},
		{"go-nogo-summary", `{"proposalId":"prop-1"}`},
		{"send-score-report", `{"proposalId":"prop-1","recipients":["pm@acme.example"]}`},
	}

	for _, tt := range tests {
		assert.NoError(t, reg.ValidateInput(tt.taskType, []byte(tt.payload)), tt.taskType)
	}
}

func TestValidateInput_RejectsInvalidPayloads(t *testing.T) {
	reg := Default()

	tests := []struct {
		name     string
		taskType string
		payload  string
	}{
		{"missing proposal id", "calculate-proposal-score", `{"requestedBy":"user-1"}`},
		{"empty proposal id", "calculate-proposal-score", `{"proposalId":""}`},
		{"force flag wrong type", "calculate-proposal-score", `{"proposalId":"p","forceRecalculate":"yes"}`},
		{"unknown team", "check-readiness", `{"proposalId":"p","teamType":"blue_team"}`},
		{"missing team", "check-readiness", `{"proposalId":"p"}`},
		{"empty recipients", "send-score-report", `{"proposalId":"p","recipients":[]}`},
		{"missing recipients", "send-score-report", `{"proposalId":"p"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, reg.ValidateInput(tt.taskType, []byte(tt.payload)))
		})
	}
}

func TestValidateInput_UnregisteredTaskTypePasses(t *testing.T) {
	reg := Default()
	assert.NoError(t, reg.ValidateInput("some-other-task", []byte(`{"anything":1}`)))
}

func TestLoadRegistry_RoundTrip(t *testing.T) {
	reg := Default()
	data, err := json.Marshal(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Version, loaded.Version)
	require.NotNil(t, loaded.Activity("check-readiness"))
	assert.Error(t, loaded.ValidateInput("check-readiness", []byte(`{"proposalId":"p"}`)))
}
