//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2E_AskAnswersFromRetrievedIncidents(t *testing.T) {
	env := SetupE2EEnv(t)

	status, body := env.Ask("Why is the vpn not working?")
	require.Equal(t, http.StatusOK, status)
	// The VPN incident must rank first in the context the model sees.
	assert.True(t, strings.HasPrefix(body["answer"], "Answered from INC0001"), "got answer %q", body["answer"])
}

func TestE2E_CannedReplies(t *testing.T) {
	env := SetupE2EEnv(t)

	status, body := env.Ask("Thanks")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "You're welcome!", body["answer"])

	status, body = env.Ask("bye")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Goodbye!", body["answer"])
}

func TestE2E_EmptyQuestion(t *testing.T) {
	env := SetupE2EEnv(t)

	status, body := env.Ask("   ")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter your question.", body["error"])
}

func TestE2E_GenerationFailureReturnsFallbackAnswer(t *testing.T) {
	env := SetupE2EEnv(t)

	status, body := env.Ask("trigger-failure please")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Unable to get an answer.", body["answer"])
}

func TestE2E_HealthAndReady(t *testing.T) {
	env := SetupE2EEnv(t)

	status, _ := env.Get("/health")
	assert.Equal(t, http.StatusOK, status)

	status, body := env.Get("/ready")
	require.Equal(t, http.StatusOK, status)

	var ready struct {
		Data struct {
			Status    string `json:"status"`
			Documents int    `json:"documents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &ready))
	assert.Equal(t, "ready", ready.Data.Status)
	assert.Equal(t, 2, ready.Data.Documents)
}

func TestE2E_SnapshotWrittenOnStartup(t *testing.T) {
	env := SetupE2EEnv(t)

	data, err := os.ReadFile(env.SnapshotPath)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "sys_id")
	assert.Contains(t, content, "INC0001")
	assert.Contains(t, content, "INC0002")
}

func TestE2E_AdminReindexPicksUpNewIncidents(t *testing.T) {
	env := SetupE2EEnv(t)

	env.ServiceNow.SetIncidents([]map[string]interface{}{
		incident("sys-vpn-1", "INC0001", "VPN gateway unreachable"),
		incident("sys-prn-1", "INC0002", "Printer on floor 3 jams"),
		incident("sys-vpn-2", "INC0003", "VPN client install fails"),
	})

	status, body := env.Reindex(testAdminToken)
	require.Equal(t, http.StatusAccepted, status)

	var result struct {
		Data struct {
			Documents int `json:"documents"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, 3, result.Data.Documents)

	status, readyBody := env.Get("/ready")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(readyBody), `"documents":3`)
}

func TestE2E_AdminReindexRejectsBadToken(t *testing.T) {
	env := SetupE2EEnv(t)

	status, _ := env.Reindex("")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.Reindex("wrong-token")
	assert.Equal(t, http.StatusUnauthorized, status)
}
