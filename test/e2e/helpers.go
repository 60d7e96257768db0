//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/snowbot/internal/api/handlers"
	"github.com/cloo-solutions/snowbot/internal/bot"
	"github.com/cloo-solutions/snowbot/internal/index"
	"github.com/cloo-solutions/snowbot/internal/jobs"
	"github.com/cloo-solutions/snowbot/internal/openai"
	"github.com/cloo-solutions/snowbot/internal/server"
	"github.com/cloo-solutions/snowbot/internal/servicenow"
	"github.com/cloo-solutions/snowbot/internal/snapshot"
)

const (
	testAccessToken = "e2e-access-token"
	testAdminToken  = "e2e-admin-token"

	embeddingDimensions = 3
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	ServiceNow   *FakeServiceNow
	OpenAI       *httptest.Server
	SnapshotPath string
	ServerURL    string
	HTTPClient   *http.Client
}

// FakeServiceNow serves the OAuth token and incident table endpoints with a
// mutable incident set.
type FakeServiceNow struct {
	mu        sync.Mutex
	incidents []map[string]interface{}
	srv       *httptest.Server
}

func NewFakeServiceNow(incidents []map[string]interface{}) *FakeServiceNow {
	f := &FakeServiceNow{incidents: incidents}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth_token.do", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "password" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Form.Get("username") == "" || r.Form.Get("password") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": testAccessToken})
	})
	mux.HandleFunc("/api/now/table/incident", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"result": f.incidents})
	})

	f.srv = httptest.NewServer(mux)
	return f
}

func (f *FakeServiceNow) URL() string { return f.srv.URL }

func (f *FakeServiceNow) Close() { f.srv.Close() }

// SetIncidents replaces the incident set served to subsequent exports.
func (f *FakeServiceNow) SetIncidents(incidents []map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidents = incidents
}

// fakeEmbedding maps a text onto a fixed low-dimension vector by keyword, so
// retrieval order is predictable without a real model.
func fakeEmbedding(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "vpn"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "printer"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

// NewFakeOpenAI serves the embeddings and chat completions endpoints. The
// completion handler echoes the incident numbers it finds in the prompt
// context so tests can assert retrieval happened. A prompt containing
// "trigger-failure" gets a 500.
func NewFakeOpenAI() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": fakeEmbedding(req.Input[0])},
			},
		})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		prompt := req.Messages[0].Content
		if strings.Contains(prompt, "trigger-failure") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var numbers []string
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "number: ") {
				numbers = append(numbers, strings.TrimPrefix(line, "number: "))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Answered from " + strings.Join(numbers, ", ")}},
			},
		})
	})

	return httptest.NewServer(mux)
}

func defaultIncidents() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"sys_id":            "sys-vpn-1",
			"number":            "INC0001",
			"short_description": "VPN gateway unreachable",
			"state":             "2",
		},
		{
			"sys_id":            "sys-prn-1",
			"number":            "INC0002",
			"short_description": "Printer on floor 3 jams",
			"state":             "1",
		},
	}
}

// SetupE2EEnv starts the fake upstreams, runs the startup export and index
// build, and serves the router over httptest.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	snow := NewFakeServiceNow(defaultIncidents())
	t.Cleanup(snow.Close)

	openAISrv := NewFakeOpenAI()
	t.Cleanup(openAISrv.Close)

	snapshotPath := filepath.Join(t.TempDir(), "servicenow_incidents.csv")

	snowClient := servicenow.NewClient(servicenow.Config{
		ClientID:     "e2e-client",
		ClientSecret: "e2e-secret",
		Username:     "e2e-user",
		Password:     "e2e-pass",
		BaseURL:      snow.URL(),
	})

	store := snapshot.NewStore(snapshotPath)

	embeddingClient := openai.NewEmbeddingClient(openai.EmbeddingConfig{
		APIKey:     "test-key",
		BaseURL:    openAISrv.URL,
		Dimensions: embeddingDimensions,
	})

	completionClient, err := openai.NewCompletionClient(openai.CompletionConfig{
		APIKey:     "test-key",
		BaseURL:    openAISrv.URL,
		Generation: openai.DefaultGenerationConfig(),
	})
	if err != nil {
		t.Fatalf("failed to create completion client: %v", err)
	}

	indexer := index.NewIndexer(embeddingClient)
	retriever := index.NewRetriever(0)
	pipeline := bot.NewPipeline(embeddingClient, retriever, completionClient)

	refresher := jobs.NewRefresher(snowClient, store, indexer, pipeline)
	if _, err := refresher.Reindex(ctx); err != nil {
		t.Fatalf("startup reindex failed: %v", err)
	}

	router := server.NewRouter(server.RouterConfig{
		AskHandler:   handlers.NewAskHandler(pipeline),
		AdminHandler: handlers.NewAdminHandler(refresher),
		AdminToken:   testAdminToken,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		ServiceNow:   snow,
		OpenAI:       openAISrv,
		SnapshotPath: snapshotPath,
		ServerURL:    srv.URL,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Ask posts a question and returns the status code and decoded body.
func (e *E2ETestEnv) Ask(question string) (int, map[string]string) {
	body, _ := json.Marshal(map[string]string{"question": question})
	resp, err := e.HTTPClient.Post(e.ServerURL+"/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		e.T.Fatalf("ask request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		e.T.Fatalf("failed to decode ask response: %v", err)
	}
	return resp.StatusCode, parsed
}

// Get performs a GET request and returns the status code and raw body.
func (e *E2ETestEnv) Get(path string) (int, []byte) {
	resp, err := e.HTTPClient.Get(e.ServerURL + path)
	if err != nil {
		e.T.Fatalf("get %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, body
}

// Reindex posts to the admin reindex endpoint with the given token.
func (e *E2ETestEnv) Reindex(token string) (int, []byte) {
	req, err := http.NewRequest(http.MethodPost, e.ServerURL+"/admin/reindex", nil)
	if err != nil {
		e.T.Fatalf("failed to create reindex request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("reindex request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, body
}

func incident(sysID, number, description string) map[string]interface{} {
	return map[string]interface{}{
		"sys_id":            sysID,
		"number":            number,
		"short_description": description,
		"state":             "1",
	}
}
