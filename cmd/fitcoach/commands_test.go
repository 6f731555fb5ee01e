package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestFeedbackRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /feedback": `{"suggested_action":"decrease_intensity","workout_adjustment":true,"nutrition_adjustment":false}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/feedback", map[string]string{
		"user": "alice",
		"text": "The workout was too hard",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		SuggestedAction string `json:"suggested_action"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.SuggestedAction != "decrease_intensity" {
		t.Errorf("action = %q", result.SuggestedAction)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["user"] != "alice" || body["text"] != "The workout was too hard" {
		t.Errorf("body = %v", body)
	}
}

func TestFeedbackCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"feedback", "alice"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing feedback text")
	}
	if !strings.Contains(err.Error(), "arg") {
		t.Errorf("error = %q, want it to mention args", err.Error())
	}
}

func TestPlanCommand_InvalidKind(t *testing.T) {
	old := newAPIClient
	defer func() { newAPIClient = old }()
	newAPIClient = func() (*apiClient, error) {
		return &apiClient{baseURL: "http://127.0.0.1:0", httpClient: http.DefaultClient}, nil
	}

	defer rootCmd.SetArgs(nil)
	rootCmd.SetArgs([]string{"plan", "swimming", "alice"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown plan kind")
	}
	if !strings.Contains(err.Error(), "workout or nutrition") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestDecodeJSONServerError(t *testing.T) {
	ts := newTestServer(t, nil)
	client := ts.client()

	resp, err := client.get(ctx, "/profiles/nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out any
	err = decodeJSON(resp, &out)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %q, want it to carry the status code", err.Error())
	}
}

func TestEmptyTokenOmitsAuthHeader(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /profiles": `[]`,
	})
	client := ts.client()
	client.token = ""

	if _, err := client.get(ctx, "/profiles"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.requests[0].Auth != "" {
		t.Errorf("auth header = %q, want empty", ts.requests[0].Auth)
	}
}

func TestColorize(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "hello")
	if strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}

	noColor = false
	result = colorize(colorGreen, "hello")
	if !strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}
