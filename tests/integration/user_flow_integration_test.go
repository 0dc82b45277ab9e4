//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("RESILIENCE_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestUserJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/auth/register", "", map[string]any{
		"email":    userEmail,
		"password": password,
	}, &registerResp)
	if registerResp.Token == "" || registerResp.UserID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var catalogResp struct {
		QuestionCount int `json:"question_count"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/catalog", "", nil, &catalogResp)
	if catalogResp.QuestionCount == 0 {
		t.Fatalf("catalog has no questions")
	}

	var session struct {
		ID string `json:"id"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/sessions", token, nil, &session)
	if session.ID == "" {
		t.Fatalf("expected session id in response")
	}
	for q := 1; q <= catalogResp.QuestionCount; q++ {
		doJSON(t, client, http.MethodPut, base+"/api/sessions/"+session.ID+"/answers", token, map[string]int{
			"question_id": q,
			"value":       4,
		}, nil)
	}

	var submitResp struct {
		State  string `json:"state"`
		Record struct {
			ID    int64 `json:"id"`
			Score int   `json:"score"`
		} `json:"record"`
	}
	doJSON(t, client, http.MethodPost, base+"/api/sessions/"+session.ID+"/submit", token, map[string]string{
		"organization_name": "Integration Org",
	}, &submitResp)
	if submitResp.State != "submitted" || submitResp.Record.ID == 0 {
		t.Fatalf("unexpected submit response: %+v", submitResp)
	}
	if want := catalogResp.QuestionCount * 4; submitResp.Record.Score != want {
		t.Fatalf("score = %d, want %d", submitResp.Record.Score, want)
	}

	var dashboard struct {
		Count       int  `json:"count"`
		LatestScore *int `json:"latest_score"`
	}
	doJSON(t, client, http.MethodGet, base+"/api/assessments", token, nil, &dashboard)
	if dashboard.Count != 1 || dashboard.LatestScore == nil || *dashboard.LatestScore != submitResp.Record.Score {
		t.Fatalf("unexpected dashboard: %+v", dashboard)
	}

	req, err := http.NewRequest(http.MethodGet, base+"/api/assessments/export?format=long", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("export status %d body %s", resp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	if !strings.Contains(string(csvData), fmt.Sprintf("%d,1,4,", submitResp.Record.ID)) {
		t.Fatalf("export csv did not contain record %d; csv=%s", submitResp.Record.ID, csvData)
	}

	doJSON(t, client, http.MethodDelete, fmt.Sprintf("%s/api/assessments/%d", base, submitResp.Record.ID), token, nil, &dashboard)
	if dashboard.Count != 0 {
		t.Fatalf("record still listed after delete: %+v", dashboard)
	}
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, out any) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
