package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"trivia-quiz/internal/domain"
)

func TestPageFormFlow(t *testing.T) {
	server, _ := newTestServer(t, true)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar}

	page := get(t, client, server.URL+"/")
	if !strings.Contains(page, `data-region="intro">`) {
		t.Fatalf("expected visible intro on first visit")
	}

	page = post(t, client, server.URL+"/start", url.Values{"amount": {"1"}})
	if !strings.Contains(page, "What is 2 + 2?") || !strings.Contains(page, "Question 1 of 1") {
		t.Fatalf("expected first question after start")
	}

	page = post(t, client, server.URL+"/answer", url.Values{"answerChoice": {"5"}})
	if !strings.Contains(page, "Too bad! The correct answer was: 4") {
		t.Fatalf("expected negative feedback")
	}

	page = post(t, client, server.URL+"/continue", nil)
	if !strings.Contains(page, "You scored 0 out of 1.") {
		t.Fatalf("expected outro with final score")
	}

	var results []domain.Result
	getJSON(t, client, server.URL+"/api/results", &results)
	if len(results) != 1 || results[0].Total != 1 || results[0].Score != 0 {
		t.Fatalf("expected one recorded result, got %+v", results)
	}

	page = post(t, client, server.URL+"/restart", nil)
	if !strings.Contains(page, `data-region="intro">`) {
		t.Fatalf("expected intro after restart")
	}
}

func TestPageLoadRetriesTokenAfterFailedFetch(t *testing.T) {
	tokens := &flakyTokens{failures: 1}
	server := newTestServerWithTokens(t, tokens)

	const disabled = `type="submit" disabled>Start quiz`
	if page := get(t, http.DefaultClient, server.URL+"/"); !strings.Contains(page, disabled) {
		t.Fatalf("expected start disabled without a token")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		page := get(t, http.DefaultClient, server.URL+"/")
		if !strings.Contains(page, disabled) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("start stayed disabled after %d token fetches", tokens.fetches())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if tokens.fetches() < 2 {
		t.Fatalf("expected the failed fetch to be retried, got %d fetches", tokens.fetches())
	}
}

func TestRejectedFormActionKeepsPage(t *testing.T) {
	server, _ := newTestServer(t, true)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar}

	post(t, client, server.URL+"/answer", url.Values{"answerChoice": {"4"}})

	var snap domain.Snapshot
	getJSON(t, client, server.URL+"/api/state", &snap)
	if snap.State.Page != domain.PageIntro || len(snap.State.UserAnswers) != 0 {
		t.Fatalf("expected untouched intro state, got %+v", snap.State)
	}
	if snap.SessionID == "" {
		t.Fatalf("expected session id to be issued")
	}
}

func TestResultsRejectsBadLimit(t *testing.T) {
	server, _ := newTestServer(t, true)

	resp, err := http.Get(server.URL + "/api/results?limit=abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t, true)
	if body := get(t, http.DefaultClient, server.URL+"/healthz"); body != "ok" {
		t.Fatalf("unexpected healthz body %q", body)
	}
}

func get(t *testing.T, client *http.Client, target string) string {
	t.Helper()
	resp, err := client.Get(target)
	if err != nil {
		t.Fatalf("get %s: %v", target, err)
	}
	return readBody(t, resp)
}

// post follows the 303 back to the page and returns it.
func post(t *testing.T, client *http.Client, target string, form url.Values) string {
	t.Helper()
	resp, err := client.PostForm(target, form)
	if err != nil {
		t.Fatalf("post %s: %v", target, err)
	}
	return readBody(t, resp)
}

func getJSON(t *testing.T, client *http.Client, target string, out any) {
	t.Helper()
	resp, err := client.Get(target)
	if err != nil {
		t.Fatalf("get %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", target, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", target, err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d for %s", resp.StatusCode, resp.Request.URL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}
