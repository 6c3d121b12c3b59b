package cubox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	client := NewClient(http.DefaultClient, "cubox.cc", "test-key", "test-agent")
	client.mu.Lock()
	client.endpoint = serverURL
	client.mu.Unlock()
	return client
}

func TestListArticlesPage_FirstPage(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != listPath {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}

		fmt.Fprint(w, `{"code":200,"message":"ok","data":[
			{"id":"a1","title":"First","url":"","create_time":"2023-07-03T10:00:00Z","update_time":"2023-07-03T11:00:00Z","type":"Text"},
			{"id":"a2","title":"Second","url":"https://example.com","create_time":"2023-07-03T09:00:00Z","update_time":"2023-07-03T10:00:00Z","type":"Link"}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	page, err := client.ListArticlesPage(context.Background(), "", "", 500)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(page.Articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(page.Articles))
	}
	if page.Articles[0].ID != "a1" {
		t.Errorf("Expected first article a1, got %s", page.Articles[0].ID)
	}
	if page.HasMore {
		t.Error("Expected HasMore false for a partial page")
	}

	// First page must not carry a resume point
	if _, ok := gotBody["last_card_id"]; ok {
		t.Error("First page request should not include last_card_id")
	}
	if gotBody["limit"] != float64(500) {
		t.Errorf("Expected limit 500, got %v", gotBody["limit"])
	}
}

func TestListArticlesPage_ResumePoint(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		fmt.Fprint(w, `{"code":200,"message":"ok","data":[]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	page, err := client.ListArticlesPage(context.Background(), "card-9", "2023-07-03T11:00:00Z", 500)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(page.Articles) != 0 {
		t.Errorf("Expected empty page, got %d articles", len(page.Articles))
	}
	if gotBody["last_card_id"] != "card-9" {
		t.Errorf("Expected last_card_id card-9, got %v", gotBody["last_card_id"])
	}
	if gotBody["last_card_update_time"] != "2023-07-03T11:00:00Z" {
		t.Errorf("Unexpected last_card_update_time: %v", gotBody["last_card_update_time"])
	}
}

func TestListArticlesPage_HasMoreHeuristic(t *testing.T) {
	// A full page reads as "probably more", even if nothing is behind it.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":200,"message":"ok","data":[
			{"id":"a1","title":"One","url":"","create_time":"","update_time":"2023-07-03T11:00:00Z","type":"Text"},
			{"id":"a2","title":"Two","url":"","create_time":"","update_time":"2023-07-03T10:00:00Z","type":"Text"}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	page, err := client.ListArticlesPage(context.Background(), "", "", 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !page.HasMore {
		t.Error("Expected HasMore true when page length matches the limit")
	}
}

func TestListArticlesPage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.ListArticlesPage(context.Background(), "", "", 500); err == nil {
		t.Error("Expected error for HTTP 401")
	}
}

func TestGetArticleContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != contentPath {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "card-1" {
			t.Errorf("Expected id card-1, got %s", got)
		}
		fmt.Fprint(w, `{"code":200,"message":"ok","data":"hello"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	content, err := client.GetArticleContent(context.Background(), "card-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if content != "hello" {
		t.Errorf("Expected 'hello', got %q", content)
	}
}
