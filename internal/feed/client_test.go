package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMockModeWithoutCredentials(t *testing.T) {
	// The base URL points nowhere; without credentials it must never be
	// dialed.
	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	if !c.Mock() {
		t.Fatalf("client without credentials should be in mock mode")
	}

	resp, err := c.Query(context.Background(), "rust", 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("status = %q", resp.Status)
	}
	if len(resp.Items) != 8 {
		t.Fatalf("items = %d, want 8", len(resp.Items))
	}
	first := resp.Items[0]
	if first.ID != "item-1" {
		t.Fatalf("first id = %q", first.ID)
	}
	if first.Description != "Item 1 - This is a mock item for query: 'rust'" {
		t.Fatalf("first description = %q", first.Description)
	}
	for i, it := range resp.Items {
		want := float64(i+1) * 0.1
		if got := it.Relevance(); got < want-0.001 || got > want+0.001 {
			t.Fatalf("item %d relevance = %v, want %v", i+1, got, want)
		}
	}
}

func TestQuerySendsWirePayload(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"cards":[{"id":"c-1","text":"hello","relevance":0.5}],"status":"success"}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL:        srv.URL + "/",
		APIKey:         "secret",
		OrganizationID: "org-1",
		BatchCount:     5,
	})
	resp, err := c.Query(context.Background(), "hello wor", 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	wantPath := "/hackathon/org-1/feed/" + c.SessionID()
	if gotPath != wantPath {
		t.Fatalf("path = %q, want %q", gotPath, wantPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotBody["text"] != "hello wor" || gotBody["page"] != float64(3) || gotBody["batch_count"] != float64(5) {
		t.Fatalf("body = %v", gotBody)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "c-1" || resp.Items[0].Description != "hello" {
		t.Fatalf("items = %+v", resp.Items)
	}
	if resp.Items[0].Relevance() != 0.5 {
		t.Fatalf("relevance = %v", resp.Items[0].Relevance())
	}
}

func TestSessionStableAcrossQueries(t *testing.T) {
	paths := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		fmt.Fprint(w, `{"cards":[]}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", OrganizationID: "o"})
	for i := 0; i < 3; i++ {
		if _, err := c.Query(context.Background(), fmt.Sprintf("q%d", i), 1); err != nil {
			t.Fatalf("Query %d: %v", i, err)
		}
	}
	if len(paths) != 3 {
		t.Fatalf("got %d requests", len(paths))
	}
	for _, p := range paths[1:] {
		if p != paths[0] {
			t.Fatalf("session changed between queries: %v", paths)
		}
	}
}

func TestQueryAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error":"bad key"}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", OrganizationID: "o"})
	_, err := c.Query(context.Background(), "x", 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "bad key" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestQueryNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "k", OrganizationID: "o"})
	_, err := c.Query(context.Background(), "x", 1)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure classified as API error: %v", err)
	}
}

func TestDecodeCardsSalvagesGoodItems(t *testing.T) {
	body := `{"cards":[
		{"id":"a","text":"first","relevance":0.9},
		42,
		{"text":"no id here"},
		"nope"
	]}`
	resp, err := decodeCards(strings.NewReader(body))
	if err != nil {
		t.Fatalf("decodeCards: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("items = %+v, want 2 salvaged", resp.Items)
	}
	if resp.Items[0].ID != "a" {
		t.Fatalf("first id = %q", resp.Items[0].ID)
	}
	// Synthetic id numbering follows the card's position in the array.
	if resp.Items[1].ID != "item-3" || resp.Items[1].Description != "no id here" {
		t.Fatalf("second item = %+v", resp.Items[1])
	}
	if resp.Status != "success" {
		t.Fatalf("status default = %q", resp.Status)
	}
}

func TestDecodeCardsRejectsBrokenEnvelope(t *testing.T) {
	if _, err := decodeCards(strings.NewReader(`{"cards": [`)); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := decodeCards(strings.NewReader(`not json`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRelevanceDefaultsToZero(t *testing.T) {
	items := []Item{
		{Metadata: map[string]any{"relevance": "high"}},
		{Metadata: map[string]any{}},
		{Metadata: nil},
	}
	for i, it := range items {
		if it.Relevance() != 0 {
			t.Fatalf("item %d relevance = %v, want 0", i, it.Relevance())
		}
	}
}
