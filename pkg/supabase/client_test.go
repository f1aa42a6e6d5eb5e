package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUpdateUserPassword(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotAPIKey string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id": "user-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-role-key")
	if err := client.UpdateUserPassword(context.Background(), "user-42", "new-password-123"); err != nil {
		t.Fatalf("UpdateUserPassword returned error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/auth/v1/admin/users/user-42" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer service-role-key" || gotAPIKey != "service-role-key" {
		t.Fatalf("expected service-role headers, got auth=%q apikey=%q", gotAuth, gotAPIKey)
	}
	if gotBody["password"] != "new-password-123" {
		t.Fatalf("expected password in body, got %v", gotBody)
	}
}

func TestUpdateUserPassword_APIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"msg": "Password should be at least 6 characters"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "service-role-key")
	if err := client.UpdateUserPassword(context.Background(), "user-42", "x"); err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("https://project.supabase.co/", "key")
	if client.baseURL != "https://project.supabase.co" {
		t.Fatalf("expected trimmed base URL, got %q", client.baseURL)
	}
}
