package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/promptab/promptvar/internal/errors"
	"github.com/promptab/promptvar/internal/variable"
)

func testLocalVar(name, value string) variable.Variable {
	return variable.Variable{ID: "local-" + name, Name: name, Value: value}
}

func TestList(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/variables" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Variable{
			{ID: "1", Name: "NAME", Value: "Alice", UpdatedAt: 100},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	vars, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if len(vars) != 1 || vars[0].Name != "NAME" || vars[0].Value != "Alice" {
		t.Errorf("vars = %+v", vars)
	}
}

func TestDo_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.List(context.Background())
	if !errors.Is(err, errors.ErrRemote) {
		t.Errorf("expected REMOTE error, got %v", err)
	}
}

func TestDo_MissingBaseURL(t *testing.T) {
	client := NewClient("", "")
	_, err := client.List(context.Background())
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestUpsertVariable_UpdatesExistingByName(t *testing.T) {
	var updatedID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode([]Variable{{ID: "42", Name: "NAME", Value: "old"}})
		case r.Method == http.MethodPut:
			updatedID = r.URL.Path[len("/api/v1/variables/"):]
			var v Variable
			json.NewDecoder(r.Body).Decode(&v)
			v.ID = updatedID
			json.NewEncoder(w).Encode(v)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.UpsertVariable(context.Background(), testLocalVar("NAME", "new"))
	if err != nil {
		t.Fatalf("UpsertVariable failed: %v", err)
	}
	if updatedID != "42" {
		t.Errorf("updated id = %q, want 42", updatedID)
	}
}

func TestUpsertVariable_CreatesWhenMissing(t *testing.T) {
	created := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]Variable{})
		case http.MethodPost:
			created = true
			var v Variable
			json.NewDecoder(r.Body).Decode(&v)
			v.ID = "new-id"
			json.NewEncoder(w).Encode(v)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	if err := client.UpsertVariable(context.Background(), testLocalVar("X", "v")); err != nil {
		t.Fatalf("UpsertVariable failed: %v", err)
	}
	if !created {
		t.Error("expected a POST for the missing variable")
	}
}

func TestOptimize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/prompts/optimize" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req OptimizeRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Language != "auto" {
			t.Errorf("Language = %q, want auto default", req.Language)
		}

		json.NewEncoder(w).Encode(OptimizeResponse{
			Original:       req.Prompt,
			Optimized:      "You are an expert. " + req.Prompt,
			TechniquesUsed: []string{TechniqueRolePlaying},
			Variables: []SuggestedVariable{
				{Text: "Paris", SuggestedName: "CITY", Type: "entity"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	resp, err := client.Optimize(context.Background(), OptimizeRequest{Prompt: "Plan a trip to Paris"})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if resp.Optimized == "" || resp.Original != "Plan a trip to Paris" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Variables) != 1 || resp.Variables[0].SuggestedName != "CITY" {
		t.Errorf("Variables = %+v", resp.Variables)
	}
}

func TestOptimize_EmptyPrompt(t *testing.T) {
	client := NewClient("http://unused", "")
	_, err := client.Optimize(context.Background(), OptimizeRequest{})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}
