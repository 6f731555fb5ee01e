package nutritionix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNaturalNutrients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/natural/nutrients" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-app-id") != "id" || r.Header.Get("x-app-key") != "key" {
			t.Error("credentials missing from headers")
		}
		var req nutrientsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Query != "banana" {
			t.Errorf("query = %q", req.Query)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"foods": []map[string]any{{
				"nf_calories":           105.0,
				"nf_protein":            1.3,
				"nf_total_carbohydrate": 27.0,
				"nf_total_fat":          0.4,
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "key")
	got, err := c.NaturalNutrients(context.Background(), "banana")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	want := Nutrients{Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNaturalNutrientsEmptyFoods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"foods": []any{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "id", "key")
	if _, err := c.NaturalNutrients(context.Background(), "mystery meal"); err == nil {
		t.Error("expected error for empty foods list")
	}
}

func TestNaturalNutrientsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad", "creds")
	if _, err := c.NaturalNutrients(context.Background(), "banana"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestConfigured(t *testing.T) {
	if NewClient("u", "", "").Configured() {
		t.Error("client without credentials reports configured")
	}
	if !NewClient("u", "id", "key").Configured() {
		t.Error("client with credentials reports unconfigured")
	}
}
