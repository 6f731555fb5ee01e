// Package nutritionix is a minimal client for the Nutritionix natural
// language nutrients endpoint.
package nutritionix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to the Nutritionix v2 API. Credentials are per-application;
// an unconfigured client (empty credentials) must not be used for lookups.
type Client struct {
	baseURL    string
	appID      string
	apiKey     string
	httpClient *http.Client
}

// Nutrients is the macro breakdown for one meal.
type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// NewClient creates a Client for the given API base URL and credentials.
func NewClient(baseURL, appID, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		appID:      appID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
	return c.appID != "" && c.apiKey != ""
}

type nutrientsRequest struct {
	Query string `json:"query"`
}

type nutrientsResponse struct {
	Foods []struct {
		Calories float64 `json:"nf_calories"`
		Protein  float64 `json:"nf_protein"`
		Carbs    float64 `json:"nf_total_carbohydrate"`
		Fat      float64 `json:"nf_total_fat"`
	} `json:"foods"`
}

// NaturalNutrients resolves a free-text meal description to its macros using
// the first food item the API returns.
func (c *Client) NaturalNutrients(ctx context.Context, query string) (Nutrients, error) {
	body, err := json.Marshal(nutrientsRequest{Query: query})
	if err != nil {
		return Nutrients{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/natural/nutrients", bytes.NewReader(body))
	if err != nil {
		return Nutrients{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Nutrients{}, fmt.Errorf("calling nutritionix: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Nutrients{}, fmt.Errorf("nutritionix returned status %d", resp.StatusCode)
	}

	var parsed nutrientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Nutrients{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(parsed.Foods) == 0 {
		return Nutrients{}, fmt.Errorf("no food items for query %q", query)
	}

	f := parsed.Foods[0]
	return Nutrients{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}, nil
}
