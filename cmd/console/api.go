package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// apiGame plays a game hosted by the HTTP API.
type apiGame struct {
	client      *http.Client
	baseURL     string
	catalogFile string
	seed        int64
	catalog     *catalog.Catalog
	id          uuid.UUID
}

func newAPIGame(client *http.Client, baseURL, catalogFile string, seed int64, cat *catalog.Catalog) *apiGame {
	return &apiGame{
		client:      client,
		baseURL:     baseURL,
		catalogFile: catalogFile,
		seed:        seed,
		catalog:     cat,
	}
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

type createGameRequest struct {
	Catalog string `json:"catalog,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
}

func (g *apiGame) Start(ctx context.Context) (*state.Response, error) {
	var resp state.Response
	err := g.do(ctx, http.MethodPost, "/v1/games", createGameRequest{Catalog: g.catalogFile, Seed: g.seed}, http.StatusCreated, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	if resp.State == nil {
		return nil, fmt.Errorf("failed to create game: response has no state")
	}
	g.id = resp.State.ID
	return &resp, nil
}

func (g *apiGame) Execute(ctx context.Context, cmd state.Command) (*state.Response, error) {
	var resp state.Response
	if err := g.do(ctx, http.MethodPost, fmt.Sprintf("/v1/games/%s/commands", g.id), cmd, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (g *apiGame) Catalog() *catalog.Catalog {
	return g.catalog
}

func (g *apiGame) do(ctx context.Context, method, path string, body any, want int, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
