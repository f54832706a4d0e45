package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/survival-kitchen/pkg/state"
)

// APIError is a non-success answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API returned %d: %s", e.Status, e.Message)
}

type createGameRequest struct {
	Catalog string `json:"catalog,omitempty"`
	Seed    int64  `json:"seed,omitempty"`
}

func doJSON(ctx context.Context, client *http.Client, method, url string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CreateGame starts a game and returns the start response.
func CreateGame(ctx context.Context, client *http.Client, baseURL, catalogFile string, seed int64) (*state.Response, error) {
	var resp state.Response
	err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/games", createGameRequest{Catalog: catalogFile, Seed: seed}, http.StatusCreated, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostCommand sends one command.
func PostCommand(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID, cmd state.Command) (*state.Response, error) {
	var resp state.Response
	url := fmt.Sprintf("%s/v1/games/%s/commands", baseURL, gameID)
	if err := doJSON(ctx, client, http.MethodPost, url, cmd, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetGameState retrieves the current gamestate
func GetGameState(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*state.GameState, error) {
	var gs state.GameState
	if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/games/%s", baseURL, gameID), nil, http.StatusOK, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

// DrainMessages empties the game's message queue.
func DrainMessages(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) ([]string, error) {
	var out struct {
		Messages []string `json:"messages"`
	}
	if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/v1/games/%s/messages", baseURL, gameID), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// DeleteGame ends a game.
func DeleteGame(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) error {
	return doJSON(ctx, client, http.MethodDelete, fmt.Sprintf("%s/v1/games/%s", baseURL, gameID), nil, http.StatusNoContent, nil)
}

// EventStream reads event names from the game's SSE endpoint.
type EventStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

// OpenEventStream connects to the events endpoint. Cancel ctx or call Close
// to disconnect.
func OpenEventStream(ctx context.Context, client *http.Client, baseURL string, gameID uuid.UUID) (*EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/games/%s/events", baseURL, gameID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Message: "event stream refused"}
	}
	return &EventStream{body: resp.Body, reader: bufio.NewReader(resp.Body)}, nil
}

// Next blocks until the next event and returns its name and raw data.
func (s *EventStream) Next() (string, string, error) {
	var name string
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && name != "":
			return name, strings.TrimPrefix(line, "data: "), nil
		}
	}
}

func (s *EventStream) Close() error {
	return s.body.Close()
}
