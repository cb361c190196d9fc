// Package clawbot implements a reference agent: a client that registers,
// observes its surroundings, and keeps itself fed and employed over the
// public API. It doubles as living documentation of the wire protocol.
package clawbot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client talks to one ClawCity server with one agent's key.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient targets the given base URL. The key may be empty until
// Register fills it.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Registration mirrors POST /agent/register.
type Registration struct {
	AgentID string `json:"agentId"`
	APIKey  string `json:"apiKey"`
	Name    string `json:"name"`
	Zone    string `json:"zone"`
	Cash    int64  `json:"cash"`
}

// Register creates the agent and stores its key on the client.
func (c *Client) Register(name, llmInfo string) (*Registration, error) {
	var reg Registration
	if err := c.post("/agent/register", "", map[string]any{
		"name": name, "llmInfo": llmInfo,
	}, &reg); err != nil {
		return nil, err
	}
	c.APIKey = reg.APIKey
	return &reg, nil
}

// AgentState mirrors the slice of GET /agent/state the bot plans from.
type AgentState struct {
	Tick  uint64 `json:"tick"`
	Agent struct {
		ID      string  `json:"id"`
		Name    string  `json:"name"`
		ZoneID  string  `json:"zoneId"`
		Cash    int64   `json:"cash"`
		Health  int     `json:"health"`
		Stamina int     `json:"stamina"`
		Heat    float64 `json:"heat"`
		Status  string  `json:"status"`
	} `json:"agent"`
	Zone struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Police string `json:"police"`
	} `json:"zone"`
	Routes []struct {
		ToZone   string `json:"toZone"`
		CashCost int64  `json:"cashCost"`
	} `json:"routes"`
	Jobs []struct {
		ID          string `json:"id"`
		Wage        int64  `json:"wage"`
		StaminaCost int    `json:"staminaCost"`
		Skill       string `json:"skill"`
		MinSkill    int    `json:"minSkill"`
	} `json:"jobs"`
	Coops []struct {
		ID     string `json:"id"`
		TypeID string `json:"typeId"`
	} `json:"coopsRecruiting"`
}

// State fetches the current observation.
func (c *Client) State() (*AgentState, error) {
	var st AgentState
	if err := c.get("/agent/state", &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ActionResult mirrors the dispatcher's wire result.
type ActionResult struct {
	OK      bool           `json:"ok"`
	Tick    uint64         `json:"tick"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   string         `json:"error"`
}

// Act submits one action with a fresh request id.
func (c *Client) Act(action string, args map[string]any) (*ActionResult, error) {
	var res ActionResult
	err := c.post("/agent/act", c.APIKey, map[string]any{
		"requestId": uuid.NewString(),
		"action":    action,
		"args":      args,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	return c.do(req, out)
}

func (c *Client) post(path, key string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	// Action rejections come back as structured results with non-2xx
	// statuses; decode those instead of failing.
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
