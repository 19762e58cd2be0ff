package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	defaultAmount  = 10
)

// Response codes documented by Open Trivia DB.
const (
	CodeSuccess       = 0
	CodeNoResults     = 1
	CodeInvalidParam  = 2
	CodeTokenNotFound = 3
	CodeTokenEmpty    = 4
	CodeRateLimit     = 5
)

// RawQuestion mirrors the Open Trivia DB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type tokenResponse struct {
	ResponseCode    int    `json:"response_code"`
	ResponseMessage string `json:"response_message"`
	Token           string `json:"token"`
}

type categoriesResponse struct {
	Categories []domain.Category `json:"trivia_categories"`
}

// ResponseError reports a non-zero response_code.
type ResponseError struct {
	Code int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("opentdb response_code=%d", e.Code)
}

// Client talks to the Open Trivia DB HTTP API. It holds the session token so
// later question fetches avoid repeats.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sf         singleflight.Group

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Token returns the cached session token, or "" when none was acquired.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// FetchToken requests a session token once and reuses it afterwards.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	if token := c.Token(); token != "" {
		return token, nil
	}

	result, err, _ := c.sf.Do("token", func() (interface{}, error) {
		if token := c.Token(); token != "" {
			return token, nil
		}

		params := url.Values{}
		params.Set("command", "request")
		var payload tokenResponse
		if err := c.getJSON(ctx, "/api_token.php", params, &payload); err != nil {
			return "", fmt.Errorf("fetch token: %w", err)
		}
		if payload.ResponseCode != CodeSuccess {
			return "", fmt.Errorf("fetch token: %w", &ResponseError{Code: payload.ResponseCode})
		}
		c.setToken(payload.Token)
		return payload.Token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// ResetToken asks the API to forget which questions the current token has seen.
func (c *Client) ResetToken(ctx context.Context) error {
	token := c.Token()
	if token == "" {
		return nil
	}

	params := url.Values{}
	params.Set("command", "reset")
	params.Set("token", token)
	var payload tokenResponse
	if err := c.getJSON(ctx, "/api_token.php", params, &payload); err != nil {
		return fmt.Errorf("reset token: %w", err)
	}
	if payload.ResponseCode != CodeSuccess {
		return fmt.Errorf("reset token: %w", &ResponseError{Code: payload.ResponseCode})
	}
	if payload.Token != "" {
		c.setToken(payload.Token)
	}
	return nil
}

// FetchQuestions fetches a batch of questions. Extra query parameters such as
// type, category and difficulty are passed through.
func (c *Client) FetchQuestions(ctx context.Context, amount int, query map[string]string) ([]RawQuestion, error) {
	var payload questionsResponse
	if err := c.getJSON(ctx, "/api.php", c.questionParams(amount, query), &payload); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	switch payload.ResponseCode {
	case CodeSuccess:
		return payload.Results, nil
	case CodeNoResults:
		return nil, fmt.Errorf("fetch questions: %w", domain.ErrNoQuestions)
	case CodeTokenNotFound, CodeTokenEmpty:
		// a dead token would fail every later fetch too
		c.setToken("")
	}
	return nil, fmt.Errorf("fetch questions: %w", &ResponseError{Code: payload.ResponseCode})
}

// FetchCategories lists the available question categories.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	sort.Slice(payload.Categories, func(i, j int) bool {
		return payload.Categories[i].Name < payload.Categories[j].Name
	})
	return payload.Categories, nil
}

func (c *Client) questionParams(amount int, query map[string]string) url.Values {
	if amount <= 0 {
		amount = defaultAmount
	}
	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if token := c.Token(); token != "" {
		params.Set("token", token)
	}
	for key, value := range query {
		if value == "" {
			continue
		}
		params.Set(key, value)
	}
	return params
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("opentdb returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
