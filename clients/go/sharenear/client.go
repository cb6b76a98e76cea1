// Package sharenear provides a client for the ShareNear room and signaling API.
package sharenear

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultURL is the server used when none is given.
const DefaultURL = "http://localhost:8001"

// Client is a ShareNear API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new ShareNear client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
	Detail     string `json:"detail,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("sharenear error %d: %s (%s)", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("sharenear error %d: %s", e.StatusCode, e.Message)
}

// doRequest performs an HTTP request against the /api prefix and decodes
// the response into out when it is non-nil.
func (c *Client) doRequest(method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+"/api"+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

func roomPath(code string, rest string) string {
	return "/rooms/" + url.PathEscape(code) + rest
}

// InfoResponse is the response from the API root.
type InfoResponse struct {
	Message      string `json:"message"`
	Version      string `json:"version"`
	StoreEnabled bool   `json:"store_enabled"`
	StoreBackend string `json:"store_backend"`
}

// Info returns the API banner.
func (c *Client) Info() (*InfoResponse, error) {
	var resp InfoResponse
	if err := c.doRequest(http.MethodGet, "/", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status       string                 `json:"status"`
	Version      string                 `json:"version"`
	StoreEnabled bool                   `json:"store_enabled"`
	StoreBackend string                 `json:"store_backend"`
	Checks       map[string]interface{} `json:"checks"`
	Timestamp    string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConnectionResponse is the response from the connection probe.
type ConnectionResponse struct {
	Status       string            `json:"status"`
	StoreBackend string            `json:"store_backend"`
	Latency      string            `json:"latency,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// TestConnection asks the server to round-trip a record through its store.
func (c *Client) TestConnection() (*ConnectionResponse, error) {
	var resp ConnectionResponse
	if err := c.doRequest(http.MethodPost, "/test-connection", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateRoomResponse is the response from creating a room.
type CreateRoomResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoom creates a room. An empty code asks the server to generate one.
func (c *Client) CreateRoom(code string) (*CreateRoomResponse, error) {
	req := map[string]string{}
	if code != "" {
		req["code"] = code
	}

	var resp CreateRoomResponse
	if err := c.doRequest(http.MethodPost, "/rooms", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// File is file metadata recorded in a room.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// Room is a room with its file metadata.
type Room struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
	Users     []string  `json:"users"`
	Files     []File    `json:"files"`
	Active    bool      `json:"active"`
}

// GetRoom fetches a room.
func (c *Client) GetRoom(code string) (*Room, error) {
	var resp Room
	if err := c.doRequest(http.MethodGet, roomPath(code, ""), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddFileRequest is the request body for recording file metadata.
type AddFileRequest struct {
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FileType string `json:"file_type"`
}

// AddFileResponse is the response from recording file metadata.
type AddFileResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// AddFile records metadata for a file shared in a room.
func (c *Client) AddFile(code, name string, size int64, fileType string) (*AddFileResponse, error) {
	req := AddFileRequest{FileName: name, FileSize: size, FileType: fileType}

	var resp AddFileResponse
	if err := c.doRequest(http.MethodPost, roomPath(code, "/files"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// SendMessageResponse is the response from sending a message.
type SendMessageResponse struct {
	Message   string    `json:"message"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessage posts a chat message to a room.
func (c *Client) SendMessage(code, text, sender string) (*SendMessageResponse, error) {
	req := SendMessageRequest{Text: text, Sender: sender}

	var resp SendMessageResponse
	if err := c.doRequest(http.MethodPost, roomPath(code, "/messages"), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Message represents a chat message.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagesResponse is the response from listing messages.
type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

// GetMessages lists up to limit messages, oldest first. A limit of zero
// uses the server default.
func (c *Client) GetMessages(code string, limit int) (*MessagesResponse, error) {
	path := roomPath(code, "/messages")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var resp MessagesResponse
	if err := c.doRequest(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendSignal relays a WebRTC signaling payload (offer, answer or ICE
// candidate) to a room.
func (c *Client) SendSignal(code string, payload map[string]interface{}) error {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return c.doRequest(http.MethodPost, roomPath(code, "/signal"), payload, nil)
}
