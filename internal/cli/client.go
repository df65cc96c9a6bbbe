package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// JobResponse — задание из API.
type JobResponse struct {
	ID         string `json:"id"`
	Pipeline   string `json:"pipeline"`
	State      string `json:"state"`
	CreatedAt  string `json:"created_at"`
	QueuedAt   string `json:"queued_at,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ResultResponse — итог задания из API.
type ResultResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// StatsResponse — счётчики задания из API.
type StatsResponse struct {
	Packets  uint64 `json:"packets"`
	Bytes    uint64 `json:"bytes"`
	BytesOut uint64 `json:"bytes_out"`
	Errors   uint64 `json:"errors"`
	Duration string `json:"duration"`
}

// KindResponse — запись реестра видов задач из API.
type KindResponse struct {
	Name        string `json:"name"`
	Capability  string `json:"capability"`
	Description string `json:"description"`
}

// QueuesResponse — размеры очередей планировщика из API.
type QueuesResponse struct {
	Waiting  int `json:"waiting"`
	Running  int `json:"running"`
	Finished int `json:"finished"`
}

// StateResponse — запись state из API.
type StateResponse struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Raw     []byte          `json:"raw,omitempty"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для skyfetch API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SubmitJob ставит задание в очередь.
func (c *Client) SubmitJob(pipeline string) (*JobResponse, error) {
	body := map[string]string{"pipeline": pipeline}
	var job JobResponse
	err := c.post("/api/v1/jobs", body, &job)
	return &job, err
}

// ListJobs возвращает все известные задания.
func (c *Client) ListJobs() ([]JobResponse, error) {
	var jobs []JobResponse
	err := c.list("/api/v1/jobs", &jobs)
	return jobs, err
}

// GetJob возвращает задание по ID.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// GetResult возвращает итог завершённого задания.
func (c *Client) GetResult(id string) (*ResultResponse, error) {
	var result ResultResponse
	err := c.get("/api/v1/jobs/"+id+"/result", &result)
	return &result, err
}

// GetStats возвращает счётчики задания.
func (c *Client) GetStats(id string) (*StatsResponse, error) {
	var stats StatsResponse
	err := c.get("/api/v1/jobs/"+id+"/stats", &stats)
	return &stats, err
}

// CancelJob отменяет задание.
func (c *Client) CancelJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/cancel", nil, &job)
	return &job, err
}

// ListKinds возвращает реестр видов задач.
func (c *Client) ListKinds() ([]KindResponse, error) {
	var kinds []KindResponse
	err := c.list("/api/v1/kinds", &kinds)
	return kinds, err
}

// GetQueues возвращает размеры очередей планировщика.
func (c *Client) GetQueues() (*QueuesResponse, error) {
	var queues QueuesResponse
	err := c.get("/api/v1/queues", &queues)
	return &queues, err
}

// GetState возвращает запись state по тегу.
func (c *Client) GetState(tag string) (*StateResponse, error) {
	var st StateResponse
	err := c.get("/api/v1/state/"+tag, &st)
	return &st, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
