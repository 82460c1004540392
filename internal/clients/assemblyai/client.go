package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fahad04code/Bakbak-bot/internal/platform/httpx"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Transcript is the polled transcript resource.
type Transcript struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Client covers the three AssemblyAI calls the upload flows need: push the
// media bytes, request a transcript, poll it.
type Client interface {
	Upload(ctx context.Context, data []byte) (string, error)
	Submit(ctx context.Context, audioURL string) (string, error)
	Get(ctx context.Context, transcriptID string) (Transcript, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client

	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing ASSEMBLYAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("ASSEMBLYAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSec := 120
	if v := os.Getenv("ASSEMBLYAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("ASSEMBLYAI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	return &client{
		log:        log.With("service", "AssemblyAIClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type assemblyAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *assemblyAIHTTPError) Error() string {
	return fmt.Sprintf("assemblyai http %d: %s", e.StatusCode, e.Body)
}

func (e *assemblyAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (c *client) doOnce(ctx context.Context, method, path, contentType string, body []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &assemblyAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, contentType, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("assemblyai decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("AssemblyAI request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// -------------------- Upload --------------------

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

func (c *client) Upload(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty upload")
	}

	var resp uploadResponse
	if err := c.do(ctx, "POST", "/v2/upload", "application/octet-stream", data, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.UploadURL) == "" {
		return "", errors.New("upload_url missing in response")
	}
	return strings.TrimSpace(resp.UploadURL), nil
}

// -------------------- Transcript --------------------

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

func (c *client) Submit(ctx context.Context, audioURL string) (string, error) {
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return "", errors.New("audio url required")
	}

	body, err := json.Marshal(transcriptRequest{AudioURL: audioURL})
	if err != nil {
		return "", err
	}

	var resp Transcript
	if err := c.do(ctx, "POST", "/v2/transcript", "application/json", body, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.ID) == "" {
		return "", errors.New("transcript id missing")
	}
	return strings.TrimSpace(resp.ID), nil
}

func (c *client) Get(ctx context.Context, transcriptID string) (Transcript, error) {
	transcriptID = strings.TrimSpace(transcriptID)
	if transcriptID == "" {
		return Transcript{}, errors.New("transcript id required")
	}

	var resp Transcript
	if err := c.do(ctx, "GET", "/v2/transcript/"+transcriptID, "", nil, &resp); err != nil {
		return Transcript{}, err
	}
	return resp, nil
}
