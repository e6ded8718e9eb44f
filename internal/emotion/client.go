package emotion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	analyzePath   = "/analyze"
	representPath = "/represent"
	userAgent     = "mood-music-player/1.0"

	// faceDetector matches the Haar-cascade detector used for the fallback.
	faceDetector = "opencv"
)

// ErrServiceBusy is returned when the model service keeps answering 503
// after all retries.
var ErrServiceBusy = errors.New("emotion service busy")

// Client talks to a DeepFace-compatible model service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delays     []time.Duration
}

// NewClient creates a model service client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		delays: []time.Duration{500 * time.Millisecond, 1 * time.Second},
	}
}

// analyzeRequest is the body for POST /analyze and POST /represent.
type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions,omitempty"`
	EnforceDetection bool     `json:"enforce_detection"`
	DetectorBackend  string   `json:"detector_backend,omitempty"`
	Silent           bool     `json:"silent,omitempty"`
}

type analyzeResponse struct {
	Results []struct {
		Emotion         map[string]float64 `json:"emotion"`
		DominantEmotion string             `json:"dominant_emotion"`
	} `json:"results"`
}

type representResponse struct {
	Results []json.RawMessage `json:"results"`
}

type serviceError struct {
	Error string `json:"error"`
}

// statusError carries a non-2xx reply from the service.
type statusError struct {
	Code    int
	Message string
}

func (e *statusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("emotion service status %d", e.Code)
	}
	return fmt.Sprintf("emotion service status %d: %s", e.Code, e.Message)
}

// InferEmotion returns raw emotion scores for the first face in the image.
// Detection is not enforced, so a face-less image may still yield scores.
func (c *Client) InferEmotion(ctx context.Context, image []byte) (Scores, error) {
	req := analyzeRequest{
		Img:              dataURI(image),
		Actions:          []string{"emotion"},
		EnforceDetection: false,
		Silent:           true,
	}

	body, err := c.post(ctx, analyzePath, req)
	if err != nil {
		return nil, fmt.Errorf("analyzing image: %w", err)
	}

	var resp analyzeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing analyze response: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("analyze response contained no results")
	}

	return Scores(resp.Results[0].Emotion), nil
}

// DetectFace reports whether the image contains a face. A service reply
// saying no face could be detected is a negative answer, not an error.
func (c *Client) DetectFace(ctx context.Context, image []byte) (bool, error) {
	req := analyzeRequest{
		Img:              dataURI(image),
		EnforceDetection: true,
		DetectorBackend:  faceDetector,
	}

	body, err := c.post(ctx, representPath, req)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest && isNoFaceMessage(se.Message) {
			return false, nil
		}
		return false, fmt.Errorf("detecting face: %w", err)
	}

	var resp representResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("parsing represent response: %w", err)
	}
	return len(resp.Results) > 0, nil
}

// post sends a JSON request, retrying while the service reports 503.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		body, err := c.postOnce(ctx, c.baseURL+path, data)
		if err == nil {
			return body, nil
		}

		if errors.Is(err, ErrServiceBusy) {
			lastErr = err
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (c *Client) postOnce(ctx context.Context, url string, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, ErrServiceBusy
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se serviceError
		_ = json.Unmarshal(body, &se)
		return nil, &statusError{Code: resp.StatusCode, Message: se.Error}
	}

	return body, nil
}

// dataURI encodes an image the way the model service expects it.
func dataURI(image []byte) string {
	mime := http.DetectContentType(image)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func isNoFaceMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "face could not be detected") || strings.Contains(msg, "no face")
}

// Ensure Client implements both collaborator interfaces.
var (
	_ Inferrer     = (*Client)(nil)
	_ FaceDetector = (*Client)(nil)
)
