package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"idverify/internal/logger"
)

const (
	// DefaultClovaTimeout bounds one provider round trip.
	DefaultClovaTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of additional attempts after the
	// first failed call.
	DefaultMaxRetries = 2

	// retryBackoffStep is multiplied by the attempt number for linear
	// backoff between retries.
	retryBackoffStep = 600 * time.Millisecond
)

// ClovaConfig holds configuration for the Clova OCR engine.
type ClovaConfig struct {
	// Endpoint is the full invoke URL from the Clova console.
	Endpoint string

	// SecretKey is the pre-shared secret sent in the X-OCR-SECRET header.
	SecretKey string

	// Timeout bounds one provider round trip. Default: 30 seconds.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts on 5xx or network
	// failures. Client-side (4xx) rejections are never retried.
	MaxRetries int
}

// ClovaConfigFromEnv reads the Clova settings from the environment.
func ClovaConfigFromEnv() ClovaConfig {
	return ClovaConfig{
		Endpoint:   os.Getenv("CLOVA_OCR_URL"),
		SecretKey:  os.Getenv("CLOVA_SECRET_KEY"),
		Timeout:    DefaultClovaTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// ClovaClient implements Recognizer against the Clova OCR general API.
// The client carries only immutable configuration and is safe for
// concurrent use.
type ClovaClient struct {
	endpoint   string
	secretKey  string
	httpClient *http.Client
	maxRetries int
	log        zerolog.Logger
}

// NewClovaClient creates a Clova-backed recognizer. It fails immediately,
// before any network call, when the endpoint or secret is unset.
func NewClovaClient(cfg ClovaConfig) (*ClovaClient, error) {
	const op = "NewClovaClient"

	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, NewOCRError(op, ErrMissingEndpoint, "")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, NewOCRError(op, ErrMissingSecret, "")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultClovaTimeout
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &ClovaClient{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		log:        logger.WithComponent("clova-ocr"),
	}, nil
}

// Name returns the engine tag.
func (c *ClovaClient) Name() string { return "clova" }

// clovaRequest is the JSON message part of the multipart upload.
type clovaRequest struct {
	Version   string       `json:"version"`
	RequestID string       `json:"requestId"`
	Timestamp int64        `json:"timestamp"`
	Images    []clovaImage `json:"images"`
	Lang      string       `json:"lang,omitempty"`
}

type clovaImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

// looseFloat tolerates confidence values arriving as numbers, numeric
// strings or null; anything unparsable decodes to 0.0.
type looseFloat float64

func (l *looseFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*l = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*l = 0
		return nil
	}
	*l = looseFloat(f)
	return nil
}

type clovaResponse struct {
	Images []struct {
		Fields []clovaField `json:"fields"`
	} `json:"images"`
}

type clovaField struct {
	InferText       string     `json:"inferText"`
	InferConfidence looseFloat `json:"inferConfidence"`
	BoundingPoly    struct {
		Vertices []struct {
			X looseFloat `json:"x"`
			Y looseFloat `json:"y"`
		} `json:"vertices"`
	} `json:"boundingPoly"`
}

// Recognize submits the image to the provider and converts the response
// into fragments. Server-side and network failures are retried with linear
// backoff; client-side rejections fail immediately.
func (c *ClovaClient) Recognize(ctx context.Context, imagePath string) ([]Fragment, error) {
	const op = "Recognize"

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to read image %s", imagePath))
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(imagePath)), ".")
	if format == "" {
		format = "jpg"
	}

	requestID := uuid.NewString()
	message, err := json.Marshal(clovaRequest{
		Version:   "V2",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Images:    []clovaImage{{Format: format, Name: "document"}},
	})
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to build request message")
	}

	log := c.log.With().Str("request_id", requestID).Logger()

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries+1; attempt++ {
		if attempt > 1 {
			backoff := retryBackoffStep * time.Duration(attempt-1)
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Retrying Clova OCR request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, WrapOCRError(op, ctx.Err(), "canceled while waiting to retry")
			}
		}

		fragments, retryable, err := c.submit(ctx, message, imageData, filepath.Base(imagePath))
		if err == nil {
			log.Debug().
				Int("fragments", len(fragments)).
				Int("attempt", attempt).
				Msg("Clova OCR request completed")
			return fragments, nil
		}
		if !retryable {
			return nil, WrapOCRError(op, err, "")
		}
		lastErr = err
	}

	return nil, NewOCRError(op, ErrRequestFailed, lastErr.Error())
}

// submit performs one provider round trip. The second return value reports
// whether the failure is retryable.
func (c *ClovaClient) submit(ctx context.Context, message, imageData []byte, fileName string) ([]Fragment, bool, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("message", string(message)); err != nil {
		return nil, false, err
	}
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, false, err
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, false, err
	}
	if err := writer.Close(); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-OCR-SECRET", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network or timeout failures are retryable.
		return nil, true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("provider returned %d: %s", resp.StatusCode, truncate(respBody, 200))
	case resp.StatusCode != http.StatusOK:
		return nil, false, NewOCRError("submit", ErrRequestRejected,
			fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(respBody, 200)))
	}

	var parsed clovaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// Malformed body degrades to "no text found" rather than failing
		// the validation attempt.
		c.log.Warn().Err(err).Msg("Unparsable Clova response, treating as empty")
		return nil, false, nil
	}

	return convertClovaResponse(parsed), false, nil
}

// convertClovaResponse flattens the first image's fields into fragments.
// Fields with fewer than four polygon vertices are dropped.
func convertClovaResponse(resp clovaResponse) []Fragment {
	if len(resp.Images) == 0 {
		return nil
	}

	fields := resp.Images[0].Fields
	fragments := make([]Fragment, 0, len(fields))
	for _, f := range fields {
		verts := f.BoundingPoly.Vertices
		if len(verts) < 4 {
			continue
		}
		var quad Quad
		for i := 0; i < 4; i++ {
			quad[i] = Point{X: float64(verts[i].X), Y: float64(verts[i].Y)}
		}
		fragments = append(fragments, Fragment{
			Quad:       quad,
			Text:       f.InferText,
			Confidence: float64(f.InferConfidence),
		})
	}
	return fragments
}

// RecognizeLines returns fragment texts at or above minConfidence, sorted
// by vertical center.
func (c *ClovaClient) RecognizeLines(ctx context.Context, imagePath string, minConfidence float64) ([]string, error) {
	fragments, err := c.Recognize(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return LinesFromFragments(fragments, minConfidence), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
