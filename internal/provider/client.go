// Package provider fetches question sets from the remote question APIs.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/certbible/certprep/internal/quiz"
	"github.com/rs/zerolog"
)

// ErrUnavailable marks transport-level failures: the provider could not be
// reached or answered with a non-2xx status. Payload problems surface as the
// loader's errors instead.
var ErrUnavailable = errors.New("question provider unavailable")

const (
	// DefaultPracticeCount is the practice exam size when none is requested.
	DefaultPracticeCount = 30
	// DefaultDomainCount is the size of a single-domain drill.
	DefaultDomainCount = 1

	maxBodyBytes = 8 << 20
)

// Request selects questions. A non-empty Domain routes to the per-domain
// question endpoint, otherwise the full practice exam endpoint is used.
type Request struct {
	Exam   string
	Domain string
	Count  int
}

// Config is the provider client configuration.
type Config struct {
	QuestionURL     string
	PracticeExamURL string
	APIKey          string
	Timeout         time.Duration
}

// Client talks to the question APIs.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a client. A zero Timeout means 30 seconds.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("component", "question_provider").Logger(),
	}
}

// Fetch retrieves and validates one question set.
func (c *Client) Fetch(ctx context.Context, req Request) ([]quiz.Question, error) {
	endpoint, count := c.cfg.PracticeExamURL, req.Count
	if req.Domain != "" {
		endpoint = c.cfg.QuestionURL
		if count <= 0 {
			count = DefaultDomainCount
		}
	} else if count <= 0 {
		count = DefaultPracticeCount
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	q := u.Query()
	q.Set("exam", req.Exam)
	if req.Domain != "" {
		q.Set("domain", req.Domain)
	}
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build provider request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("exam", req.Exam).
			Str("domain", req.Domain).
			Msg("provider returned non-success status")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	questions, err := quiz.Load(body)
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("exam", req.Exam).
		Str("domain", req.Domain).
		Int("questions", len(questions)).
		Dur("took", time.Since(start)).
		Msg("question set fetched")

	return questions, nil
}
