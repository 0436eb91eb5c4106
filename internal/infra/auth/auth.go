package auth_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

var (
	ErrNoServers   = errors.New("no auth servers configured")
	ErrUnreachable = errors.New("auth service unreachable")
)

type RRBalancer struct {
	mu      sync.Mutex
	servers []string
	cur     int
}

func (b *RRBalancer) NextServer() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.servers) == 0 {
		return ""
	}

	b.cur++
	n := b.cur
	index := (n - 1) % len(b.servers)
	return b.servers[index]
}

type AuthClient interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
}

type HTTPAuthClient struct {
	balancer   *RRBalancer
	httpClient *http.Client
	logger     *slog.Logger
}

// New takes a ';'-separated list of base URLs and spreads calls over them.
func New(serversList string, timeout time.Duration) *HTTPAuthClient {
	servers := make([]string, 0)
	if serversList != "" {
		for _, s := range strings.Split(serversList, ";") {
			if trimmed := strings.TrimRight(strings.TrimSpace(s), "/"); trimmed != "" {
				servers = append(servers, trimmed)
			}
		}
	}

	return &HTTPAuthClient{
		balancer: &RRBalancer{
			servers: servers},
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (c *HTTPAuthClient) Login(ctx context.Context, email, password string) error {
	return c.post(ctx, "/auth/login", CredentialsRequest{Email: email, Password: password})
}

func (c *HTTPAuthClient) Register(ctx context.Context, email, password string) error {
	return c.post(ctx, "/auth/register", CredentialsRequest{Email: email, Password: password})
}

// post succeeds on any 2xx; the body of a successful answer is ignored.
func (c *HTTPAuthClient) post(ctx context.Context, path string, body CredentialsRequest) error {
	server := c.balancer.NextServer()
	if server == "" {
		return ErrNoServers
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("auth request failed",
			slog.String("server", server),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Detail == "" {
		errResp.Detail = http.StatusText(resp.StatusCode)
	}

	return &model.RemoteRejection{
		Status: resp.StatusCode,
		Detail: errResp.Detail,
	}
}
