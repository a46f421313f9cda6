// Package portero verifies access tokens against the portero identity
// service and resolves them into principals.
package portero

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/bytebufferpool"

	"github.com/eormeno12/mipichanga-matches-api/internal/domain/user"
	basecache "github.com/eormeno12/mipichanga-matches-api/internal/platform/cache"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/logging"
	"github.com/eormeno12/mipichanga-matches-api/internal/platform/resilience"
	"github.com/eormeno12/mipichanga-matches-api/internal/usecase"
)

var errPorteroTransient = crerr.New("portero transient failure")

type ClientConfig struct {
	BaseURL        string
	IntrospectPath string
	Timeout        time.Duration
	// PrincipalTTL bounds how long a verified token is trusted without
	// re-introspection. Zero disables the cache.
	PrincipalTTL   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	introspectURL  string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	principals     *basecache.Store
}

func NewClient(cfg ClientConfig, httpClient *http.Client, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	var principals *basecache.Store
	if cfg.PrincipalTTL > 0 {
		principals = basecache.NewStore(cfg.PrincipalTTL)
	}

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		principals:     principals,
	}
}

// VerifyAccessToken introspects token and returns the principal it belongs
// to. Successful lookups are cached by token hash; denials are not cached.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := "portero:token:" + hashToken(token)
	if c.principals != nil {
		if v, ok := c.principals.Get(ctx, cacheKey); ok {
			principal, _ := v.(user.Principal)
			return principal, nil
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "portero circuit breaker rejected request", "state", c.breaker.State())
			return user.Principal{}, fmt.Errorf("%w: portero is temporarily unavailable: %v", usecase.ErrDependencyUnavailable, err)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.circuitEnabled {
		if isCircuitFailure(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if isCircuitFailure(err) {
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	if c.principals != nil {
		c.principals.Set(ctx, cacheKey, principal)
	}
	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := jsoniter.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}
	_, _ = buf.Write(encoded)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, strings.NewReader(buf.String()))
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection: %v", errPorteroTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errPorteroTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "portero introspection non-200", "status_code", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return user.Principal{}, fmt.Errorf("%w: introspection failed with status %d", errPorteroTransient, resp.StatusCode)
		}
		return user.Principal{}, crerr.Newf("portero introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := jsoniter.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
