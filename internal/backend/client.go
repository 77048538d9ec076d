// Package backend is the HTTP client for the clinic REST API. Every durable
// operation of the admin UI goes through it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/pkg/circuitbreaker"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

type tokenKey struct{}

// WithToken attaches the caller's backend bearer token to ctx
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxFailures  int
	OpenTimeout  time.Duration
	ServiceToken string
	Location     *time.Location
}

type Client struct {
	baseURL      *url.URL
	http         *http.Client
	cb           *circuitbreaker.CircuitBreaker
	serviceToken string
	loc          *time.Location
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	c := &Client{
		baseURL:      base,
		http:         &http.Client{Timeout: cfg.Timeout},
		serviceToken: cfg.ServiceToken,
		loc:          cfg.Location,
		logger:       logger.With().Str("component", "backend").Logger(),
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "backend",
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.OpenTimeout,
			// only transport failures and 5xx say anything about backend health
			IsFailure: func(err error) bool {
				return errors.IsKind(err, errors.KindUnavailable)
			},
			// a caller that went away says nothing either way
			IsIgnored: isCanceled,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Location() *time.Location {
	return c.loc
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes the response body into out (may be nil).
// Non-2xx responses become AppErrors so handlers can surface them.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Internal(fmt.Errorf("encode %s request: %w", op, err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return errors.Internal(fmt.Errorf("build %s request: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := TokenFrom(ctx)
	if token == "" {
		token = c.serviceToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	status := "error"
	err = c.cb.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			if stderrors.Is(ctx.Err(), context.Canceled) {
				return fmt.Errorf("%s: %w", op, ctx.Err())
			}
			return errors.Unavailable("No se pudo conectar con el servidor", err)
		}
		defer resp.Body.Close()
		status = fmt.Sprintf("%d", resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if stderrors.Is(ctx.Err(), context.Canceled) {
				return fmt.Errorf("%s: %w", op, ctx.Err())
			}
			return errors.Unavailable("Respuesta incompleta del servidor", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return statusError(resp.StatusCode, data)
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(unwrap(data), out); err != nil {
			return errors.Unavailable("Respuesta inválida del servidor", fmt.Errorf("decode %s: %w", op, err))
		}
		return nil
	})
	if err == circuitbreaker.ErrOpen {
		status = "circuit_open"
		err = errors.Unavailable("El servidor no está disponible, intente más tarde", err)
	}
	c.metrics.ObserveBackend(op, status, time.Since(start))

	if isCanceled(err) {
		c.logger.Debug().Err(err).Str("operation", op).Msg("backend request abandoned by caller")
		return err
	}
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("operation", op).
			Str("method", method).
			Str("path", path).
			Str("status", status).
			Msg("backend request failed")
	}
	return err
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled)
}

// unwrap accepts both bare payloads and {"data": ...} envelopes
func unwrap(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return data
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return data
	}
	if inner, ok := env["data"]; ok && len(env) <= 3 {
		return inner
	}
	return data
}

func statusError(code int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	cause := fmt.Errorf("backend responded %d: %s", code, strings.TrimSpace(string(body)))

	switch {
	case code == http.StatusUnauthorized:
		return errors.Unauthorized(orDefault(msg, "Sesión no válida"), cause)
	case code == http.StatusForbidden:
		return errors.Forbidden(orDefault(msg, "No tiene permisos para esta acción"))
	case code == http.StatusNotFound:
		return &errors.AppError{Kind: errors.KindNotFound, Message: orDefault(msg, "Recurso no encontrado"), Err: cause}
	case code == http.StatusConflict:
		return errors.Conflict(orDefault(msg, "Conflicto con el estado actual"), cause)
	case code >= 400 && code < 500:
		return errors.BadRequest(orDefault(msg, "Solicitud inválida"), cause)
	default:
		return errors.Unavailable(orDefault(msg, "Error del servidor"), cause)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
