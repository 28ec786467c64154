package toshiba

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"

	"github.com/joshp123/acwatch/internal/rate"
	"github.com/joshp123/acwatch/internal/session"
	"github.com/joshp123/acwatch/internal/units"
)

const (
	loginPath   = "/api/Consumer/Login"
	mappingPath = "/api/AC/GetConsumerACMapping"

	requestTimeout = 15 * time.Second
	cacheTTL       = 10 * time.Minute

	// expires_in values beyond this are treated as non-expiring.
	maxTokenLifetime = 100 * 365 * 24 * time.Hour

	extraConsumerID = "consumer_id"
)

// Client talks to the Toshiba Home AC cloud.
type Client struct {
	log      *slog.Logger
	cfg      Config
	clock    clockwork.Clock
	limits   rate.Declaration
	session  *session.Manager
	httpDo   *http.Client
	endpoint string

	mu      sync.Mutex
	last    []UnitState
	lastErr error
}

type HTTPStatusError struct {
	Status int
	Body   string
}

func (e HTTPStatusError) Error() string {
	return fmt.Sprintf("toshiba api error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// RateLimits is the request budget applied to every upstream call.
func RateLimits(requestsPerMinute int) rate.Declaration {
	return rate.Provider("toshiba").
		MaxRequestsPer(rate.Minute, requestsPerMinute).
		CacheFor(cacheTTL)
}

func NewClient(log *slog.Logger, cfg Config, clock clockwork.Clock) (*Client, error) {
	return NewClientWithHTTP(log, cfg, clock, &http.Client{Timeout: requestTimeout})
}

func NewClientWithHTTP(log *slog.Logger, cfg Config, clock clockwork.Clock, base *http.Client) (*Client, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil || cfg.BaseURL == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	limits := RateLimits(cfg.RequestsPerMinute)
	c := &Client{
		log:      log.With("provider", "toshiba"),
		cfg:      cfg,
		clock:    clock,
		limits:   limits,
		httpDo:   rate.WrapHTTP(limits, base, rate.WithClock(clock)),
		endpoint: strings.TrimRight(cfg.BaseURL, "/"),
	}

	manager, err := session.NewManager("toshiba", c.Login, clock)
	if err != nil {
		return nil, err
	}
	c.session = manager
	return c, nil
}

// Login exchanges the configured credentials for a bearer token. The
// consumer id needed by the mapping call rides along as a token extra.
func (c *Client) Login(ctx context.Context) (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"Username": c.cfg.Username,
		"Password": c.cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	payload, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	login, err := ParseLoginMessage(payload)
	if err != nil {
		c.log.Warn("toshiba login failed", "err", err)
		return nil, err
	}
	c.log.Debug("toshiba login ok", "consumer_id", login.ConsumerID)

	token := &oauth2.Token{
		AccessToken: login.AccessToken,
		TokenType:   login.TokenType,
	}
	if lifetime := time.Duration(login.ExpiresIn) * time.Second; login.ExpiresIn > 0 && lifetime < maxTokenLifetime {
		token.Expiry = c.clock.Now().Add(lifetime)
	}
	return token.WithExtra(map[string]any{
		extraConsumerID:      login.ConsumerID,
		"country_id":         login.CountryID,
		"consumer_master_id": login.ConsumerMasterID,
	}), nil
}

// Mappings returns every AC group of the account.
func (c *Client) Mappings(ctx context.Context) ([]GroupMap, error) {
	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}
	consumerID, _ := token.Extra(extraConsumerID).(string)
	if consumerID == "" {
		c.session.Invalidate()
		return nil, fmt.Errorf("login response carried no consumer id")
	}

	query := url.Values{}
	query.Set("consumerId", consumerID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+mappingPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	payload, err := c.do(req)
	if err != nil {
		var statusErr HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusUnauthorized {
			c.session.Invalidate()
		}
		return nil, fmt.Errorf("ac mapping: %w", err)
	}

	var resp mappingResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode ac mapping: %w", err)
	}
	if !resp.IsSuccess {
		return nil, fmt.Errorf("ac mapping rejected: %s", resp.Message)
	}
	return resp.ResObj, nil
}

// States flattens every group's units, in group then list order, and
// decodes their packed state. Units with undecodable state are skipped.
func (c *Client) States(ctx context.Context) ([]UnitState, error) {
	groups, err := c.Mappings(ctx)
	if err != nil {
		c.record(nil, err)
		return nil, err
	}

	var out []UnitState
	for _, group := range groups {
		for _, unit := range group.ACList {
			state, err := ParseStateData(unit.ACStateData)
			if err != nil {
				decodeFailures.Inc()
				c.log.Warn("skipping unit with undecodable state", "unit", unit.Name, "id", unit.ID, "err", err)
				continue
			}
			out = append(out, UnitState{Unit: unit, State: state})
		}
	}
	c.record(out, nil)
	return out, nil
}

// Snapshots returns the account's units as display snapshots.
func (c *Client) Snapshots(ctx context.Context) ([]units.Snapshot, error) {
	states, err := c.States(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]units.Snapshot, 0, len(states))
	for _, s := range states {
		out = append(out, units.Snapshot{Name: s.Unit.Name, Attributes: s.State.Attributes()})
	}
	return out, nil
}

// LastStates returns the states from the most recent successful call and
// the error of the most recent call, if any.
func (c *Client) LastStates() ([]UnitState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]UnitState(nil), c.last...), c.lastErr
}

func (c *Client) record(states []UnitState, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err == nil {
		c.last = states
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpDo.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HTTPStatusError{Status: resp.StatusCode, Body: string(payload)}
	}
	return payload, nil
}
