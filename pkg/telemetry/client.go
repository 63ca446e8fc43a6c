package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jpuchoc/st-report/pkg/config"
	"github.com/jpuchoc/st-report/pkg/trips"
	"github.com/rs/zerolog/log"
)

// Client reads asset timeseries from a ThingsBoard style REST API. Every fetch
// logs in first and then requests all keys in one call.
type Client struct {
	BaseURL  string
	Username string
	Password string
	AssetID  string

	Keys  []string
	Limit int

	MaxRetries uint64
	HTTPClient *http.Client

	// NewBackOff builds the retry policy of one fetch. Defaults to exponential.
	NewBackOff func() backoff.BackOff
}

func NewClient(telemetry config.Telemetry, keys trips.Keys) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(telemetry.BaseURL, "/"),
		Username:   telemetry.Username,
		Password:   telemetry.Password,
		AssetID:    telemetry.AssetID,
		Keys:       keys.Names(),
		Limit:      telemetry.Limit,
		MaxRetries: telemetry.MaxRetries,
		HTTPClient: &http.Client{Timeout: telemetry.Timeout},
	}
}

type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.url, e.status)
}

func (c *Client) FetchEvents(ctx context.Context, timeRange TimeRange) (trips.Series, error) {
	var series trips.Series

	operation := func() error {
		token, err := c.login(ctx)
		if err != nil {
			return classify(err)
		}

		series, err = c.timeseries(ctx, token, timeRange)
		return classify(err)
	}

	newBackOff := c.NewBackOff
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), c.MaxRetries), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("wait", wait.String()).Msg("Telemetry fetch failed, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", trips.ErrDataUnavailable, err)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no events between %s", trips.ErrDataUnavailable, timeRange)
	}

	log.Debug().Int("keys", len(series)).Str("range", timeRange.String()).Msg("Fetched telemetry")

	return series, nil
}

// classify stops retrying on client errors other than rate limiting.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if statusErr, ok := err.(*statusError); ok {
		if statusErr.status >= 400 && statusErr.status < 500 && statusErr.status != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
	}

	return err
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.Username,
		"password": c.Password,
	})
	if err != nil {
		return "", err
	}

	requestURL := fmt.Sprintf("%s/api/auth/login", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var login struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &login); err != nil {
		return "", err
	}
	if login.Token == "" {
		return "", fmt.Errorf("%s returned no token", requestURL)
	}

	return login.Token, nil
}

func (c *Client) timeseries(ctx context.Context, token string, timeRange TimeRange) (trips.Series, error) {
	query := url.Values{}
	query.Set("keys", strings.Join(c.Keys, ","))
	query.Set("startTs", strconv.FormatInt(timeRange.StartMs, 10))
	query.Set("endTs", strconv.FormatInt(timeRange.EndMs, 10))
	query.Set("agg", "NONE")
	query.Set("order", "ASC")
	query.Set("limit", strconv.Itoa(c.limit()))

	requestURL := fmt.Sprintf("%s/api/plugins/telemetry/ASSET/%s/values/timeseries?%s", c.BaseURL, url.PathEscape(c.AssetID), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var series trips.Series
	if err := c.do(req, &series); err != nil {
		return nil, err
	}

	return series, nil
}

func (c *Client) do(req *http.Request, out any) error {
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &statusError{url: req.URL.Path, status: resp.StatusCode}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) limit() int {
	if c.Limit <= 0 {
		return 100000
	}

	return c.Limit
}
