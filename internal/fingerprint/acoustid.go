package fingerprint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAcoustIDURL = "https://api.acoustid.org/v2/lookup"

	// Metadata groups requested from the lookup service.
	acoustIDMeta = "recordings releasegroups releases compress"

	// Wait before the single retry on a transient status.
	transientRetryWait = 2 * time.Second
)

// AcoustIDClient queries the AcoustID fingerprint database.
type AcoustIDClient struct {
	apiKey     string
	lookupURL  string
	retryWait  time.Duration
	httpClient *http.Client
}

// NewAcoustIDClient creates a client authenticated with the given
// application key.
func NewAcoustIDClient(apiKey string) *AcoustIDClient {
	return &AcoustIDClient{
		apiKey:     apiKey,
		lookupURL:  defaultAcoustIDURL,
		retryWait:  transientRetryWait,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type acoustIDResponse struct {
	Status  string           `json:"status"`
	Results []acoustIDResult `json:"results"`
}

type acoustIDResult struct {
	ID         string              `json:"id"`
	Score      float64             `json:"score"`
	Recordings []acoustIDRecording `json:"recordings"`
}

type acoustIDRecording struct {
	ID string `json:"id"`
}

// BestRecordingID submits the fingerprint and returns the recording id
// of the highest-scoring match. Ties keep their response order. HTTP
// 429 and 503 get exactly one retry after a short fixed wait; any other
// non-success status is a hard failure.
func (c *AcoustIDClient) BestRecordingID(ctx context.Context, fingerprint string, duration int) (string, error) {
	form := url.Values{}
	form.Set("client", c.apiKey)
	form.Set("meta", acoustIDMeta)
	form.Set("fingerprint", fingerprint)
	form.Set("duration", strconv.Itoa(duration))
	form.Set("format", "json")

	body, err := c.postForm(ctx, form)
	if err != nil {
		return "", err
	}

	var resp acoustIDResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal lookup response: %w", err)
	}

	if len(resp.Results) == 0 {
		return "", ErrNoMatch
	}

	sort.SliceStable(resp.Results, func(i, j int) bool {
		return resp.Results[i].Score > resp.Results[j].Score
	})

	top := resp.Results[0]
	if len(top.Recordings) == 0 {
		return "", ErrNoMatch
	}

	return top.Recordings[0].ID, nil
}

func (c *AcoustIDClient) postForm(ctx context.Context, form url.Values) ([]byte, error) {
	body, status, err := c.doPost(ctx, form)
	if err != nil {
		return nil, err
	}

	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
		select {
		case <-time.After(c.retryWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		body, status, err = c.doPost(ctx, form)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("lookup returned status %d", status)
	}

	return body, nil
}

func (c *AcoustIDClient) doPost(ctx context.Context, form url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.lookupURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query lookup service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read lookup response: %w", err)
	}

	return body, resp.StatusCode, nil
}
