package learning

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/prediction"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

var (
	// ErrModelNotFound is returned when no active model exists for a type.
	ErrModelNotFound = crerr.New("learning: no active model")
	errTransient     = crerr.New("learning service transient failure")
)

// Client calls the model-serving service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  logger.Named("learning"),
	}
}

type activeModelResponse struct {
	ModelType string `json:"model_type"`
	Version   string `json:"version"`
}

type predictRequest struct {
	ModelVersion  string    `json:"model_version"`
	MatchID       string    `json:"match_id"`
	CompetitionID string    `json:"competition_id"`
	Season        string    `json:"season,omitempty"`
	HomeTeamID    string    `json:"home_team_id"`
	AwayTeamID    string    `json:"away_team_id"`
	KickoffAt     time.Time `json:"kickoff_at"`
}

type predictResponse struct {
	ExpectedHomeGoals float64 `json:"expected_home_goals"`
	ExpectedAwayGoals float64 `json:"expected_away_goals"`
}

func (c *Client) ActiveModelVersion(ctx context.Context, modelType string) (string, error) {
	modelType = strings.TrimSpace(modelType)
	if modelType == "" {
		return "", crerr.New("model type is required")
	}

	var resp activeModelResponse
	if err := c.do(ctx, http.MethodGet, "/v1/models/"+url.PathEscape(modelType)+"/active", nil, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Version) == "" {
		return "", crerr.Wrapf(ErrModelNotFound, "empty version for model type=%s", modelType)
	}
	return resp.Version, nil
}

func (c *Client) PredictScores(ctx context.Context, m match.Match, modelVersion string) (prediction.ExpectedScore, error) {
	body := predictRequest{
		ModelVersion:  modelVersion,
		MatchID:       m.ID,
		CompetitionID: m.CompetitionID,
		Season:        m.Season,
		HomeTeamID:    m.HomeTeamID,
		AwayTeamID:    m.AwayTeamID,
		KickoffAt:     m.KickoffAt.UTC(),
	}

	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, "/v1/predictions", body, &resp); err != nil {
		return prediction.ExpectedScore{}, err
	}
	if resp.ExpectedHomeGoals < 0 || resp.ExpectedAwayGoals < 0 {
		return prediction.ExpectedScore{}, crerr.Newf("negative expectation home=%.3f away=%.3f", resp.ExpectedHomeGoals, resp.ExpectedAwayGoals)
	}

	return prediction.ExpectedScore{Home: resp.ExpectedHomeGoals, Away: resp.ExpectedAwayGoals}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return crerr.Mark(crerr.New("learning service base url is not configured"), errTransient)
	}

	var reader io.Reader
	if in != nil {
		encoded, err := sonic.Marshal(in)
		if err != nil {
			return crerr.Wrap(err, "marshal learning request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return crerr.Wrap(err, "create learning request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "call learning service path=%s", path), errTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "read learning response"), errTransient)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return crerr.Wrapf(ErrModelNotFound, "learning service path=%s not found", path)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "learning service error", "path", path, "status_code", resp.StatusCode)
		return crerr.Mark(crerr.Newf("learning service status=%d", resp.StatusCode), errTransient)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return crerr.Newf("learning service status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := sonic.Unmarshal(raw, out); err != nil {
		return crerr.Wrap(err, "decode learning response")
	}
	return nil
}

// IsTransient reports whether err came from the network or a 5xx.
func IsTransient(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}
