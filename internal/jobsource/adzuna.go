package jobsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/vslobodin/jobscout/internal/profile"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
	httpTimeout    = 15 * time.Second
)

// AdzunaSource fetches postings from the Adzuna public API.
type AdzunaSource struct {
	appID   string
	appKey  string
	country string
	logger  *zap.Logger

	HTTPClient *http.Client
	BaseURL    string
}

// adzunaCriteria are the criteria keys this provider understands.
type adzunaCriteria struct {
	What  string `mapstructure:"what"`
	Where string `mapstructure:"where"`
	Pages int    `mapstructure:"pages"`
}

func NewAdzuna(appID, appKey, country string, logger *zap.Logger) *AdzunaSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdzunaSource{
		appID:   appID,
		appKey:  appKey,
		country: country,
		logger:  logger,
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
		},
		BaseURL: adzunaBaseURL,
	}
}

func (s *AdzunaSource) Name() string { return "adzuna" }

// Search fetches postings page by page until an empty page or the page cap.
func (s *AdzunaSource) Search(ctx context.Context, criteria Criteria) ([]*profile.RawPosting, error) {
	var params adzunaCriteria
	if err := mapstructure.Decode(map[string]any(criteria), &params); err != nil {
		return nil, fmt.Errorf("decode search criteria: %w", err)
	}

	maxPages := params.Pages
	if maxPages <= 0 || maxPages > adzunaMaxPages {
		maxPages = adzunaMaxPages
	}

	var postings []*profile.RawPosting
	for page := 1; page <= maxPages; page++ {
		batch, err := s.fetchPage(ctx, params, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(batch) == 0 {
			break
		}
		postings = append(postings, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}

	s.logger.Debug("adzuna search completed",
		zap.String("what", params.What),
		zap.String("where", params.Where),
		zap.Int("count", len(postings)),
	)

	return postings, nil
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

type adzunaResult struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	RedirectURL string `json:"redirect_url"`
}

func (s *AdzunaSource) fetchPage(ctx context.Context, params adzunaCriteria, page int) ([]*profile.RawPosting, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", s.BaseURL, s.country, page)

	q := url.Values{}
	q.Set("app_id", s.appID)
	q.Set("app_key", s.appKey)
	q.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	q.Set("what", params.What)
	q.Set("where", params.Where)
	q.Set("content-type", "application/json")
	q.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("make request", zap.String("url", req.URL.Redacted()))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("adzuna returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	postings := make([]*profile.RawPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, &profile.RawPosting{
			ID:          r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			URL:         r.RedirectURL,
			Description: r.Description,
		})
	}

	return postings, nil
}
