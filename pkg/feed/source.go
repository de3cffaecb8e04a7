package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dutycal/dutycal/internal/config"
	"github.com/dutycal/dutycal/pkg/schedule"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
)

// Source fetches the complete schedule feed.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]schedule.DayRecord, error)
}

type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Name() string {
	return "file:" + s.path
}

func (s *FileSource) Fetch(ctx context.Context) ([]schedule.DayRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource builds a source for cfg.URL. When client credentials are
// configured the requests carry an OAuth2 bearer token.
func NewHTTPSource(cfg config.Feed) *HTTPSource {
	client := &http.Client{}
	if cfg.OAuth.ClientId != "" {
		credentials := clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientId,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}
		client = credentials.Client(context.Background())
	}
	client.Timeout = cfg.Timeout
	return &HTTPSource{url: cfg.URL, client: client}
}

func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]schedule.DayRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Debugf("feed response body: %s", body)
		return nil, fmt.Errorf("feed request failed with status %d", resp.StatusCode)
	}
	return Decode(resp.Body)
}
