// Package gateway provides a gateway to the GitHub traffic API,
// abstracting away the underlying REST client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/github-traffic/internal/domain"
)

// DefaultBaseURL is the root of the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com/"

// ErrEmptyResponse is returned when a traffic endpoint answers with no JSON payload.
var ErrEmptyResponse = errors.New("empty traffic response")

// tokenType is sent as the scheme of the Authorization header ("token <token>").
const tokenType = "token"

// Fetcher defines the behavior of a gateway for fetching traffic from GitHub.
type Fetcher interface {
	FetchViews(ctx context.Context, repo string) (domain.TrafficCount, error)
	FetchClones(ctx context.Context, repo string) (domain.TrafficCount, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     *log.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// An empty baseURL selects DefaultBaseURL.
func NewGitHubGateway(token, baseURL string, logger *log.Logger) (Fetcher, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: tokenType})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: ts},
	}
	restClient := github.NewClient(httpClient)
	if baseURL != "" && baseURL != DefaultBaseURL {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse API base URL %q: %w", baseURL, err)
		}
		restClient.BaseURL = u
	}
	return &GitHubGateway{
		restClient: restClient,
		logger:     logger,
	}, nil
}

// FetchViews returns the view totals of repo ("owner/name").
func (g *GitHubGateway) FetchViews(ctx context.Context, repo string) (domain.TrafficCount, error) {
	g.logger.Debug("Fetching view traffic", "repo", repo)
	var views github.TrafficViews
	if err := g.fetchTraffic(ctx, repo, "views", &views); err != nil {
		return domain.TrafficCount{}, fmt.Errorf("failed to fetch view traffic for %s: %w", repo, err)
	}
	count := domain.TrafficCount{Count: views.GetCount(), Uniques: views.GetUniques()}
	g.logger.Debug("Fetched view traffic", "count", count.Count, "uniques", count.Uniques)
	return count, nil
}

// FetchClones returns the clone totals of repo ("owner/name").
func (g *GitHubGateway) FetchClones(ctx context.Context, repo string) (domain.TrafficCount, error) {
	g.logger.Debug("Fetching clone traffic", "repo", repo)
	var clones github.TrafficClones
	if err := g.fetchTraffic(ctx, repo, "clones", &clones); err != nil {
		return domain.TrafficCount{}, fmt.Errorf("failed to fetch clone traffic for %s: %w", repo, err)
	}
	count := domain.TrafficCount{Count: clones.GetCount(), Uniques: clones.GetUniques()}
	g.logger.Debug("Fetched clone traffic", "count", count.Count, "uniques", count.Uniques)
	return count, nil
}

// fetchTraffic GETs repos/{repo}/traffic/{kind} and decodes the body into v.
// An empty or null body is an error rather than a zero-valued result.
func (g *GitHubGateway) fetchTraffic(ctx context.Context, repo, kind string, v any) error {
	owner, name := splitRepo(repo)
	req, err := g.restClient.NewRequest(http.MethodGet, fmt.Sprintf("repos/%v/%v/traffic/%v", owner, name, kind), nil)
	if err != nil {
		return err
	}
	var raw json.RawMessage
	if _, err := g.restClient.Do(ctx, req, &raw); err != nil {
		return err
	}
	if body := bytes.TrimSpace(raw); len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s traffic: %w", kind, err)
	}
	return nil
}

// splitRepo splits at the first slash. Malformed identifiers are passed
// through and left for the API to reject.
func splitRepo(repo string) (owner, name string) {
	owner, name, _ = strings.Cut(repo, "/")
	return owner, name
}
