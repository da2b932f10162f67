package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-traffic/internal/domain"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (Fetcher, *httptest.Server) {
	server := httptest.NewServer(handler)
	logger := log.New(io.Discard)

	gateway, err := NewGitHubGateway("secret-token", server.URL, logger)
	require.NoError(t, err)

	return gateway, server
}

func TestGitHubGateway_Fetch(t *testing.T) {
	testCases := []struct {
		name           string
		methodToTest   func(gateway Fetcher) (domain.TrafficCount, error)
		expectedPath   string
		status         int
		responseBody   string
		expectedCount  domain.TrafficCount
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "FetchViews - happy path",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchViews(context.Background(), "octo/hello")
			},
			expectedPath:  "/repos/octo/hello/traffic/views",
			status:        http.StatusOK,
			responseBody:  `{"count": 42, "uniques": 10, "views": [{"timestamp": "2024-01-14T00:00:00Z", "count": 42, "uniques": 10}]}`,
			expectedCount: domain.TrafficCount{Count: 42, Uniques: 10},
		},
		{
			name: "FetchClones - missing uniques defaults to zero",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchClones(context.Background(), "octo/hello")
			},
			expectedPath:  "/repos/octo/hello/traffic/clones",
			status:        http.StatusOK,
			responseBody:  `{"count": 3}`,
			expectedCount: domain.TrafficCount{Count: 3, Uniques: 0},
		},
		{
			name: "FetchViews - empty object defaults to zero",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchViews(context.Background(), "octo/hello")
			},
			expectedPath:  "/repos/octo/hello/traffic/views",
			status:        http.StatusOK,
			responseBody:  `{}`,
			expectedCount: domain.TrafficCount{},
		},
		{
			name: "FetchViews - unauthorized",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchViews(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/views",
			status:         http.StatusUnauthorized,
			responseBody:   `{"message": "Bad credentials"}`,
			expectError:    true,
			expectedErrMsg: "failed to fetch view traffic for octo/hello",
		},
		{
			name: "FetchClones - server error",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchClones(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/clones",
			status:         http.StatusInternalServerError,
			responseBody:   `{"message": "Internal Server Error"}`,
			expectError:    true,
			expectedErrMsg: "failed to fetch clone traffic for octo/hello",
		},
		{
			name: "FetchViews - malformed JSON",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchViews(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/views",
			status:         http.StatusOK,
			responseBody:   `{"count": "many"`,
			expectError:    true,
			expectedErrMsg: "failed to fetch view traffic",
		},
		{
			name: "FetchViews - empty body",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchViews(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/views",
			status:         http.StatusOK,
			responseBody:   ``,
			expectError:    true,
			expectedErrMsg: "failed to fetch view traffic for octo/hello: empty traffic response",
		},
		{
			name: "FetchClones - null body",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchClones(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/clones",
			status:         http.StatusOK,
			responseBody:   `null`,
			expectError:    true,
			expectedErrMsg: "failed to fetch clone traffic for octo/hello: empty traffic response",
		},
		{
			name: "FetchClones - array body",
			methodToTest: func(gateway Fetcher) (domain.TrafficCount, error) {
				return gateway.FetchClones(context.Background(), "octo/hello")
			},
			expectedPath:   "/repos/octo/hello/traffic/clones",
			status:         http.StatusOK,
			responseBody:   `[1, 2]`,
			expectError:    true,
			expectedErrMsg: "failed to decode clones traffic",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, tc.expectedPath, r.URL.Path)
				assert.Equal(t, "token secret-token", r.Header.Get("Authorization"))
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.responseBody)
			}
			gateway, server := setupTestGateway(t, http.HandlerFunc(handler))
			defer server.Close()

			count, err := tc.methodToTest(gateway)

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				assert.Equal(t, domain.TrafficCount{}, count)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectedCount, count)
			}
		})
	}
}

func TestGitHubGateway_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	gateway, err := NewGitHubGateway("secret-token", url, log.New(io.Discard))
	require.NoError(t, err)

	_, err = gateway.FetchViews(context.Background(), "octo/hello")
	assert.ErrorContains(t, err, "failed to fetch view traffic")
}

func TestNewGitHubGateway_BaseURL(t *testing.T) {
	logger := log.New(io.Discard)

	g, err := NewGitHubGateway("t", "", logger)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, g.(*GitHubGateway).restClient.BaseURL.String())

	g, err = NewGitHubGateway("t", "https://ghe.example.com/api/v3", logger)
	require.NoError(t, err)
	assert.Equal(t, "https://ghe.example.com/api/v3/", g.(*GitHubGateway).restClient.BaseURL.String())

	_, err = NewGitHubGateway("t", "://bad", logger)
	assert.ErrorContains(t, err, "failed to parse API base URL")
}

func TestSplitRepo(t *testing.T) {
	owner, name := splitRepo("octo/hello")
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "hello", name)

	owner, name = splitRepo("noslash")
	assert.Equal(t, "noslash", owner)
	assert.Empty(t, name)
}
