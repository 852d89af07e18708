package artifactory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = authn.Basic{Username: "ci-bot", Password: "s3cret"}

// newTestServer serves fixed bodies per path and records basic-auth usage.
func newTestServer(t *testing.T, routes map[string]struct {
	status int
	body   string
}) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != testCreds.Username || pass != testCreds.Password {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		route, found := routes[r.URL.Path]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(route.status)
		_, _ = w.Write([]byte(route.body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		creds   authn.Basic
		wantErr bool
		wantURL string
	}{
		{"trailing slash trimmed", "https://art.example.com/artifactory/", testCreds, false, "https://art.example.com/artifactory"},
		{"plain", "https://art.example.com", testCreds, false, "https://art.example.com"},
		{"not a url", "art.example.com", testCreds, true, ""},
		{"empty url", "", testCreds, true, ""},
		{"missing password", "https://art.example.com", authn.Basic{Username: "u"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.baseURL, tt.creds)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, c.BaseURL())
			assert.NotNil(t, c.Repositories)
			assert.NotNil(t, c.Tags)
		})
	}
}

func TestWithTimeout(t *testing.T) {
	c, err := NewClient("https://art.example.com", testCreds, WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
}

func TestWithTimeoutLeavesCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c, err := NewClient("https://art.example.com", testCreds,
		WithHTTPClient(shared),
		WithTimeout(5*time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.NotSame(t, shared, c.httpClient)

	// a second client built from the same http.Client keeps its own timeout
	other, err := NewClient("https://art.example.com", testCreds,
		WithHTTPClient(shared),
		WithTimeout(time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, time.Second, other.httpClient.Timeout)
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c, err := NewClient("https://art.example.com", testCreds, WithHTTPClient(hc))
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)

	// nil keeps the default
	c, err = NewClient("https://art.example.com", testCreds, WithHTTPClient(nil))
	require.NoError(t, err)
	assert.NotNil(t, c.httpClient)
}

func TestListRepositories(t *testing.T) {
	ts := newTestServer(t, map[string]struct {
		status int
		body   string
	}{
		"/api/docker/docker-local/v2/_catalog": {http.StatusOK, `{"repositories":["alpine","team/app"]}`},
		"/api/docker/empty/v2/_catalog":        {http.StatusOK, `{}`},
		"/api/docker/garbled/v2/_catalog":      {http.StatusOK, `not json`},
		"/api/docker/forbidden/v2/_catalog":    {http.StatusForbidden, `{"errors":[{"status":403}]}`},
	})

	c, err := NewClient(ts.URL+"/", testCreds, WithHTTPClient(ts.Client()), WithTimeout(5*time.Second))
	require.NoError(t, err)
	ctx := context.Background()

	repos, err := c.Repositories.ListRepositories(ctx, "docker-local")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpine", "team/app"}, repos)

	repos, err = c.Repositories.ListRepositories(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, repos)
	assert.Empty(t, repos)

	_, err = c.Repositories.ListRepositories(ctx, "garbled")
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))

	_, err = c.Repositories.ListRepositories(ctx, "forbidden")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}

func TestListTags(t *testing.T) {
	ts := newTestServer(t, map[string]struct {
		status int
		body   string
	}{
		"/api/docker/docker-local/v2/team/app/tags/list": {http.StatusOK, `{"name":"team/app","tags":["1.0","latest"]}`},
		"/api/docker/docker-local/v2/notags/tags/list":   {http.StatusOK, `{"name":"notags"}`},
	})

	c, err := NewClient(ts.URL, testCreds, WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	ctx := context.Background()

	tags, err := c.Tags.ListTags(ctx, "docker-local", "team/app")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0", "latest"}, tags)

	tags, err = c.Tags.ListTags(ctx, "docker-local", "notags")
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = c.Tags.ListTags(ctx, "docker-local", "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestDoRequestWrongCredentials(t *testing.T) {
	ts := newTestServer(t, nil)

	c, err := NewClient(ts.URL, authn.Basic{Username: "ci-bot", Password: "wrong"})
	require.NoError(t, err)

	_, err = c.DoRequest(context.Background(), http.MethodGet, "/api/docker/docker-local/v2/_catalog")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "401")
}

func TestDockerV2Path(t *testing.T) {
	assert.Equal(t, "/api/docker/docker-local/v2/_catalog", dockerV2Path("docker-local", "_catalog"))
	assert.Equal(t, "/api/docker/docker-local/v2/a/b/tags/list", dockerV2Path("/docker-local/", "a/b/tags/list"))
}
