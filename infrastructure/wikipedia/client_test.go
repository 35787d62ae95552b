package wikipedia_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wikigraph-backend/infrastructure/config"
	"wikigraph-backend/infrastructure/wikipedia"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/page/summary/", func(w http.ResponseWriter, r *http.Request) {
		title := strings.TrimPrefix(r.URL.Path, "/page/summary/")
		if title == "Missing_Page" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{
			"title": "Albert Einstein",
			"extract": "German-born theoretical physicist",
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Albert_Einstein"}}
		}`)
	})

	mux.HandleFunc("/page/html/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>article body</body></html>")
	})

	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "links", r.URL.Query().Get("prop"))
		assert.Equal(t, "0", r.URL.Query().Get("plnamespace"))
		fmt.Fprint(w, `{
			"query": {"pages": {"736": {"links": [
				{"title": "Physics"},
				{"title": "Theory of relativity"}
			]}}}
		}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, server *httptest.Server) *wikipedia.Client {
	t.Helper()
	cfg := &config.Config{
		WikipediaRESTBaseURL:   server.URL,
		WikipediaActionBaseURL: server.URL + "/w/api.php",
		UserAgent:              "wikigraph-backend-test/1.0",
		ResolveTimeout:         5 * time.Second,
		ResolveRatePerSecond:   100,
		ResolveBurst:           10,
	}
	return wikipedia.NewClient(cfg, zap.NewNop())
}

func TestClient_Resolve(t *testing.T) {
	client := newTestClient(t, newTestServer(t))

	article, err := client.Resolve(context.Background(), "albert_einstein")
	require.NoError(t, err)

	assert.Equal(t, "Albert Einstein", article.CanonicalTitle)
	assert.Equal(t, "German-born theoretical physicist", article.Content)
	assert.Contains(t, article.FullDocument, "article body")
	assert.Equal(t, "https://en.wikipedia.org/wiki/Albert_Einstein", article.SourceURL)
	assert.ElementsMatch(t, []string{"Physics", "Theory of relativity"}, article.LinkTitles())
}

func TestClient_Resolve_MissingPage(t *testing.T) {
	client := newTestClient(t, newTestServer(t))

	_, err := client.Resolve(context.Background(), "Missing Page")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestClient_Resolve_EmptyQuery(t *testing.T) {
	client := newTestClient(t, newTestServer(t))

	_, err := client.Resolve(context.Background(), "   ")

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestClient_Resolve_ServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server)

	_, err := client.Resolve(context.Background(), "Anything")

	assert.True(t, pkgerrors.IsSourceUnavailable(err))
}
