package zillow_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ps-vitor/zillow-scraper/backend/internal/scrapers/zillow"
	"github.com/ps-vitor/zillow-scraper/backend/pkg/logger"
)

const pageBody = "<html><body>olá</body></html>"

// newFixtureServer serves:
//
//	/page            200 with pageBody
//	/chain/{n}       redirects n more times (relative Location), then lands on /page
//	/absolute        redirects with an absolute Location to /page
//	/headers         200 echoing selected request headers
//	/status/{code}   replies with code and no Location
//	/loop            redirects to itself forever
func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(pageBody))
	}).Methods(http.MethodGet)

	r.HandleFunc("/chain/{n:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		n, _ := strconv.Atoi(mux.Vars(req)["n"])
		if n == 0 {
			http.Redirect(w, req, "../page", http.StatusFound)
			return
		}
		http.Redirect(w, req, strconv.Itoa(n-1), http.StatusMovedPermanently)
	}).Methods(http.MethodGet)

	r.HandleFunc("/headers", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "ua=%s|lang=%s|cache=%s|x=%s",
			req.Header.Get("User-Agent"),
			req.Header.Get("Accept-Language"),
			req.Header.Get("Cache-Control"),
			req.Header.Get("X-Trace"),
		)
	}).Methods(http.MethodGet)

	r.HandleFunc("/redirect-headers", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/headers", http.StatusTemporaryRedirect)
	}).Methods(http.MethodGet)

	r.HandleFunc("/status/{code:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		code, _ := strconv.Atoi(mux.Vars(req)["code"])
		w.WriteHeader(code)
	}).Methods(http.MethodGet)

	r.HandleFunc("/loop", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/loop", http.StatusFound)
	}).Methods(http.MethodGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	r.HandleFunc("/absolute", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, srv.URL+"/page", http.StatusSeeOther)
	}).Methods(http.MethodGet)

	return srv
}

func newFetcher() *zillow.Fetcher {
	return zillow.NewFetcher(zillow.FetcherConfig{
		Timeout:      5 * time.Second,
		MaxRedirects: zillow.DefaultMaxRedirects,
	}, logger.NewNop())
}

func TestFetch_OK(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)

	body, err := newFetcher().Fetch(context.Background(), srv.URL+"/page", zillow.DefaultFetchOptions())
	require.NoError(t, err)
	assert.Equal(t, pageBody, body)
}

func TestFetch_RedirectBudget(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)

	tests := []struct {
		name         string
		chain        int // redirects before reaching /page is chain+1
		maxRedirects int
		wantErr      bool
	}{
		{name: "no redirects needed budget zero", chain: -1, maxRedirects: 0},
		{name: "one hop budget one", chain: 0, maxRedirects: 1},
		{name: "one hop budget zero", chain: 0, maxRedirects: 0, wantErr: true},
		{name: "five hops budget five", chain: 4, maxRedirects: 5},
		{name: "six hops budget five", chain: 5, maxRedirects: 5, wantErr: true},
		{name: "negative budget", chain: 0, maxRedirects: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			target := srv.URL + "/page"
			if tt.chain >= 0 {
				target = fmt.Sprintf("%s/chain/%d", srv.URL, tt.chain)
			}

			body, err := newFetcher().Fetch(context.Background(), target, zillow.FetchOptions{MaxRedirects: tt.maxRedirects})
			if tt.wantErr {
				require.ErrorIs(t, err, zillow.ErrTooManyRedirects)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, pageBody, body)
		})
	}
}

func TestFetch_AbsoluteRedirect(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)

	body, err := newFetcher().Fetch(context.Background(), srv.URL+"/absolute", zillow.DefaultFetchOptions())
	require.NoError(t, err)
	assert.Equal(t, pageBody, body)
}

func TestFetch_RedirectLoop(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)

	_, err := newFetcher().Fetch(context.Background(), srv.URL+"/loop", zillow.DefaultFetchOptions())
	require.ErrorIs(t, err, zillow.ErrTooManyRedirects)
}

func TestFetch_DefaultHeaders(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)
	want := zillow.DefaultHeaders()

	body, err := newFetcher().Fetch(context.Background(), srv.URL+"/headers", zillow.DefaultFetchOptions())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ua=%s|lang=%s|cache=no-cache|x=", want.Get("User-Agent"), want.Get("Accept-Language")), body)
}

func TestFetch_CallerHeadersWinAndSurviveRedirects(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)
	opts := zillow.FetchOptions{
		MaxRedirects: 1,
		Headers: map[string]string{
			"user-agent": "custom-agent",
			"X-Trace":    "abc",
		},
	}

	body, err := newFetcher().Fetch(context.Background(), srv.URL+"/redirect-headers", opts)
	require.NoError(t, err)
	assert.Equal(t, "ua=custom-agent|lang=en-US,en;q=0.9,es;q=0.8|cache=no-cache|x=abc", body)
}

func TestFetch_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)

	for _, code := range []int{http.StatusNoContent, http.StatusNotModified, http.StatusForbidden, http.StatusInternalServerError} {
		_, err := newFetcher().Fetch(context.Background(), fmt.Sprintf("%s/status/%d", srv.URL, code), zillow.DefaultFetchOptions())
		require.ErrorIs(t, err, zillow.ErrUnexpectedStatus)

		var statusErr *zillow.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, code, statusErr.StatusCode)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = newFetcher().Fetch(context.Background(), "http://"+addr+"/", zillow.DefaultFetchOptions())

	var netErr *zillow.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Error(t, netErr.Unwrap())
}

func TestFetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	f := zillow.NewFetcher(zillow.FetcherConfig{Timeout: 50 * time.Millisecond}, nil)

	_, err := f.Fetch(context.Background(), srv.URL, zillow.DefaultFetchOptions())

	var netErr *zillow.NetworkError
	require.ErrorAs(t, err, &netErr)
}

func TestFetch_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"not a url", "ftp://example.com/file", "https://", "://missing"} {
		_, err := newFetcher().Fetch(context.Background(), target, zillow.DefaultFetchOptions())
		require.ErrorIs(t, err, zillow.ErrInvalidURL, target)
	}
}

func TestFetchPage_UsesConfiguredBudget(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t)
	f := zillow.NewFetcher(zillow.FetcherConfig{MaxRedirects: 0}, nil)

	_, err := f.FetchPage(context.Background(), srv.URL+"/chain/0")
	require.ErrorIs(t, err, zillow.ErrTooManyRedirects)

	body, err := f.FetchPage(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, pageBody, body)
}

func TestDefaultHeaders_FreshCopy(t *testing.T) {
	t.Parallel()

	h := zillow.DefaultHeaders()
	h.Set("User-Agent", "mutated")

	assert.NotEqual(t, "mutated", zillow.DefaultHeaders().Get("User-Agent"))
}

func TestFetch_SpeaksHTTP1OverTLS(t *testing.T) {
	t.Parallel()

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Proto))
	}))
	srv.EnableHTTP2 = true
	srv.StartTLS()
	t.Cleanup(srv.Close)

	f := newFetcher()
	trusted := srv.Client().Transport.(*http.Transport).TLSClientConfig.Clone()
	trusted.NextProtos = nil
	f.HTTPTransport().TLSClientConfig = trusted

	body, err := f.Fetch(context.Background(), srv.URL, zillow.DefaultFetchOptions())
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1", body)
}
