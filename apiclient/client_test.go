package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/jrsteele09/go-storefront/apiclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// recorder captures observed events
type recorder struct {
	mu     sync.Mutex
	events []apiclient.Event
}

func (r *recorder) Observe(_ context.Context, e apiclient.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []apiclient.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apiclient.Event(nil), r.events...)
}

type captured struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

func newAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]captured) {
	t.Helper()
	var mu sync.Mutex
	calls := &[]captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		*calls = append(*calls, captured{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          string(body),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestNew(t *testing.T) {
	t.Run("relative base rejected", func(t *testing.T) {
		_, err := apiclient.New("/api/v1/")
		require.Error(t, err)
	})

	t.Run("trailing slash added", func(t *testing.T) {
		c, err := apiclient.New("http://127.0.0.1:8000/api/v1")
		require.NoError(t, err)
		require.Equal(t, "http://127.0.0.1:8000/api/v1/", c.BaseURL().String())
	})
}

func TestClient_Resolve(t *testing.T) {
	c, err := apiclient.New("http://host/api/v1/")
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "products?page=2", "http://host/api/v1/products?page=2"},
		{"leading slash keeps prefix", "/users/token/", "http://host/api/v1/users/token/"},
		{"absolute under base", "http://host/api/v1/products?page=3", "http://host/api/v1/products?page=3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := c.Resolve(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.want, u.String())
		})
	}

	t.Run("foreign origin refused", func(t *testing.T) {
		_, err := c.Resolve("http://evil.example/api/v1/products")
		require.ErrorIs(t, err, apiclient.ErrForeignTarget)
	})

	t.Run("outside prefix refused", func(t *testing.T) {
		_, err := c.Resolve("http://host/admin/")
		require.ErrorIs(t, err, apiclient.ErrForeignTarget)
	})
}

func TestClient_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("bearer attached and body decoded", func(t *testing.T) {
		srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "a1", "refresh": "r1"})
		})
		c, err := apiclient.New(srv.URL + "/api/v1/")
		require.NoError(t, err)

		var out struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		}
		err = c.WithCredentials(apiclient.StaticToken("tok")).
			Post(ctx, "/users/token/", map[string]string{"username": "jane"}, &out)
		require.NoError(t, err)
		require.Equal(t, "a1", out.Access)

		require.Len(t, *calls, 1)
		call := (*calls)[0]
		require.Equal(t, http.MethodPost, call.Method)
		require.Equal(t, "/api/v1/users/token/", call.Path)
		require.Equal(t, "Bearer tok", call.Authorization)
		require.Equal(t, "application/json", call.ContentType)
		require.JSONEq(t, `{"username":"jane"}`, call.Body)
	})

	t.Run("no header without token", func(t *testing.T) {
		srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		base, err := apiclient.New(srv.URL + "/api/v1/")
		require.NoError(t, err)

		require.NoError(t, base.Get(ctx, "products", nil))
		require.NoError(t, base.WithCredentials(apiclient.StaticToken("")).Get(ctx, "products", nil))
		for _, call := range *calls {
			require.Empty(t, call.Authorization)
		}
	})

	t.Run("credential source read per request", func(t *testing.T) {
		srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {})
		c, err := apiclient.New(srv.URL + "/api/v1/")
		require.NoError(t, err)

		var token tokenBox
		authed := c.WithCredentials(&token)
		token.set("first")
		require.NoError(t, authed.Get(ctx, "products", nil))
		token.set("")
		require.NoError(t, authed.Get(ctx, "products", nil))

		require.Equal(t, "Bearer first", (*calls)[0].Authorization)
		require.Empty(t, (*calls)[1].Authorization)
	})

	t.Run("context credentials used when client has none", func(t *testing.T) {
		srv, calls := newAPI(t, func(w http.ResponseWriter, r *http.Request) {})
		c, err := apiclient.New(srv.URL + "/api/v1/")
		require.NoError(t, err)

		reqCtx := apiclient.ContextWithCredentials(ctx, apiclient.StaticToken("from-ctx"))
		require.NoError(t, c.Get(reqCtx, "products", nil))
		require.NoError(t, c.WithCredentials(apiclient.StaticToken("own")).Get(reqCtx, "products", nil))

		require.Equal(t, "Bearer from-ctx", (*calls)[0].Authorization)
		require.Equal(t, "Bearer own", (*calls)[1].Authorization)
	})

	t.Run("status mapping", func(t *testing.T) {
		tests := []struct {
			status   int
			kind     apiclient.Kind
			sentinel error
		}{
			{http.StatusUnauthorized, apiclient.KindAuthentication, apiclient.ErrUnauthenticated},
			{http.StatusForbidden, apiclient.KindAuthorization, apiclient.ErrForbidden},
			{http.StatusNotFound, apiclient.KindNotFound, apiclient.ErrNotFound},
			{http.StatusBadGateway, apiclient.KindServer, apiclient.ErrServer},
			{http.StatusBadRequest, apiclient.KindClient, apiclient.ErrRequest},
		}
		for _, tc := range tests {
			t.Run(http.StatusText(tc.status), func(t *testing.T) {
				srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					_, _ = w.Write([]byte(`{"detail":"nope"}`))
				})
				c, err := apiclient.New(srv.URL + "/api/v1/")
				require.NoError(t, err)

				err = c.Get(ctx, "products", &struct{}{})
				require.ErrorIs(t, err, tc.sentinel)

				var apiErr *apiclient.Error
				require.True(t, errors.As(err, &apiErr))
				require.Equal(t, tc.kind, apiErr.Kind)
				require.Equal(t, tc.status, apiErr.StatusCode)
				require.JSONEq(t, `{"detail":"nope"}`, string(apiErr.Body))
				require.Equal(t, tc.status, apiclient.StatusCode(err))
			})
		}
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := apiclient.New(url + "/api/v1/")
		require.NoError(t, err)
		err = c.Get(ctx, "products", nil)
		require.ErrorIs(t, err, apiclient.ErrNetwork)
		require.Zero(t, apiclient.StatusCode(err))
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})
		c, err := apiclient.New(srv.URL + "/api/v1/")
		require.NoError(t, err)

		var out map[string]any
		require.ErrorIs(t, c.Get(ctx, "products", &out), apiclient.ErrDecode)
	})

	t.Run("oversized body", func(t *testing.T) {
		srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"name":"` + strings.Repeat("x", 2048) + `"}`))
		})
		c, err := apiclient.New(srv.URL+"/api/v1/", apiclient.WithMaxResponseSize(datasize.KB))
		require.NoError(t, err)

		var out map[string]any
		require.ErrorIs(t, c.Get(ctx, "products", &out), apiclient.ErrDecode)
	})
}

func TestClient_Observers(t *testing.T) {
	ctx := context.Background()
	srv, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	rec := &recorder{}
	reg := prometheus.NewRegistry()
	metrics := apiclient.NewMetrics(reg)
	c, err := apiclient.New(srv.URL+"/api/v1/", apiclient.WithObserver(rec, metrics, apiclient.LogObserver{}))
	require.NoError(t, err)

	require.NoError(t, c.Get(ctx, "products", nil))
	require.Error(t, c.Get(ctx, "missing", nil))
	require.Error(t, c.Get(ctx, "http://elsewhere/", nil))

	events := rec.all()
	require.Len(t, events, 3)
	require.Equal(t, http.StatusOK, events[0].StatusCode)
	require.NoError(t, events[0].Err)
	require.Equal(t, http.StatusNotFound, events[1].StatusCode)
	require.ErrorIs(t, events[1].Err, apiclient.ErrNotFound)
	require.Equal(t, "missing", events[1].Path)
	require.ErrorIs(t, events[2].Err, apiclient.ErrForeignTarget)

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "2xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "4xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "error")))

	t.Run("credentials copy keeps observers", func(t *testing.T) {
		require.NoError(t, c.WithCredentials(apiclient.StaticToken("x")).Get(ctx, "products", nil))
		require.Len(t, rec.all(), 4)
	})
}

type tokenBox struct {
	mu    sync.Mutex
	value string
}

func (b *tokenBox) set(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = v
}

func (b *tokenBox) AccessToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}
