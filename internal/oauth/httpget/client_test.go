package httpget

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/discordauth/internal/cache"
	"github.com/dropDatabas3/discordauth/internal/rate"
)

func TestGet_SendsBearerAndHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	c := New(Config{UserAgent: "test-agent"})
	body, err := c.Get(context.Background(), srv.URL+"/users/@me", "tok-123")
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"1"}`, string(body))
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, "test-agent", gotUA)
}

func TestGet_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1.5")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You are being rate limited."}`))
	}))
	defer srv.Close()

	_, err := New(Config{}).Get(context.Background(), srv.URL+"/users/@me/guilds", "tok")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusTooManyRequests, se.Code)
	require.Equal(t, 1500*time.Millisecond, se.RetryAfter)
	require.Contains(t, se.Body, "rate limited")
	require.Contains(t, err.Error(), "status 429")
}

func TestGet_EmptyBodyIsNotNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	body, err := New(Config{}).Get(context.Background(), srv.URL, "tok")
	require.NoError(t, err)
	require.NotNil(t, body)
	require.Empty(t, body)
}

func TestGet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Config{Timeout: time.Second}).Get(context.Background(), url, "tok")
	require.Error(t, err)
}

func TestGet_CachesPerToken(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(r.Header.Get("Authorization")))
	}))
	defer srv.Close()

	c := New(Config{Cache: cache.NewMemory("t", 0), CacheTTL: time.Minute})
	ctx := context.Background()

	b1, err := c.Get(ctx, srv.URL, "a")
	require.NoError(t, err)
	b2, err := c.Get(ctx, srv.URL, "a")
	require.NoError(t, err)
	require.Equal(t, b1, b2)
	require.EqualValues(t, 1, hits.Load())

	b3, err := c.Get(ctx, srv.URL, "b")
	require.NoError(t, err)
	require.Equal(t, "Bearer b", string(b3))
	require.EqualValues(t, 2, hits.Load())
}

func TestGet_CoalescesConcurrentRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Config{})
	var wg sync.WaitGroup
	bodies := make([][]byte, 5)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := c.Get(context.Background(), srv.URL+"/users/@me/guilds", "tok")
			if err == nil {
				bodies[i] = b
			}
		}(i)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, hits.Load())
	for _, b := range bodies {
		require.Equal(t, "[]", string(b))
	}
	// cada caller tiene su propio slice
	bodies[0][0] = 'x'
	require.Equal(t, "[]", string(bodies[1]))
}

type denyLimiter struct{ err error }

func (d denyLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, d.err
}

func TestGet_LimiterError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	boom := errors.New("redis down")
	_, err := New(Config{Limiter: denyLimiter{err: boom}}).Get(context.Background(), srv.URL, "tok")
	require.ErrorIs(t, err, boom)
	require.Zero(t, hits.Load())
}

func TestGet_LimiterPaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// 20/s burst 1: el segundo request espera ~50ms
	c := New(Config{Limiter: rate.NewLocalLimiter(20, 1)})
	start := time.Now()
	_, err := c.Get(context.Background(), srv.URL+"/a", "tok")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), srv.URL+"/b", "tok")
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestHelpers(t *testing.T) {
	k := requestKey("https://discord.com/api/users/@me", "secret-token")
	require.False(t, strings.Contains(k, "secret-token"))
	require.NotEqual(t, k, requestKey("https://discord.com/api/users/@me", "other"))

	require.Equal(t, "/api/users/@me/guilds", endpointLabel("https://discord.com/api/users/@me/guilds?x=1"))
	require.Equal(t, "unknown", endpointLabel("https://discord.com"))

	h := http.Header{}
	require.Zero(t, parseRetryAfter(h))
	h.Set("Retry-After", "2")
	require.Equal(t, 2*time.Second, parseRetryAfter(h))
	h.Set("Retry-After", "soon")
	require.Zero(t, parseRetryAfter(h))

	require.Equal(t, "ab", truncate("abc", 2))
	require.Equal(t, "abc", truncate("abc", 5))
}
