package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetry(t *testing.T) {
	t.Run("retries 503 then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.Header.Get("Authorization"))
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c := New(time.Second, WithHeader("Authorization", "secret"), WithRetry(4, time.Millisecond))
		ctx := context.Background()
		resp, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
			return c.NewRequest(ctx, http.MethodGet, srv.URL, nil)
		})
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry 400", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "bad input", http.StatusBadRequest)
		}))
		defer srv.Close()

		c := New(time.Second, WithRetry(4, time.Millisecond))
		ctx := context.Background()
		_, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
			return c.NewRequest(ctx, http.MethodGet, srv.URL, nil)
		})

		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusBadRequest, se.Code)
		assert.Equal(t, "bad input", se.Body)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("single attempt by default", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(time.Second)
		ctx := context.Background()
		_, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
			return c.NewRequest(ctx, http.MethodGet, srv.URL, nil)
		})
		assert.Error(t, err)
		assert.True(t, Retryable(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := New(time.Second, WithRetry(3, time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.DoWithRetry(ctx, func() (*http.Request, error) {
			return c.NewRequest(ctx, http.MethodGet, "http://127.0.0.1:0", nil)
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
