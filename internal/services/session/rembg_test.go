package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRembgServer(t *testing.T, remove http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc(removePath, remove)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRembgSession_Remove(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   RemoveOptions
		expect map[string]string
		absent []string
	}{
		{
			name:   "without matting",
			opts:   MattingOptions(false),
			expect: map[string]string{"model": "u2net", "a": "false"},
			absent: []string{"af", "ab", "ae"},
		},
		{
			name:   "with matting",
			opts:   MattingOptions(true),
			expect: map[string]string{"model": "u2net", "a": "true", "af": "240", "ab": "10", "ae": "10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newRembgServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				require.NoError(t, r.ParseMultipartForm(1<<20))

				for k, v := range tt.expect {
					assert.Equal(t, v, r.FormValue(k), k)
				}
				for _, k := range tt.absent {
					assert.Empty(t, r.FormValue(k), k)
				}

				f, _, err := r.FormFile("file")
				require.NoError(t, err)
				defer f.Close()
				data, err := io.ReadAll(f)
				require.NoError(t, err)
				assert.Equal(t, "input-bytes", string(data))

				w.Header().Set("Content-Type", "image/png")
				_, _ = w.Write([]byte("png-bytes"))
			})

			s, err := NewRembgFactory(server.URL, 5*time.Second, nil, nil)("u2net")
			require.NoError(t, err)
			assert.Equal(t, "u2net", s.Name())

			out, err := s.Remove(context.Background(), []byte("input-bytes"), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "png-bytes", string(out))
		})
	}
}

func TestRembgSession_EngineError(t *testing.T) {
	t.Parallel()

	server := newRembgServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("cannot identify image file"))
	})

	s, err := NewRembgFactory(server.URL, time.Second, nil, nil)("u2net")
	require.NoError(t, err)

	_, err = s.Remove(context.Background(), []byte("garbage"), RemoveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot identify image file")
}

func TestRembgFactory_ConstructionFailures(t *testing.T) {
	t.Parallel()

	server := newRembgServer(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := NewRembgFactory(server.URL, time.Second, nil, nil)("unknown-model")
	assert.ErrorContains(t, err, "unknown model")

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	_, err = NewRembgFactory(deadURL, time.Second, nil, nil)("u2net")
	assert.ErrorContains(t, err, "unavailable")
}

func TestRembgFactory_NotFoundRootIsReachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewRembgFactory(server.URL, time.Second, nil, nil)("u2net")
	assert.NoError(t, err)
}
