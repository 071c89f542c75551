package keys

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestClient_Key(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr func(t *testing.T, err error)
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"apiKey":"test-key"}`,
			want:   "test-key",
		},
		{
			name:   "empty key",
			status: http.StatusOK,
			body:   `{"apiKey":""}`,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyKey)
			},
		},
		{
			name:   "missing key",
			status: http.StatusOK,
			body:   `{}`,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyKey)
			},
		},
		{
			name:   "null key",
			status: http.StatusOK,
			body:   `{"apiKey":null}`,
			wantErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrEmptyKey)
			},
		},
		{
			name:   "bad status",
			status: http.StatusServiceUnavailable,
			body:   `{"error":"no key"}`,
			wantErr: func(t *testing.T, err error) {
				var serr *StatusError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, http.StatusServiceUnavailable, serr.StatusCode)
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `apiKey`,
			wantErr: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/key" {
					t.Errorf("unexpected request to %s", r.URL)
					w.WriteHeader(http.StatusNotFound)
					return
				}
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, err := w.Write([]byte(tt.body))
				require.NoError(t, err)
			}))
			defer ts.Close()

			key, err := NewClient(slog.Default(), ts.Client(), ts.URL+"/").Key(context.Background())
			if tt.wantErr != nil {
				require.Error(t, err)
				tt.wantErr(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestStatic_Key(t *testing.T) {
	key, err := Static("k").Key(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k", key)

	_, err = Static("").Key(context.Background())
	assert.ErrorIs(t, err, ErrEmptyKey)
}
