package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func TestExtractIDFromParams(t *testing.T) {
	testCases := []struct {
		name string
		id   string
		want string
	}{
		{name: "Basic ID", id: "123", want: "123"},
		{name: "ID with JSON extension", id: "456.json", want: "456"},
		{name: "ID with multiple dots", id: "789.data.json", want: "789.data"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()

			var result string
			router.HandlerFunc(http.MethodGet, "/stops/:id", func(w http.ResponseWriter, r *http.Request) {
				result = ExtractIDFromParams(r, "id")
			})

			req := httptest.NewRequest(http.MethodGet, "/stops/"+tc.id, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tc.want, result)
		})
	}
}

func TestClientIP(t *testing.T) {
	testCases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote address", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "remote without port", remote: "10.0.0.2", want: "10.0.0.2"},
		{
			name:    "forwarded for",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			remote:  "10.0.0.1:5555",
			want:    "203.0.113.9",
		},
		{
			name:    "real ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			remote:  "10.0.0.1:5555",
			want:    "198.51.100.4",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(req))
		})
	}
}
