package server

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var testLog = logs.GetLoggerFromLevel(slog.LevelDebug)

func TestOriginPolicy(t *testing.T) {
	policy := newOriginPolicy(testLog, []string{"HTTP://LocalHost:8000", "", "not-a-url"})
	wildcard := newOriginPolicy(testLog, []string{"*"})

	cases := []struct {
		name   string
		policy *originPolicy
		origin string
		want   bool
	}{
		{name: "configured origin, case folded", policy: policy, origin: "http://localhost:8000", want: true},
		{name: "other port", policy: policy, origin: "http://localhost:9000", want: false},
		{name: "other scheme", policy: policy, origin: "https://localhost:8000", want: false},
		{name: "missing origin", policy: policy, origin: "", want: false},
		{name: "malformed origin", policy: policy, origin: "::nope", want: false},
		{name: "wildcard", policy: wildcard, origin: "http://anything.example.com", want: true},
		{name: "wildcard without origin", policy: wildcard, origin: "", want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			require.Equal(t, tc.want, tc.policy.check(r))
		})
	}
}
