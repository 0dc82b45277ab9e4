package utils

import "testing"

func TestSafeEnv(t *testing.T) {
	const key = "_RESILIENCE_TEST_SAFEENV"
	cases := []struct {
		name, value, want string
	}{
		{"unset", "", "fallback"},
		{"blank", "   ", "fallback"},
		{"value", "sqlite", "sqlite"},
		{"trimmed", " postgres\n", "postgres"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(key, tc.value)
			if got := SafeEnv(key, "fallback"); got != tc.want {
				t.Fatalf("SafeEnv = %q, want %q", got, tc.want)
			}
		})
	}
}
