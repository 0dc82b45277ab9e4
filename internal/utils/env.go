package utils

import (
	"os"
	"strings"
)

// SafeEnv returns the trimmed value of key, or fallback if it is unset or blank.
func SafeEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
