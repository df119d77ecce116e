package handler

import "strings"

// DefaultAPIBasePath is used when no base path is configured.
const DefaultAPIBasePath = "/api/v1"

func normalizeAPIBasePath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if trimmed != "/" {
		trimmed = strings.TrimRight(trimmed, "/")
	}
	return trimmed
}
