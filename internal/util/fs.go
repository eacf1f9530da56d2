// Package util provides shared utility functions used across the codebase.
package util

import (
	"path/filepath"
	"strings"
)

// IsExcluded checks if a path matches any exclude pattern.
// Patterns without wildcards match by substring. Glob patterns support *
// within a path segment and ** across segments, e.g. "**/.git/**" or "*.log".
func IsExcluded(path string, exclude []string) bool {
	normalizedPath := filepath.ToSlash(path)

	for _, pattern := range exclude {
		normalizedPattern := filepath.ToSlash(pattern)

		if !strings.Contains(normalizedPattern, "*") {
			if strings.Contains(normalizedPath, normalizedPattern) {
				return true
			}
			continue
		}

		if matchGlobPattern(normalizedPath, normalizedPattern) {
			return true
		}
	}

	return false
}

func matchGlobPattern(path, pattern string) bool {
	if pattern == path {
		return true
	}

	if strings.Contains(pattern, "**") {
		return matchDoubleStarPattern(path, pattern)
	}

	matched, _ := filepath.Match(pattern, path)
	return matched
}

func matchDoubleStarPattern(path, pattern string) bool {
	prefix := strings.HasPrefix(pattern, "**")
	suffix := strings.HasSuffix(pattern, "**")

	switch {
	case prefix && suffix:
		return strings.Contains(path, pattern[2:len(pattern)-2])
	case prefix:
		rest := pattern[2:]
		return strings.HasSuffix(path, rest) || strings.Contains(path, rest)
	case suffix:
		return strings.HasPrefix(path, pattern[:len(pattern)-2])
	default:
		parts := strings.Split(pattern, "**")
		return len(parts) >= 2 && strings.HasPrefix(path, parts[0]) && strings.HasSuffix(path, parts[len(parts)-1])
	}
}
