package strutil

import "strings"

// NormalizeLower trims surrounding whitespace and converts to lower case.
// Use for mode names and other tokens where case is not significant.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ShortenMountPoint abbreviates a mount point for fixed-width panes.
// The root mount renders as "root"; long paths fall back to their last
// path segment, truncated to max.
func ShortenMountPoint(mount string, max int) string {
	if mount == "/" {
		return "root"
	}
	if max <= 0 || len([]rune(mount)) <= max {
		return mount
	}
	segments := strings.Split(mount, "/")
	if last := segments[len(segments)-1]; last != "" {
		return truncate(last, max)
	}
	return truncate(mount, max)
}

// ShortenInterface truncates an interface name to max characters.
func ShortenInterface(name string, max int) string {
	if max <= 0 {
		return name
	}
	return truncate(name, max)
}

// ShortenName truncates a process name to max characters, marking the cut
// with an ellipsis when anything was removed.
func ShortenName(name string, max int) string {
	runes := []rune(name)
	if max <= 0 || len(runes) <= max {
		return name
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max])
}
