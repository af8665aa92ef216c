package util

import (
	"strconv"
	"strings"
)

// ParseIntDefault returns def when s is empty or not an integer.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeEmail trims and lowercases an address so stores compare it exactly.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
