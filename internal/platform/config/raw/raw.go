// Package raw reads environment variables without touching the logger.
// The logger itself is configured through it, so it must stay dependency free
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf is a namespaced env reader (e.g. "LOG_", "LOG_FILE_")
type Conf struct{ prefix string }

// New returns a root Conf
func New() Conf { return Conf{} }

// Prefix returns a child Conf with p appended to the prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) get(key string) string { return strings.TrimSpace(os.Getenv(c.prefix + key)) }

// Get returns the trimmed value or def when unset or blank
func (c Conf) Get(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// GetBool accepts 1, true and yes as truthy; anything else set is false
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(c.get(key))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt returns a non-negative integer or def
func (c Conf) GetInt(key string, def int) int {
	n, err := strconv.Atoi(c.get(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}
