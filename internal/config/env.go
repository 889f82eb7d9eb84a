package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader looks up typed settings and remembers every malformed value so
// Load can report them together.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func (r *envReader) unset(key string) bool {
	_, ok := r.lookup(key)
	return !ok
}

func (r *envReader) str(key, fallback string) string {
	if value, ok := r.lookup(key); ok {
		return value
	}
	return fallback
}

func (r *envReader) int(key string, fallback int) int {
	return parse(r, key, fallback, strconv.Atoi)
}

func (r *envReader) bool(key string, fallback bool) bool {
	return parse(r, key, fallback, strconv.ParseBool)
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	return parse(r, key, fallback, time.ParseDuration)
}

// list splits a comma separated value, dropping blank entries.
func (r *envReader) list(key string, fallback []string) []string {
	value, ok := r.lookup(key)
	if !ok {
		return fallback
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

func parse[T any](r *envReader, key string, fallback T, fn func(string) (T, error)) T {
	value, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := fn(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
		return fallback
	}
	return parsed
}
