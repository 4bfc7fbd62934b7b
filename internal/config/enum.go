package config

import (
	"fmt"
	"sort"
	"strings"
)

// enum maps case-insensitive user input onto a typed value.
type enum[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
}

func newEnum[T comparable](name string, fallback T, values map[string]T) enum[T] {
	return enum[T]{name: name, values: values, fallback: fallback}
}

// normalize returns the matching value or the fallback for unknown input.
func (e enum[T]) normalize(raw string) T {
	if v, ok := e.values[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return e.fallback
}

// parse is like normalize but reports unknown non-empty input.
func (e enum[T]) parse(raw string) (T, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return e.fallback, nil
	}
	if v, ok := e.values[key]; ok {
		return v, nil
	}
	return e.fallback, fmt.Errorf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.keys(), ", "))
}

func (e enum[T]) keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
