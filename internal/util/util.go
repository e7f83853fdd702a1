package util

import (
	"cmp"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

func Assert(cond bool, msg string) {
	ignoreAsserts := viper.GetBool("ignore-asserts")
	if !ignoreAsserts && !cond {
		panic(msg)
	}
}

// KV is a single map entry, encoded as {"key": ..., "value": ...}.
type KV[K any, V any] struct {
	Key   K `json:"key"`
	Value V `json:"value"`
}

func OrderedRangeKV[K cmp.Ordered, V any](m map[K]V) []*KV[K, V] {
	sorted := make([]*KV[K, V], len(m))
	for i, key := range OrderedKeys(m) {
		sorted[i] = &KV[K, V]{
			Key:   key,
			Value: m[key],
		}
	}

	return sorted
}

func OrderedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, len(m))

	i := 0
	for key := range m { // nosemgrep: range-over-map
		keys[i] = key
		i++
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	for i := 0; i < len(keys)-1; i++ {
		Assert(keys[i] <= keys[i+1], "slice not sorted")
	}

	return keys
}

// JoinURL concatenates a base address and a route without doubling or
// dropping the separating slash.
func JoinURL(address string, route string) string {
	if route == "" {
		return address
	}

	switch {
	case strings.HasSuffix(address, "/") && strings.HasPrefix(route, "/"):
		return address + strings.TrimPrefix(route, "/")
	case !strings.HasSuffix(address, "/") && !strings.HasPrefix(route, "/"):
		return address + "/" + route
	default:
		return address + route
	}
}

func DeferAndLog(f func() error) {
	if err := f(); err != nil {
		slog.Warn("defer failed", "err", err)
	}
}
