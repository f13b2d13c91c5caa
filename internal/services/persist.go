package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bobby-s-dev/weather-lookup/internal/storage"
	"go.uber.org/zap"
)

const (
	FavoritesStorageKey = "weather-app-favorites"
	HistoryStorageKey   = "weather-app-history"
)

// loadList reads a JSON list from storage. Absent, unreadable or malformed
// data yields an empty list.
func loadList[T any](s storage.Storage, key string, logger *zap.Logger) []T {
	raw, ok, err := s.GetItem(key)
	if err != nil {
		logger.Warn("Failed to read stored list, starting empty",
			zap.String("key", key),
			zap.Error(err))
		return []T{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Warn("Stored list is malformed, starting empty",
			zap.String("key", key),
			zap.Error(err))
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func saveList[T any](s storage.Storage, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.SetItem(key, string(data))
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}
