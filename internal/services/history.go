package services

import (
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"github.com/bobby-s-dev/weather-lookup/internal/storage"
	"go.uber.org/zap"
)

const (
	MaxHistoryEntries = 20
	recentHistorySize = 10
)

// HistoryStore keeps the most recent searches, newest first, one entry per
// case-insensitive name.
type HistoryStore struct {
	mu      sync.RWMutex
	history []models.HistoryEntry
	storage storage.Storage
	logger  *zap.Logger
	now     func() time.Time
}

func NewHistoryStore(s storage.Storage, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{
		history: []models.HistoryEntry{},
		storage: s,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *HistoryStore) Load() {
	items := loadList[models.HistoryEntry](h.storage, HistoryStorageKey, h.logger)
	if len(items) > MaxHistoryEntries {
		items = items[:MaxHistoryEntries]
	}

	h.mu.Lock()
	h.history = items
	h.mu.Unlock()

	h.logger.Debug("History loaded", zap.Int("count", len(items)))
}

func (h *HistoryStore) List() []models.HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.HistoryEntry, len(h.history))
	copy(out, h.history)
	return out
}

// Recent returns up to the ten newest entries.
func (h *HistoryStore) Recent() []models.HistoryEntry {
	all := h.List()
	if len(all) > recentHistorySize {
		all = all[:recentHistorySize]
	}
	return all
}

// Add moves name to the head of the history, dropping older entries with the
// same name and anything past MaxHistoryEntries.
func (h *HistoryStore) Add(name string) error {
	if name == "" {
		return ErrEmptyCityName
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	next := make([]models.HistoryEntry, 0, len(h.history)+1)
	next = append(next, models.HistoryEntry{
		ID:         now.UnixMilli(),
		Name:       name,
		SearchedAt: now,
	})
	for _, e := range h.history {
		if !sameName(e.Name, name) {
			next = append(next, e)
		}
	}
	if len(next) > MaxHistoryEntries {
		next = next[:MaxHistoryEntries]
	}
	h.history = next

	return h.save()
}

func (h *HistoryStore) Remove(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := make([]models.HistoryEntry, 0, len(h.history))
	for _, e := range h.history {
		if !sameName(e.Name, name) {
			kept = append(kept, e)
		}
	}
	h.history = kept

	return h.save()
}

func (h *HistoryStore) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = []models.HistoryEntry{}
	return h.save()
}

func (h *HistoryStore) save() error {
	if err := saveList(h.storage, HistoryStorageKey, h.history); err != nil {
		h.logger.Error("Failed to save history", zap.Error(err))
		return err
	}
	return nil
}
