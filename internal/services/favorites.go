package services

import (
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/weather-lookup/internal/models"
	"github.com/bobby-s-dev/weather-lookup/internal/storage"
	"go.uber.org/zap"
)

var ErrEmptyCityName = errors.New("city name is required")

// FavoritesStore is an unbounded, newest-first list of favorite cities with
// case-insensitive unique names.
type FavoritesStore struct {
	mu        sync.RWMutex
	favorites []models.FavoriteCity
	storage   storage.Storage
	logger    *zap.Logger
	now       func() time.Time
}

func NewFavoritesStore(s storage.Storage, logger *zap.Logger) *FavoritesStore {
	return &FavoritesStore{
		favorites: []models.FavoriteCity{},
		storage:   s,
		logger:    logger,
		now:       time.Now,
	}
}

// Load replaces the in-memory list with the persisted one.
func (f *FavoritesStore) Load() {
	items := loadList[models.FavoriteCity](f.storage, FavoritesStorageKey, f.logger)

	f.mu.Lock()
	f.favorites = items
	f.mu.Unlock()

	f.logger.Debug("Favorites loaded", zap.Int("count", len(items)))
}

func (f *FavoritesStore) List() []models.FavoriteCity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.FavoriteCity, len(f.favorites))
	copy(out, f.favorites)
	return out
}

func (f *FavoritesStore) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.favorites)
}

func (f *FavoritesStore) IsFavorite(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexOf(name) >= 0
}

func (f *FavoritesStore) indexOf(name string) int {
	for i, c := range f.favorites {
		if sameName(c.Name, name) {
			return i
		}
	}
	return -1
}

// Add puts the city at the head of the list. It reports false, and changes
// nothing, when a favorite with the same name already exists.
func (f *FavoritesStore) Add(city models.CityData) (bool, error) {
	name := city.DisplayName()
	if name == "" {
		return false, ErrEmptyCityName
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexOf(name) >= 0 {
		return false, nil
	}

	now := f.now()
	favorite := models.FavoriteCity{
		ID:      now.UnixMilli(),
		Name:    name,
		Country: city.Country,
		Coords:  city.Coords,
		AddedAt: now,
	}
	f.favorites = append([]models.FavoriteCity{favorite}, f.favorites...)

	f.logger.Info("Favorite added", zap.String("city", name))
	return true, f.save()
}

func (f *FavoritesStore) Remove(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := make([]models.FavoriteCity, 0, len(f.favorites))
	for _, c := range f.favorites {
		if !sameName(c.Name, name) {
			kept = append(kept, c)
		}
	}
	f.favorites = kept

	return f.save()
}

// Toggle removes the city when it is a favorite and adds it otherwise.
// It returns whether the city is a favorite afterwards.
func (f *FavoritesStore) Toggle(city models.CityData) (bool, error) {
	name := city.DisplayName()
	if name == "" {
		return false, ErrEmptyCityName
	}
	if f.IsFavorite(name) {
		return false, f.Remove(name)
	}
	if _, err := f.Add(city); err != nil {
		return true, err
	}
	return true, nil
}

// Reorder replaces the list with newOrder as given.
func (f *FavoritesStore) Reorder(newOrder []models.FavoriteCity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.favorites = make([]models.FavoriteCity, len(newOrder))
	copy(f.favorites, newOrder)
	return f.save()
}

func (f *FavoritesStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.favorites = []models.FavoriteCity{}
	return f.save()
}

// save must be called with mu held.
func (f *FavoritesStore) save() error {
	if err := saveList(f.storage, FavoritesStorageKey, f.favorites); err != nil {
		f.logger.Error("Failed to save favorites", zap.Error(err))
		return err
	}
	return nil
}
