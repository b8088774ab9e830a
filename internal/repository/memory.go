package repository

import (
	"context"
	"sort"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"sgfkit/internal/domain/collection"
	errs "sgfkit/internal/errors"
)

// CollectionMapStorage keeps collections in process memory. It backs the
// service when STORAGE=memory and stands in for Mongo/Redis in tests.
type CollectionMapStorage struct {
	mu          sync.RWMutex
	collections map[string]collection.StoredCollection
	pageLimit   int
}

func NewMapCollectionStorage(pageLimit int) *CollectionMapStorage {
	return &CollectionMapStorage{
		collections: make(map[string]collection.StoredCollection),
		pageLimit:   pageLimit,
	}
}

func (m *CollectionMapStorage) Save(_ context.Context, record collection.StoredCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[record.ID] = record
	return nil
}

func (m *CollectionMapStorage) GetByID(_ context.Context, id string) (collection.StoredCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.collections[id]
	if !ok {
		return record, pkgerrors.Wrapf(errs.ErrCollectionNotFound, "id %s", id)
	}
	return record, nil
}

func (m *CollectionMapStorage) LoadSGF(ctx context.Context, id string) (string, error) {
	record, err := m.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return record.Sgf, nil
}

func (m *CollectionMapStorage) List(_ context.Context, pageNum int) (*collection.CollectionPage, error) {
	m.mu.RLock()
	all := make([]collection.StoredCollection, 0, len(m.collections))
	for _, record := range m.collections {
		record.Sgf = ""
		all = append(all, record)
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	skip, totalPages := pageBounds(int64(len(all)), pageNum, m.pageLimit)
	start := int(skip)
	if start > len(all) {
		start = len(all)
	}
	end := start + max(m.pageLimit, 1)
	if end > len(all) {
		end = len(all)
	}

	return &collection.CollectionPage{
		PageNum:     max(pageNum, 1),
		TotalPages:  totalPages,
		Total:       int64(len(all)),
		Collections: all[start:end],
	}, nil
}

func (m *CollectionMapStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[id]; !ok {
		return pkgerrors.Wrapf(errs.ErrCollectionNotFound, "id %s", id)
	}
	delete(m.collections, id)
	return nil
}
