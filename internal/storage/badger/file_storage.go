package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
)

// FileEntry stores binary content (chart PNGs, rendered PDFs) in the
// database alongside the research blobs.
type FileEntry struct {
	Key         string `badgerhold:"key"` // "{category}/{name}"
	Category    string `badgerhold:"index"`
	Data        []byte
	ContentType string
	CreatedAt   time.Time
}

type fileStorage struct {
	store  *Store
	logger *common.Logger
}

// NewFileStorage creates a FileStore backed by BadgerHold.
func NewFileStorage(store *Store, logger *common.Logger) *fileStorage {
	return &fileStorage{store: store, logger: logger}
}

func fileKey(category, key string) string {
	return fmt.Sprintf("file/%s/%s", category, key)
}

func (s *fileStorage) SaveFile(_ context.Context, category, key string, data []byte, contentType string) error {
	entry := FileEntry{
		Key:         fileKey(category, key),
		Category:    category,
		Data:        data,
		ContentType: contentType,
		CreatedAt:   time.Now(),
	}
	if err := s.store.db.Upsert(entry.Key, &entry); err != nil {
		return fmt.Errorf("save file '%s/%s': %w", category, key, common.ErrPersistence)
	}
	return nil
}

func (s *fileStorage) GetFile(_ context.Context, category, key string) ([]byte, string, error) {
	var entry FileEntry
	if err := s.store.db.Get(fileKey(category, key), &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, "", fmt.Errorf("file '%s/%s' not found", category, key)
		}
		return nil, "", fmt.Errorf("get file '%s/%s': %w", category, key, err)
	}
	return entry.Data, entry.ContentType, nil
}

func (s *fileStorage) HasFile(_ context.Context, category, key string) (bool, error) {
	var entry FileEntry
	err := s.store.db.Get(fileKey(category, key), &entry)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check file '%s/%s': %w", category, key, err)
	}
	return true, nil
}

// Ensure fileStorage implements FileStore
var _ interfaces.FileStore = (*fileStorage)(nil)
