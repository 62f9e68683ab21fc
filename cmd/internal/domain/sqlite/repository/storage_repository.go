package repository

import (
	"errors"

	"gorm.io/gorm"

	"mibo/cmd/internal/domain/entity"
)

type DefaultStorageRepository struct {
	db *gorm.DB
}

func NewStorageRepository(db *gorm.DB) *DefaultStorageRepository {
	return &DefaultStorageRepository{db: db}
}

// Find returns nil without error when the key is absent.
func (s *DefaultStorageRepository) Find(key string) (*entity.StorageEntry, error) {
	var entry entity.StorageEntry
	err := s.db.First(&entry, "storage_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Save inserts or overwrites the entry under its key.
func (s *DefaultStorageRepository) Save(entry *entity.StorageEntry) error {
	return s.db.Save(entry).Error
}

func (s *DefaultStorageRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Where("storage_key IN ?", keys).Delete(&entity.StorageEntry{}).Error
}
