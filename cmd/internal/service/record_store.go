package service

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"

	"mibo/cmd/internal/domain/entity"
	"mibo/cmd/internal/utils"
)

type StorageRepository interface {
	Find(key string) (*entity.StorageEntry, error)
	Save(entry *entity.StorageEntry) error
	Delete(keys ...string) error
}

// RecordStore is the device-local convenience cache. Every read is
// checked against the record's version and validation tags; anything
// that does not match is reported as a miss.
type RecordStore struct {
	Repo     StorageRepository
	Validate *validator.Validate
	Clock    utils.Clock
}

func NewRecordStore(repo StorageRepository, validate *validator.Validate, clock utils.Clock) *RecordStore {
	return &RecordStore{Repo: repo, Validate: validate, Clock: clock}
}

func (r *RecordStore) SaveLatestBooking(summary *entity.BookingSummary) error {
	summary.Version = entity.BookingSummaryVersion
	return r.saveRecord(entity.KeyLatestBooking, summary.Version, summary)
}

func (r *RecordStore) LatestBooking() (*entity.BookingSummary, bool) {
	var summary entity.BookingSummary
	if !r.loadRecord(entity.KeyLatestBooking, entity.BookingSummaryVersion, &summary) {
		return nil, false
	}
	return &summary, true
}

func (r *RecordStore) SaveProfile(profile *entity.ProfileRecord) error {
	profile.Version = entity.ProfileRecordVersion
	return r.saveRecord(entity.KeyUser, profile.Version, profile)
}

func (r *RecordStore) Profile() (*entity.ProfileRecord, bool) {
	var profile entity.ProfileRecord
	if !r.loadRecord(entity.KeyUser, entity.ProfileRecordVersion, &profile) {
		return nil, false
	}
	return &profile, true
}

// SaveTokens stores the auth tokens. An empty refresh token leaves the
// stored one untouched.
func (r *RecordStore) SaveTokens(access, refresh string) error {
	if err := r.saveRaw(entity.KeyAccessToken, 0, access); err != nil {
		return err
	}
	if refresh == "" {
		return nil
	}
	return r.saveRaw(entity.KeyRefreshToken, 0, refresh)
}

func (r *RecordStore) AccessToken() string {
	return r.loadRaw(entity.KeyAccessToken)
}

func (r *RecordStore) RefreshToken() string {
	return r.loadRaw(entity.KeyRefreshToken)
}

// ClearSession forgets everything tied to the logged-in patient.
func (r *RecordStore) ClearSession() error {
	return r.Repo.Delete(entity.KeyAccessToken, entity.KeyRefreshToken, entity.KeyUser)
}

func (r *RecordStore) saveRecord(key string, version int, record any) error {
	if err := r.Validate.Struct(record); err != nil {
		return fmt.Errorf("refusing to store invalid %s: %w", key, err)
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.saveRaw(key, version, string(raw))
}

func (r *RecordStore) saveRaw(key string, version int, value string) error {
	return r.Repo.Save(&entity.StorageEntry{
		Key:       key,
		Value:     value,
		Version:   version,
		UpdatedAt: r.Clock.Now().UnixMilli(),
	})
}

func (r *RecordStore) loadRecord(key string, version int, into any) bool {
	entry := r.find(key)
	if entry == nil {
		return false
	}
	if entry.Version != version {
		log.Warnf("discarding %s: stored version %d, expected %d", key, entry.Version, version)
		return false
	}
	if err := json.Unmarshal([]byte(entry.Value), into); err != nil {
		log.Warnf("discarding %s: %v", key, err)
		return false
	}
	if err := r.Validate.Struct(into); err != nil {
		log.Warnf("discarding %s: %v", key, err)
		return false
	}
	return true
}

func (r *RecordStore) loadRaw(key string) string {
	entry := r.find(key)
	if entry == nil {
		return ""
	}
	return entry.Value
}

func (r *RecordStore) find(key string) *entity.StorageEntry {
	entry, err := r.Repo.Find(key)
	if err != nil {
		log.Errorf("failed to read %s from local storage: %v", key, err)
		return nil
	}
	return entry
}
