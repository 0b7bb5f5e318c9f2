// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gun9212/idealmatch-backend/models"
	"gorm.io/gorm"
)

// ProfileRepositoryImpl implements ProfileRepository interface
type ProfileRepositoryImpl struct {
	*BaseRepository[models.Profile, models.ProfileFilter]
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &ProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Profile, models.ProfileFilter](db),
	}
}

func (r *ProfileRepositoryImpl) applyFilter(db *gorm.DB, f models.ProfileFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Nickname != nil {
		db = db.Where("nickname = ?", *f.Nickname)
	}
	if f.Gender != nil {
		db = db.Where("gender = ?", *f.Gender)
	}
	if f.MatchingConsent != nil {
		db = db.Where("matching_consent = ?", *f.MatchingConsent)
	}
	if f.ServiceActive != nil {
		db = db.Where("service_active = ?", *f.ServiceActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

// ByFilter retrieves profiles matching the filter criteria
func (r *ProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.ProfileFilter, orderBy string, limit, offset int) ([]*models.Profile, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Profile{}), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var profiles []*models.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find profiles by filter: %w", err)
	}
	return profiles, nil
}

// Count returns the number of profiles matching the filter
func (r *ProfileRepositoryImpl) Count(ctx context.Context, filter models.ProfileFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Profile{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// Exists checks if any profile matching the filter exists
func (r *ProfileRepositoryImpl) Exists(ctx context.Context, filter models.ProfileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByUUID retrieves a profile by its UUID
func (r *ProfileRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Profile, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid profile uuid: %w", err)
	}

	profiles, err := r.ByFilter(ctx, models.ProfileFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return profiles[0], nil
}

// Update persists changes to an existing profile
func (r *ProfileRepositoryImpl) Update(ctx context.Context, profile models.Profile) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(&profile).Error
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// ListMatchable returns consent-enabled, service-active profiles that have a
// location row, excluding the observer. The candidate finder scans this set
// linearly; acceptable at current volumes, a known scalability boundary.
func (r *ProfileRepositoryImpl) ListMatchable(ctx context.Context, excludeID uint) ([]*models.Profile, error) {
	db := r.getDB(ctx)

	var profiles []*models.Profile
	err := db.
		Joins("JOIN locations ON locations.profile_id = profiles.id").
		Where("profiles.matching_consent = ?", true).
		Where("profiles.service_active = ?", true).
		Where("profiles.id <> ?", excludeID).
		Preload("Location").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matchable profiles: %w", err)
	}
	return profiles, nil
}

// SetMatchingConsent flips the matching-consent flag
func (r *ProfileRepositoryImpl) SetMatchingConsent(ctx context.Context, profileID uint, consent bool) error {
	return r.setFlag(ctx, profileID, "matching_consent", consent)
}

// SetServiceActive flips the service-active flag
func (r *ProfileRepositoryImpl) SetServiceActive(ctx context.Context, profileID uint, active bool) error {
	return r.setFlag(ctx, profileID, "service_active", active)
}

func (r *ProfileRepositoryImpl) setFlag(ctx context.Context, profileID uint, column string, value bool) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.Profile{}).
		Where("id = ?", profileID).
		Update(column, value).Error
	if err != nil {
		return fmt.Errorf("failed to update %s for profile %d: %w", column, profileID, err)
	}

	return nil
}
