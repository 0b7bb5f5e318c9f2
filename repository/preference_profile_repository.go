// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/gun9212/idealmatch-backend/models"
	"gorm.io/gorm"
)

// PreferenceProfileRepositoryImpl implements PreferenceProfileRepository interface
type PreferenceProfileRepositoryImpl struct {
	*BaseRepository[models.PreferenceProfile, models.PreferenceProfileFilter]
}

// NewPreferenceProfileRepository creates a new preference profile repository
func NewPreferenceProfileRepository(db *gorm.DB) PreferenceProfileRepository {
	return &PreferenceProfileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PreferenceProfile, models.PreferenceProfileFilter](db),
	}
}

func (r *PreferenceProfileRepositoryImpl) applyFilter(db *gorm.DB, f models.PreferenceProfileFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ProfileID != nil {
		db = db.Where("profile_id = ?", *f.ProfileID)
	}
	return db
}

// ByFilter retrieves preference profiles matching the filter criteria
func (r *PreferenceProfileRepositoryImpl) ByFilter(ctx context.Context, filter models.PreferenceProfileFilter, orderBy string, limit, offset int) ([]*models.PreferenceProfile, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PreferenceProfile{}), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var prefs []*models.PreferenceProfile
	if err := query.Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to find preference profiles by filter: %w", err)
	}
	return prefs, nil
}

// Count returns the number of preference profiles matching the filter
func (r *PreferenceProfileRepositoryImpl) Count(ctx context.Context, filter models.PreferenceProfileFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.PreferenceProfile{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count preference profiles: %w", err)
	}
	return count, nil
}

// Exists checks if any preference profile matching the filter exists
func (r *PreferenceProfileRepositoryImpl) Exists(ctx context.Context, filter models.PreferenceProfileFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByProfileID retrieves the preference profile owned by the given profile.
// Returns nil without error when the profile has not configured one yet.
func (r *PreferenceProfileRepositoryImpl) ByProfileID(ctx context.Context, profileID uint) (*models.PreferenceProfile, error) {
	prefs, err := r.ByFilter(ctx, models.PreferenceProfileFilter{ProfileID: &profileID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, nil
	}
	return prefs[0], nil
}

// Update persists changes to an existing preference profile
func (r *PreferenceProfileRepositoryImpl) Update(ctx context.Context, pref models.PreferenceProfile) error {
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

	err = db.Save(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to update preference profile: %w", err)
	}

	return nil
}
