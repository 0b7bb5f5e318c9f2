// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepositoryImpl implements LocationRepository interface
type LocationRepositoryImpl struct {
	*BaseRepository[models.Location, models.LocationFilter]
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &LocationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Location, models.LocationFilter](db),
	}
}

func (r *LocationRepositoryImpl) applyFilter(db *gorm.DB, f models.LocationFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.ProfileID != nil {
		db = db.Where("profile_id = ?", *f.ProfileID)
	}
	return db
}

// ByFilter retrieves locations matching the filter criteria
func (r *LocationRepositoryImpl) ByFilter(ctx context.Context, filter models.LocationFilter, orderBy string, limit, offset int) ([]*models.Location, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Location{}), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var locations []*models.Location
	if err := query.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to find locations by filter: %w", err)
	}
	return locations, nil
}

// Count returns the number of locations matching the filter
func (r *LocationRepositoryImpl) Count(ctx context.Context, filter models.LocationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Location{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}

// Exists checks if any location matching the filter exists
func (r *LocationRepositoryImpl) Exists(ctx context.Context, filter models.LocationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByProfileID retrieves the current location of the given profile. Returns
// nil without error when the profile has never reported a coordinate.
func (r *LocationRepositoryImpl) ByProfileID(ctx context.Context, profileID uint) (*models.Location, error) {
	locations, err := r.ByFilter(ctx, models.LocationFilter{ProfileID: &profileID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return locations[0], nil
}

// Upsert overwrites the profile's current coordinate in place, inserting the
// row on the profile's first location report.
func (r *LocationRepositoryImpl) Upsert(ctx context.Context, profileID uint, latitude, longitude float64) (*models.Location, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
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

	location := models.Location{
		ProfileID: profileID,
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: utils.UTCNow(),
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "updated_at"}),
	}).Create(&location).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert location for profile %d: %w", profileID, err)
	}

	return &location, nil
}
