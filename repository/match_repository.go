// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gun9212/idealmatch-backend/models"
	"gorm.io/gorm"
)

// MatchRepositoryImpl implements MatchRepository interface
type MatchRepositoryImpl struct {
	*BaseRepository[models.Match, models.MatchFilter]
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &MatchRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Match, models.MatchFilter](db),
	}
}

func (r *MatchRepositoryImpl) applyFilter(db *gorm.DB, f models.MatchFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.Profile1ID != nil {
		db = db.Where("profile1_id = ?", *f.Profile1ID)
	}
	if f.Profile2ID != nil {
		db = db.Where("profile2_id = ?", *f.Profile2ID)
	}
	if f.MatchedAfter != nil {
		db = db.Where("matched_at > ?", *f.MatchedAfter)
	}
	if f.MatchedBefore != nil {
		db = db.Where("matched_at < ?", *f.MatchedBefore)
	}
	return db
}

// ByFilter retrieves matches matching the filter criteria
func (r *MatchRepositoryImpl) ByFilter(ctx context.Context, filter models.MatchFilter, orderBy string, limit, offset int) ([]*models.Match, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Match{}), filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var matches []*models.Match
	if err := query.Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("failed to find matches by filter: %w", err)
	}
	return matches, nil
}

// Count returns the number of matches matching the filter
func (r *MatchRepositoryImpl) Count(ctx context.Context, filter models.MatchFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Match{}), filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// Exists checks if any match matching the filter exists
func (r *MatchRepositoryImpl) Exists(ctx context.Context, filter models.MatchFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByPair retrieves the match covering the unordered pair, if any.
func (r *MatchRepositoryImpl) ByPair(ctx context.Context, profileA, profileB uint) (*models.Match, error) {
	p1, p2 := models.CanonicalPair(profileA, profileB)

	matches, err := r.ByFilter(ctx, models.MatchFilter{Profile1ID: &p1, Profile2ID: &p2}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

// ListForProfile retrieves every match involving the profile, newest first.
func (r *MatchRepositoryImpl) ListForProfile(ctx context.Context, profileID uint) ([]*models.Match, error) {
	db := r.getDB(ctx)

	var matches []*models.Match
	err := db.
		Where("profile1_id = ? OR profile2_id = ?", profileID, profileID).
		Order("matched_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for profile %d: %w", profileID, err)
	}
	return matches, nil
}

// ListForProfileSince retrieves matches involving the profile created after
// the given instant, newest first.
func (r *MatchRepositoryImpl) ListForProfileSince(ctx context.Context, profileID uint, since time.Time) ([]*models.Match, error) {
	db := r.getDB(ctx)

	var matches []*models.Match
	err := db.
		Where("(profile1_id = ? OR profile2_id = ?) AND matched_at > ?", profileID, profileID, since).
		Order("matched_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for profile %d since %s: %w", profileID, since, err)
	}
	return matches, nil
}

// Delete removes a match row by ID. Deleting an already-deleted row is a
// no-op, not an error.
func (r *MatchRepositoryImpl) Delete(ctx context.Context, matchID uint) error {
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

	err = db.Delete(&models.Match{}, matchID).Error
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", matchID, err)
	}

	return nil
}

// DeleteAllForProfile removes every match involving the profile and returns
// the number of rows deleted.
func (r *MatchRepositoryImpl) DeleteAllForProfile(ctx context.Context, profileID uint) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	result := db.
		Where("profile1_id = ? OR profile2_id = ?", profileID, profileID).
		Delete(&models.Match{})
	if result.Error != nil {
		err = result.Error
		return 0, fmt.Errorf("failed to delete matches for profile %d: %w", profileID, err)
	}

	return result.RowsAffected, nil
}
