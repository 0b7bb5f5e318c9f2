// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/gun9212/idealmatch-backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ProfileRepository defines operations for profiles
type ProfileRepository interface {
	Repository[models.Profile, models.ProfileFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Profile, error)
	Update(ctx context.Context, profile models.Profile) error
	// ListMatchable returns every consent-enabled, service-active profile
	// with a location, excluding the given profile. Locations are preloaded.
	ListMatchable(ctx context.Context, excludeID uint) ([]*models.Profile, error)
	SetMatchingConsent(ctx context.Context, profileID uint, consent bool) error
	SetServiceActive(ctx context.Context, profileID uint, active bool) error
}

// PreferenceProfileRepository defines operations for preference profiles
type PreferenceProfileRepository interface {
	Repository[models.PreferenceProfile, models.PreferenceProfileFilter]
	ByProfileID(ctx context.Context, profileID uint) (*models.PreferenceProfile, error)
	Update(ctx context.Context, pref models.PreferenceProfile) error
}

// LocationRepository defines operations for current-location rows
type LocationRepository interface {
	Repository[models.Location, models.LocationFilter]
	ByProfileID(ctx context.Context, profileID uint) (*models.Location, error)
	// Upsert overwrites the profile's current coordinate, creating the row
	// on first update. No location history is kept.
	Upsert(ctx context.Context, profileID uint, latitude, longitude float64) (*models.Location, error)
}

// MatchRepository defines operations for match rows
type MatchRepository interface {
	Repository[models.Match, models.MatchFilter]
	// ByPair looks up the unordered pair; argument order does not matter.
	ByPair(ctx context.Context, profileA, profileB uint) (*models.Match, error)
	ListForProfile(ctx context.Context, profileID uint) ([]*models.Match, error)
	ListForProfileSince(ctx context.Context, profileID uint, since time.Time) ([]*models.Match, error)
	Delete(ctx context.Context, matchID uint) error
	// DeleteAllForProfile removes every match involving the profile and
	// returns the number of rows deleted.
	DeleteAllForProfile(ctx context.Context, profileID uint) (int64, error)
}
