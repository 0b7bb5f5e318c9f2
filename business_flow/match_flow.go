package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/config"
	"github.com/gun9212/idealmatch-backend/matching"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/repository"
	"github.com/gun9212/idealmatch-backend/utils"
	"gorm.io/gorm"
)

// MatchFlow drives the match lifecycle: creation for in-range compatible
// pairs, drift expiry, and consent-driven teardown and rebuild.
type MatchFlow interface {
	ReconcileMatches(ctx context.Context, profileID uint, req *dto.ReconcileRequest, metadata *ClientMetadata) (*dto.ReconcileResponse, error)
	TeardownOnConsentRevoked(ctx context.Context, profileID uint) (int64, error)
	RebuildOnConsentGranted(ctx context.Context, profileID uint) (int, error)
	CheckNewMatches(ctx context.Context, profileID uint, since time.Time) (*dto.NewMatchesResponse, error)
	ListMatches(ctx context.Context, profileID uint) (*dto.ListMatchesResponse, error)
}

// MatchFlowImpl implements the match lifecycle business flow
type MatchFlowImpl struct {
	profileRepo  repository.ProfileRepository
	prefRepo     repository.PreferenceProfileRepository
	locationRepo repository.LocationRepository
	matchRepo    repository.MatchRepository
	matchingCfg  *config.MatchingConfig
	db           *gorm.DB
}

func NewMatchFlow(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceProfileRepository,
	locationRepo repository.LocationRepository,
	matchRepo repository.MatchRepository,
	matchingCfg *config.MatchingConfig,
	db *gorm.DB,
) MatchFlow {
	return &MatchFlowImpl{
		profileRepo:  profileRepo,
		prefRepo:     prefRepo,
		locationRepo: locationRepo,
		matchRepo:    matchRepo,
		matchingCfg:  matchingCfg,
		db:           db,
	}
}

// ReconcileMatches runs one lifecycle pass for the observer at the given
// coordinate: it creates matches for in-range compatible candidates that
// have no row yet, and removes existing matches whose pair has drifted
// beyond the radius or whose counterpart no longer has a location. The two
// sets are disjoint, so a pass never deletes what it just created.
//
// Existing rows are never rescored; their criteria snapshot stands until the
// pair unmatches.
func (f *MatchFlowImpl) ReconcileMatches(ctx context.Context, profileID uint, req *dto.ReconcileRequest, metadata *ClientMetadata) (*dto.ReconcileResponse, error) {
	observer, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if observer == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}
	if !utils.IsTrue(observer.ServiceActive) {
		return nil, NewBusinessError("PROFILE_INACTIVE", "Profile service is inactive", ErrProfileInactive)
	}
	if !utils.IsTrue(observer.MatchingConsent) {
		return nil, NewBusinessError("MATCHING_CONSENT_OFF", "Matching consent is disabled", ErrMatchingConsentOff)
	}

	radiusKm := f.matchingCfg.DefaultRadiusKm
	if req.RadiusKm != nil {
		if *req.RadiusKm <= 0 {
			return nil, NewBusinessError("INVALID_RADIUS", "Radius must be positive", ErrInvalidRadius)
		}
		radiusKm = *req.RadiusKm
	}

	var created, removed []dto.MatchDTO
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		// The reconcile coordinate is the observer's new last-known
		// position; persist it so drift checks by other parties see it.
		if _, uerr := f.locationRepo.Upsert(txCtx, profileID, req.Latitude, req.Longitude); uerr != nil {
			return NewBusinessError("LOCATION_UPDATE_FAILED", "Failed to update location", uerr)
		}

		var ferr error
		created, ferr = f.createInRange(txCtx, observer, req.Latitude, req.Longitude, radiusKm)
		if ferr != nil {
			return ferr
		}

		removed, ferr = f.expireDrifted(txCtx, observer, req.Latitude, req.Longitude, radiusKm)
		return ferr
	})
	if err != nil {
		return nil, err
	}

	return &dto.ReconcileResponse{
		Message: "Matches reconciled successfully",
		Created: created,
		Removed: removed,
	}, nil
}

// createInRange creates a match row for every ranked candidate without one.
// A duplicate-key failure means a concurrent pass won the insert race; the
// pair is already matched, so the row is skipped silently.
func (f *MatchFlowImpl) createInRange(ctx context.Context, observer *models.Profile, lat, lon, radiusKm float64) ([]dto.MatchDTO, error) {
	pref, err := f.prefRepo.ByProfileID(ctx, observer.ID)
	if err != nil {
		return nil, NewBusinessError("PREFERENCE_LOOKUP_FAILED", "Failed to lookup preference profile", err)
	}
	// Without preferences nothing can be scored; the pass still runs drift
	// expiry but creates nothing.
	if pref == nil {
		return []dto.MatchDTO{}, nil
	}

	minScore := pref.MinScore
	if minScore <= 0 {
		minScore = f.matchingCfg.MinScore
	}

	ranked, byID, err := scanCandidates(ctx, f.profileRepo, observer, pref, lat, lon, radiusKm, minScore)
	if err != nil {
		return nil, err
	}

	created := make([]dto.MatchDTO, 0, len(ranked))
	for _, r := range ranked {
		cand := byID[r.ProfileID]

		existing, err := f.matchRepo.ByPair(ctx, observer.ID, cand.ID)
		if err != nil {
			return nil, NewBusinessError("MATCH_LOOKUP_FAILED", "Failed to lookup match", err)
		}
		if existing != nil {
			continue
		}

		match, err := buildMatch(observer, cand, lat, lon, r)
		if err != nil {
			return nil, NewBusinessError("MATCH_ENCODE_FAILED", "Failed to encode match criteria", err)
		}
		if err := f.matchRepo.Save(ctx, match); err != nil {
			if repository.IsDuplicateKey(err) {
				continue
			}
			return nil, NewBusinessError("MATCH_CREATE_FAILED", "Failed to create match", err)
		}
		created = append(created, ToMatchDTO(*match, observer.ID, cand.Nickname))
	}
	return created, nil
}

// expireDrifted deletes every existing match of the observer whose current
// distance exceeds the radius, or whose counterpart has no location row.
func (f *MatchFlowImpl) expireDrifted(ctx context.Context, observer *models.Profile, lat, lon, radiusKm float64) ([]dto.MatchDTO, error) {
	existing, err := f.matchRepo.ListForProfile(ctx, observer.ID)
	if err != nil {
		return nil, NewBusinessError("MATCH_LIST_FAILED", "Failed to list matches", err)
	}

	removed := make([]dto.MatchDTO, 0)
	for _, match := range existing {
		otherID := match.OtherProfileID(observer.ID)

		loc, err := f.locationRepo.ByProfileID(ctx, otherID)
		if err != nil {
			return nil, NewBusinessError("LOCATION_LOOKUP_FAILED", "Failed to lookup counterpart location", err)
		}
		if loc != nil && matching.DistanceKm(lat, lon, loc.Latitude, loc.Longitude) <= radiusKm {
			continue
		}

		if err := f.matchRepo.Delete(ctx, match.ID); err != nil {
			return nil, NewBusinessError("MATCH_DELETE_FAILED", "Failed to delete match", err)
		}
		removed = append(removed, ToMatchDTO(*match, observer.ID, ""))
	}
	return removed, nil
}

// TeardownOnConsentRevoked deletes every match involving the profile,
// regardless of current distance, and returns the number removed.
func (f *MatchFlowImpl) TeardownOnConsentRevoked(ctx context.Context, profileID uint) (int64, error) {
	count, err := f.matchRepo.DeleteAllForProfile(ctx, profileID)
	if err != nil {
		return 0, NewBusinessError("MATCH_TEARDOWN_FAILED", "Failed to remove matches", err)
	}
	return count, nil
}

// RebuildOnConsentGranted eagerly re-scans at the tight radius so a profile
// opting back in next to someone compatible gets rematched immediately
// instead of waiting for the next periodic sweep. A profile with no stored
// location simply creates nothing.
func (f *MatchFlowImpl) RebuildOnConsentGranted(ctx context.Context, profileID uint) (int, error) {
	observer, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return 0, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if observer == nil {
		return 0, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}
	// Matches only exist between service-active profiles. The consent flip
	// itself stands; the profile gets matched once it reactivates.
	if !utils.IsTrue(observer.ServiceActive) {
		return 0, nil
	}

	loc, err := f.locationRepo.ByProfileID(ctx, profileID)
	if err != nil {
		return 0, NewBusinessError("LOCATION_LOOKUP_FAILED", "Failed to lookup location", err)
	}
	if loc == nil {
		return 0, nil
	}

	var created []dto.MatchDTO
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var ferr error
		created, ferr = f.createInRange(txCtx, observer, loc.Latitude, loc.Longitude, f.matchingCfg.TightRadiusKm)
		return ferr
	})
	if err != nil {
		return 0, err
	}
	return len(created), nil
}

// CheckNewMatches reports matches created strictly after the given instant,
// newest first.
func (f *MatchFlowImpl) CheckNewMatches(ctx context.Context, profileID uint, since time.Time) (*dto.NewMatchesResponse, error) {
	observer, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if observer == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	matches, err := f.matchRepo.ListForProfileSince(ctx, profileID, since)
	if err != nil {
		return nil, NewBusinessError("MATCH_LIST_FAILED", "Failed to list matches", err)
	}

	dtos, err := f.toMatchDTOs(ctx, matches, profileID)
	if err != nil {
		return nil, err
	}

	resp := &dto.NewMatchesResponse{
		Message:         "New matches checked",
		Since:           since,
		HasNewMatch:     len(dtos) > 0,
		NewMatchesCount: len(dtos),
		Matches:         dtos,
	}
	if len(dtos) > 0 {
		resp.LatestMatch = &dtos[0]
	}
	return resp, nil
}

// ListMatches returns every current match of the profile, newest first.
func (f *MatchFlowImpl) ListMatches(ctx context.Context, profileID uint) (*dto.ListMatchesResponse, error) {
	observer, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if observer == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	matches, err := f.matchRepo.ListForProfile(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("MATCH_LIST_FAILED", "Failed to list matches", err)
	}

	dtos, err := f.toMatchDTOs(ctx, matches, profileID)
	if err != nil {
		return nil, err
	}

	return &dto.ListMatchesResponse{
		Message: "Matches retrieved successfully",
		Total:   len(dtos),
		Matches: dtos,
	}, nil
}

func (f *MatchFlowImpl) toMatchDTOs(ctx context.Context, matches []*models.Match, viewerID uint) ([]dto.MatchDTO, error) {
	dtos := make([]dto.MatchDTO, 0, len(matches))
	for _, match := range matches {
		otherID := match.OtherProfileID(viewerID)
		other, err := f.profileRepo.ByID(ctx, otherID)
		if err != nil {
			return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup counterpart profile", err)
		}
		nickname := ""
		if other != nil {
			nickname = other.Nickname
		}
		dtos = append(dtos, ToMatchDTO(*match, viewerID, nickname))
	}
	return dtos, nil
}

// buildMatch assembles a canonical match row with both parties' coordinates
// and the criteria snapshot at creation time.
func buildMatch(observer, cand *models.Profile, lat, lon float64, r matching.Ranked) (*models.Match, error) {
	criteria, err := json.Marshal(models.MatchCriteria{
		DistanceM: r.DistanceKm * 1000,
		Score:     r.Score,
	})
	if err != nil {
		return nil, err
	}

	p1, p2 := models.CanonicalPair(observer.ID, cand.ID)
	match := &models.Match{
		UUID:       uuid.New(),
		Profile1ID: p1,
		Profile2ID: p2,
		MatchedAt:  utils.UTCNow(),
		Criteria:   criteria,
	}
	if p1 == observer.ID {
		match.Profile1Latitude, match.Profile1Longitude = lat, lon
		match.Profile2Latitude, match.Profile2Longitude = cand.Location.Latitude, cand.Location.Longitude
	} else {
		match.Profile1Latitude, match.Profile1Longitude = cand.Location.Latitude, cand.Location.Longitude
		match.Profile2Latitude, match.Profile2Longitude = lat, lon
	}
	return match, nil
}
