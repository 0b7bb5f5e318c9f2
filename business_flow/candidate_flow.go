package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/config"
	"github.com/gun9212/idealmatch-backend/matching"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/repository"
	"github.com/gun9212/idealmatch-backend/utils"
	"github.com/redis/go-redis/v9"
)

// CandidateFlow finds and ranks compatible profiles around a coordinate.
type CandidateFlow interface {
	FindCandidates(ctx context.Context, profileID uint, req *dto.FindCandidatesRequest, metadata *ClientMetadata) (*dto.FindCandidatesResponse, error)
	MatchableCount(ctx context.Context, profileID uint, req *dto.MatchableCountRequest) (*dto.MatchableCountResponse, error)
}

// CandidateFlowImpl implements the candidate discovery business flow
type CandidateFlowImpl struct {
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceProfileRepository
	matchingCfg *config.MatchingConfig
	cacheConfig *config.CacheConfig
	rc          *redis.Client
}

func NewCandidateFlow(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceProfileRepository,
	matchingCfg *config.MatchingConfig,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
) CandidateFlow {
	return &CandidateFlowImpl{
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		matchingCfg: matchingCfg,
		cacheConfig: cacheConfig,
		rc:          rc,
	}
}

const matchableCountTTL = 30 * time.Second

// FindCandidates scans every matchable profile around the given coordinate
// and returns those within the radius that clear the observer's minimum
// score, ordered by descending score then ascending distance.
func (f *CandidateFlowImpl) FindCandidates(ctx context.Context, profileID uint, req *dto.FindCandidatesRequest, metadata *ClientMetadata) (*dto.FindCandidatesResponse, error) {
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

	radiusKm := f.matchingCfg.DefaultRadiusKm
	if req.RadiusKm != nil {
		if *req.RadiusKm <= 0 {
			return nil, NewBusinessError("INVALID_RADIUS", "Radius must be positive", ErrInvalidRadius)
		}
		radiusKm = *req.RadiusKm
	}

	pref, err := f.prefRepo.ByProfileID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PREFERENCE_LOOKUP_FAILED", "Failed to lookup preference profile", err)
	}
	// No declared preferences means nothing can be scored; the scan yields
	// an empty list rather than an error.
	if pref == nil {
		return &dto.FindCandidatesResponse{
			Message:    "No preference profile declared",
			RadiusKm:   radiusKm,
			Total:      0,
			Candidates: []dto.CandidateDTO{},
		}, nil
	}

	minScore := pref.MinScore
	if minScore <= 0 {
		minScore = matching.DefaultMinScore
	}

	ranked, byID, err := scanCandidates(ctx, f.profileRepo, observer, pref, req.Latitude, req.Longitude, radiusKm, minScore)
	if err != nil {
		return nil, err
	}

	limit := len(ranked)
	if f.matchingCfg.MaxCandidates > 0 && f.matchingCfg.MaxCandidates < limit {
		limit = f.matchingCfg.MaxCandidates
	}
	if req.Limit != nil && *req.Limit < limit {
		limit = *req.Limit
	}

	candidates := make([]dto.CandidateDTO, 0, limit)
	for _, r := range ranked[:limit] {
		p := byID[r.ProfileID]
		candidates = append(candidates, dto.CandidateDTO{
			ProfileID:   p.ID,
			UUID:        p.UUID.String(),
			Nickname:    p.Nickname,
			Age:         p.Age,
			Gender:      p.Gender,
			Height:      p.Height,
			MBTI:        p.MBTI,
			Personality: p.Personality,
			Interests:   p.Interests,
			DistanceM:   r.DistanceKm * 1000,
			Score:       r.Score,
		})
	}

	return &dto.FindCandidatesResponse{
		Message:    "Candidates retrieved successfully",
		RadiusKm:   radiusKm,
		Total:      len(candidates),
		Candidates: candidates,
	}, nil
}

// scanCandidates runs the filter-then-score pipeline over every matchable
// profile and returns the survivors sorted, plus a lookup of their rows.
func scanCandidates(ctx context.Context, profileRepo repository.ProfileRepository, observer *models.Profile, pref *models.PreferenceProfile, lat, lon, radiusKm, minScore float64) ([]matching.Ranked, map[uint]*models.Profile, error) {
	matchable, err := profileRepo.ListMatchable(ctx, observer.ID)
	if err != nil {
		return nil, nil, NewBusinessError("CANDIDATE_SCAN_FAILED", "Failed to list matchable profiles", err)
	}

	prefs := toMatchingPreferences(pref)
	observerGender := matching.Gender(observer.Gender)

	ranked := make([]matching.Ranked, 0, len(matchable))
	byID := make(map[uint]*models.Profile, len(matchable))
	for _, cand := range matchable {
		if !cand.HasLocation() {
			continue
		}
		dist := matching.DistanceKm(lat, lon, cand.Location.Latitude, cand.Location.Longitude)
		if dist > radiusKm {
			continue
		}
		score := matching.Score(prefs, toMatchingCandidate(*cand), observerGender)
		if score < minScore {
			continue
		}
		ranked = append(ranked, matching.Ranked{
			ProfileID:  cand.ID,
			DistanceKm: dist,
			Score:      score,
		})
		byID[cand.ID] = cand
	}

	matching.SortRanked(ranked)
	return ranked, byID, nil
}

// MatchableCount reports how many matchable profiles are currently within
// the radius of the given coordinate. The requester must have matching
// consent enabled. Counts are cached for a short window per rounded
// coordinate and radius since they only feed a coarse "N people nearby"
// indicator.
func (f *CandidateFlowImpl) MatchableCount(ctx context.Context, profileID uint, req *dto.MatchableCountRequest) (*dto.MatchableCountResponse, error) {
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

	// Coordinates are rounded to ~100 m in the key so nearby requests share
	// a cache entry.
	cacheKey := redisKey(*f.cacheConfig, fmt.Sprintf("%s:%.3f:%.3f:%.3f",
		utils.MatchableCountCacheKey, req.Latitude, req.Longitude, radiusKm))

	if f.rc != nil {
		if cached, err := f.rc.Get(ctx, cacheKey).Result(); err == nil {
			if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return &dto.MatchableCountResponse{
					Message:  "Matchable count retrieved from cache",
					RadiusKm: radiusKm,
					Count:    count,
					Cached:   true,
				}, nil
			}
		}
	}

	matchable, err := f.profileRepo.ListMatchable(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("MATCHABLE_COUNT_FAILED", "Failed to count matchable profiles", err)
	}

	var count int64
	for _, cand := range matchable {
		if !cand.HasLocation() {
			continue
		}
		if matching.DistanceKm(req.Latitude, req.Longitude, cand.Location.Latitude, cand.Location.Longitude) <= radiusKm {
			count++
		}
	}

	if f.rc != nil {
		_ = f.rc.Set(ctx, cacheKey, strconv.FormatInt(count, 10), matchableCountTTL).Err()
	}

	return &dto.MatchableCountResponse{
		Message:  "Matchable count retrieved",
		RadiusKm: radiusKm,
		Count:    count,
		Cached:   false,
	}, nil
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", cfg.RedisPrefix, key)
}
