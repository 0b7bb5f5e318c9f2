package businessflow

import (
	"context"

	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/repository"
	"github.com/gun9212/idealmatch-backend/utils"
	"gorm.io/gorm"
)

// ProfileFlow manages profile attributes, preferences, location and the
// matching-consent switch.
type ProfileFlow interface {
	GetProfile(ctx context.Context, profileID uint) (*dto.GetProfileResponse, error)
	UpdateProfile(ctx context.Context, profileID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error)
	UpdatePreferences(ctx context.Context, profileID uint, req *dto.UpdatePreferencesRequest, metadata *ClientMetadata) (*dto.UpdatePreferencesResponse, error)
	UpdateLocation(ctx context.Context, profileID uint, req *dto.UpdateLocationRequest, metadata *ClientMetadata) (*dto.UpdateLocationResponse, error)
	UpdateMatchingConsent(ctx context.Context, profileID uint, req *dto.UpdateConsentRequest, metadata *ClientMetadata) (*dto.UpdateConsentResponse, error)
}

// ProfileFlowImpl implements the profile business flow
type ProfileFlowImpl struct {
	profileRepo  repository.ProfileRepository
	prefRepo     repository.PreferenceProfileRepository
	locationRepo repository.LocationRepository
	matchFlow    MatchFlow
	db           *gorm.DB
}

func NewProfileFlow(
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceProfileRepository,
	locationRepo repository.LocationRepository,
	matchFlow MatchFlow,
	db *gorm.DB,
) ProfileFlow {
	return &ProfileFlowImpl{
		profileRepo:  profileRepo,
		prefRepo:     prefRepo,
		locationRepo: locationRepo,
		matchFlow:    matchFlow,
		db:           db,
	}
}

// GetProfile returns the profile with its preference profile and current
// location, when present.
func (f *ProfileFlowImpl) GetProfile(ctx context.Context, profileID uint) (*dto.GetProfileResponse, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	resp := &dto.GetProfileResponse{
		Message: "Profile retrieved successfully",
		Profile: ToProfileDTO(*profile),
	}

	pref, err := f.prefRepo.ByProfileID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PREFERENCE_LOOKUP_FAILED", "Failed to lookup preference profile", err)
	}
	if pref != nil {
		prefDTO := ToPreferenceProfileDTO(*pref)
		resp.Preference = &prefDTO
	}

	loc, err := f.locationRepo.ByProfileID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("LOCATION_LOOKUP_FAILED", "Failed to lookup location", err)
	}
	if loc != nil {
		locDTO := ToLocationDTO(*loc)
		resp.Location = &locDTO
	}

	return resp, nil
}

// UpdateProfile applies the non-nil fields of the request to the profile.
func (f *ProfileFlowImpl) UpdateProfile(ctx context.Context, profileID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.UpdateProfileResponse, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	changed := false
	if req.Nickname != nil {
		profile.Nickname = *req.Nickname
		changed = true
	}
	if req.Age != nil {
		profile.Age = *req.Age
		changed = true
	}
	if req.Height != nil {
		profile.Height = *req.Height
		changed = true
	}
	if req.MBTI != nil {
		profile.MBTI = req.MBTI
		changed = true
	}
	if req.Personality != nil {
		profile.Personality = req.Personality
		changed = true
	}
	if req.Interests != nil {
		profile.Interests = req.Interests
		changed = true
	}
	if !changed {
		return nil, NewBusinessError("PROFILE_UPDATE_EMPTY", "At least one field must be provided for update", ErrProfileUpdateEmpty)
	}

	profile.UpdatedAt = utils.UTCNow()
	if err := f.profileRepo.Update(ctx, *profile); err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Failed to update profile", err)
	}

	return &dto.UpdateProfileResponse{
		Message: "Profile updated successfully",
		Profile: ToProfileDTO(*profile),
	}, nil
}

// UpdatePreferences replaces the preference profile wholesale, creating it
// on first declaration.
func (f *ProfileFlowImpl) UpdatePreferences(ctx context.Context, profileID uint, req *dto.UpdatePreferencesRequest, metadata *ClientMetadata) (*dto.UpdatePreferencesResponse, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	if len(req.PreferredPersonality) == 0 {
		return nil, NewBusinessError("PERSONALITY_SET_EMPTY", "Preferred personality set must not be empty", ErrPersonalitySetEmpty)
	}
	if len(req.PreferredInterests) == 0 {
		return nil, NewBusinessError("INTERESTS_SET_EMPTY", "Preferred interests set must not be empty", ErrInterestsSetEmpty)
	}
	if req.AgeMin != nil && req.AgeMax != nil && *req.AgeMin > *req.AgeMax {
		return nil, NewBusinessError("AGE_RANGE_INVERTED", "Age minimum cannot exceed age maximum", ErrAgeRangeInverted)
	}
	if req.HeightMin != nil && req.HeightMax != nil && *req.HeightMin > *req.HeightMax {
		return nil, NewBusinessError("HEIGHT_RANGE_INVERTED", "Height minimum cannot exceed height maximum", ErrHeightRangeInverted)
	}
	for _, p := range req.Priorities {
		if !models.IsValidDimension(p) {
			return nil, NewBusinessErrorf("INVALID_PRIORITY", "Invalid priority dimension: %s", ErrInvalidPriority, p)
		}
	}

	pref, err := f.prefRepo.ByProfileID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PREFERENCE_LOOKUP_FAILED", "Failed to lookup preference profile", err)
	}

	isNew := pref == nil
	if isNew {
		pref = &models.PreferenceProfile{
			ProfileID: profileID,
			CreatedAt: utils.UTCNow(),
		}
	}

	pref.PreferredGender = req.PreferredGender
	pref.AgeMin = req.AgeMin
	pref.AgeMax = req.AgeMax
	pref.HeightMin = req.HeightMin
	pref.HeightMax = req.HeightMax
	pref.PreferredMBTI = req.PreferredMBTI
	pref.PreferredPersonality = req.PreferredPersonality
	pref.PreferredInterests = req.PreferredInterests
	pref.Priority1, pref.Priority2, pref.Priority3 = priorityColumns(req.Priorities)
	if req.MinScore != nil {
		pref.MinScore = *req.MinScore
	} else if isNew {
		pref.MinScore = 50
	}
	pref.UpdatedAt = utils.UTCNow()

	if isNew {
		err = f.prefRepo.Save(ctx, pref)
	} else {
		err = f.prefRepo.Update(ctx, *pref)
	}
	if err != nil {
		return nil, NewBusinessError("PREFERENCE_UPDATE_FAILED", "Failed to update preference profile", err)
	}

	return &dto.UpdatePreferencesResponse{
		Message:    "Preferences updated successfully",
		Preference: ToPreferenceProfileDTO(*pref),
	}, nil
}

// UpdateLocation overwrites the profile's current coordinate. Only the
// latest coordinate is kept.
func (f *ProfileFlowImpl) UpdateLocation(ctx context.Context, profileID uint, req *dto.UpdateLocationRequest, metadata *ClientMetadata) (*dto.UpdateLocationResponse, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	if req.Latitude < utils.LatitudeMin || req.Latitude > utils.LatitudeMax ||
		req.Longitude < utils.LongitudeMin || req.Longitude > utils.LongitudeMax {
		return nil, NewBusinessError("LOCATION_OUT_OF_RANGE", "Coordinates are out of range", ErrLocationOutOfRange)
	}

	loc, err := f.locationRepo.Upsert(ctx, profileID, req.Latitude, req.Longitude)
	if err != nil {
		return nil, NewBusinessError("LOCATION_UPDATE_FAILED", "Failed to update location", err)
	}

	return &dto.UpdateLocationResponse{
		Message:  "Location updated successfully",
		Location: ToLocationDTO(*loc),
	}, nil
}

// UpdateMatchingConsent flips the consent switch and wires the lifecycle
// side effects: revocation tears down every match immediately, re-grant
// eagerly rematches anyone currently within the tight radius. Setting the
// flag to its current value is a silent no-op.
func (f *ProfileFlowImpl) UpdateMatchingConsent(ctx context.Context, profileID uint, req *dto.UpdateConsentRequest, metadata *ClientMetadata) (*dto.UpdateConsentResponse, error) {
	profile, err := f.profileRepo.ByID(ctx, profileID)
	if err != nil {
		return nil, NewBusinessError("PROFILE_LOOKUP_FAILED", "Failed to lookup profile", err)
	}
	if profile == nil {
		return nil, NewBusinessError("PROFILE_NOT_FOUND", "Profile not found", ErrProfileNotFound)
	}

	if utils.IsTrue(profile.MatchingConsent) == req.MatchingConsent {
		return &dto.UpdateConsentResponse{
			Message:         "Matching consent unchanged",
			MatchingConsent: req.MatchingConsent,
		}, nil
	}

	resp := &dto.UpdateConsentResponse{
		Message:         "Matching consent updated successfully",
		MatchingConsent: req.MatchingConsent,
	}

	if !req.MatchingConsent {
		// Flag flip and teardown commit together so no match survives a
		// revocation.
		err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
			if serr := f.profileRepo.SetMatchingConsent(txCtx, profileID, false); serr != nil {
				return NewBusinessError("CONSENT_UPDATE_FAILED", "Failed to update matching consent", serr)
			}
			removed, terr := f.matchFlow.TeardownOnConsentRevoked(txCtx, profileID)
			if terr != nil {
				return terr
			}
			resp.MatchesRemoved = removed
			return nil
		})
		if err != nil {
			return nil, err
		}
		return resp, nil
	}

	if err := f.profileRepo.SetMatchingConsent(ctx, profileID, true); err != nil {
		return nil, NewBusinessError("CONSENT_UPDATE_FAILED", "Failed to update matching consent", err)
	}
	created, err := f.matchFlow.RebuildOnConsentGranted(ctx, profileID)
	if err != nil {
		return nil, err
	}
	resp.MatchesCreated = created
	return resp, nil
}

// priorityColumns spreads an ordered dimension list into the three nullable
// priority columns.
func priorityColumns(priorities []string) (p1, p2, p3 *string) {
	cols := make([]*string, 3)
	for i, p := range priorities {
		if i >= 3 {
			break
		}
		cols[i] = utils.ToPtr(p)
	}
	return cols[0], cols[1], cols[2]
}
