// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/gun9212/idealmatch-backend/app/dto"
	"github.com/gun9212/idealmatch-backend/matching"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for logging and tracing
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToProfileDTO converts a profile model to its outward representation
func ToProfileDTO(profile models.Profile) dto.ProfileDTO {
	return dto.ProfileDTO{
		ID:              profile.ID,
		UUID:            profile.UUID.String(),
		Nickname:        profile.Nickname,
		Age:             profile.Age,
		Gender:          profile.Gender,
		Height:          profile.Height,
		MBTI:            profile.MBTI,
		Personality:     profile.Personality,
		Interests:       profile.Interests,
		MatchingConsent: utils.IsTrue(profile.MatchingConsent),
		ServiceActive:   utils.IsTrue(profile.ServiceActive),
		CreatedAt:       profile.CreatedAt,
		UpdatedAt:       profile.UpdatedAt,
	}
}

// ToPreferenceProfileDTO converts a preference profile model to its outward representation
func ToPreferenceProfileDTO(pref models.PreferenceProfile) dto.PreferenceProfileDTO {
	return dto.PreferenceProfileDTO{
		PreferredGender:      pref.PreferredGender,
		AgeMin:               pref.AgeMin,
		AgeMax:               pref.AgeMax,
		HeightMin:            pref.HeightMin,
		HeightMax:            pref.HeightMax,
		PreferredMBTI:        pref.PreferredMBTI,
		PreferredPersonality: pref.PreferredPersonality,
		PreferredInterests:   pref.PreferredInterests,
		Priorities:           pref.Priorities(),
		MinScore:             pref.MinScore,
	}
}

// ToLocationDTO converts a location model to its outward representation
func ToLocationDTO(loc models.Location) dto.LocationDTO {
	return dto.LocationDTO{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UpdatedAt: loc.UpdatedAt,
	}
}

// ToMatchDTO converts a stored match to the requesting profile's view of it.
// The distance and score are read from the criteria snapshot taken at match
// creation; they are never recomputed.
func ToMatchDTO(match models.Match, viewerID uint, otherNickname string) dto.MatchDTO {
	criteria := match.CriteriaSnapshot()
	return dto.MatchDTO{
		UUID:           match.UUID.String(),
		OtherProfileID: match.OtherProfileID(viewerID),
		OtherNickname:  otherNickname,
		DistanceM:      criteria.DistanceM,
		Score:          criteria.Score,
		MatchedAt:      match.MatchedAt,
	}
}

// toMatchingPreferences projects a preference profile into the scoring
// engine's input type.
func toMatchingPreferences(pref *models.PreferenceProfile) matching.Preferences {
	if pref == nil {
		return matching.Preferences{}
	}
	priorities := make([]matching.Dimension, 0, 3)
	for _, p := range pref.Priorities() {
		priorities = append(priorities, matching.Dimension(p))
	}
	return matching.Preferences{
		PreferredGender:      pref.PreferredGender,
		AgeMin:               pref.AgeMin,
		AgeMax:               pref.AgeMax,
		HeightMin:            pref.HeightMin,
		HeightMax:            pref.HeightMax,
		PreferredMBTI:        pref.PreferredMBTI,
		PreferredPersonality: pref.PreferredPersonality,
		PreferredInterests:   pref.PreferredInterests,
		Priorities:           priorities,
	}
}

// toMatchingCandidate projects a profile into the scoring engine's input type.
func toMatchingCandidate(profile models.Profile) matching.Candidate {
	return matching.Candidate{
		Gender:      matching.Gender(profile.Gender),
		Age:         profile.Age,
		Height:      profile.Height,
		MBTI:        profile.MBTIValue(),
		Personality: profile.Personality,
		Interests:   profile.Interests,
	}
}
