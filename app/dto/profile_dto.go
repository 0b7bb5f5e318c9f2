package dto

import "time"

// ProfileDTO is the outward representation of a profile.
type ProfileDTO struct {
	ID              uint      `json:"id"`
	UUID            string    `json:"uuid"`
	Nickname        string    `json:"nickname"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	Height          int       `json:"height"`
	MBTI            *string   `json:"mbti,omitempty"`
	Personality     []string  `json:"personality"`
	Interests       []string  `json:"interests"`
	MatchingConsent bool      `json:"matching_consent"`
	ServiceActive   bool      `json:"service_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PreferenceProfileDTO is the outward representation of a preference profile.
type PreferenceProfileDTO struct {
	PreferredGender      *string  `json:"preferred_gender,omitempty"`
	AgeMin               *int     `json:"age_min,omitempty"`
	AgeMax               *int     `json:"age_max,omitempty"`
	HeightMin            *int     `json:"height_min,omitempty"`
	HeightMax            *int     `json:"height_max,omitempty"`
	PreferredMBTI        []string `json:"preferred_mbti"`
	PreferredPersonality []string `json:"preferred_personality"`
	PreferredInterests   []string `json:"preferred_interests"`
	Priorities           []string `json:"priorities"`
	MinScore             float64  `json:"min_score"`
}

// GetProfileResponse wraps a profile lookup.
type GetProfileResponse struct {
	Message    string                `json:"message"`
	Profile    ProfileDTO            `json:"profile"`
	Preference *PreferenceProfileDTO `json:"preference,omitempty"`
	Location   *LocationDTO          `json:"location,omitempty"`
}

// UpdateProfileRequest mutates declared attributes. Pointer fields left nil
// are not touched.
type UpdateProfileRequest struct {
	Nickname    *string  `json:"nickname,omitempty" validate:"omitempty,min=1,max=30"`
	Age         *int     `json:"age,omitempty" validate:"omitempty,gte=18,lte=120"`
	Height      *int     `json:"height,omitempty" validate:"omitempty,gte=100,lte=250"`
	MBTI        *string  `json:"mbti,omitempty" validate:"omitempty,len=4"`
	Personality []string `json:"personality,omitempty" validate:"omitempty,min=1"`
	Interests   []string `json:"interests,omitempty" validate:"omitempty,min=1"`
}

// UpdatePreferencesRequest replaces the preference profile wholesale.
// Personality and interests preference sets must be non-empty; the MBTI set
// may be empty to opt out of MBTI scoring.
type UpdatePreferencesRequest struct {
	PreferredGender      *string  `json:"preferred_gender,omitempty" validate:"omitempty,oneof=M F A"`
	AgeMin               *int     `json:"age_min,omitempty" validate:"omitempty,gte=18"`
	AgeMax               *int     `json:"age_max,omitempty" validate:"omitempty,gte=18"`
	HeightMin            *int     `json:"height_min,omitempty" validate:"omitempty,gte=100"`
	HeightMax            *int     `json:"height_max,omitempty" validate:"omitempty,lte=250"`
	PreferredMBTI        []string `json:"preferred_mbti"`
	PreferredPersonality []string `json:"preferred_personality" validate:"required,min=1"`
	PreferredInterests   []string `json:"preferred_interests" validate:"required,min=1"`
	Priorities           []string `json:"priorities" validate:"omitempty,max=3,unique"`
	MinScore             *float64 `json:"min_score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateProfileResponse wraps the profile after a mutation.
type UpdateProfileResponse struct {
	Message string     `json:"message"`
	Profile ProfileDTO `json:"profile"`
}

// UpdatePreferencesResponse wraps the preference profile after replacement.
type UpdatePreferencesResponse struct {
	Message    string               `json:"message"`
	Preference PreferenceProfileDTO `json:"preference"`
}

// LocationDTO is a profile's current coordinate.
type LocationDTO struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateLocationRequest overwrites the current coordinate.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// UpdateLocationResponse wraps the coordinate after an overwrite.
type UpdateLocationResponse struct {
	Message  string      `json:"message"`
	Location LocationDTO `json:"location"`
}

// UpdateConsentRequest flips matching consent.
type UpdateConsentRequest struct {
	MatchingConsent bool `json:"matching_consent"`
}

// UpdateConsentResponse reports the lifecycle side effects of a consent
// change: matches torn down on revocation, matches eagerly created on
// re-grant.
type UpdateConsentResponse struct {
	Message         string `json:"message"`
	MatchingConsent bool   `json:"matching_consent"`
	MatchesRemoved  int64  `json:"matches_removed"`
	MatchesCreated  int    `json:"matches_created"`
}
