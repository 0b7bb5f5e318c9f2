package dto

import "time"

// CandidateDTO is one scored entry in a candidate listing. Entries are
// ordered by descending score, then ascending distance.
type CandidateDTO struct {
	ProfileID   uint     `json:"profile_id"`
	UUID        string   `json:"uuid"`
	Nickname    string   `json:"nickname"`
	Age         int      `json:"age"`
	Gender      string   `json:"gender"`
	Height      int      `json:"height"`
	MBTI        *string  `json:"mbti,omitempty"`
	Personality []string `json:"personality"`
	Interests   []string `json:"interests"`
	DistanceM   float64  `json:"distance_m"`
	Score       float64  `json:"score"`
}

// FindCandidatesRequest scopes a candidate scan. RadiusKm defaults to the
// standard proximity radius when omitted.
type FindCandidatesRequest struct {
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=100"`
	Limit     *int     `json:"limit,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// FindCandidatesResponse lists scored candidates around a coordinate.
type FindCandidatesResponse struct {
	Message    string         `json:"message"`
	RadiusKm   float64        `json:"radius_km"`
	Total      int            `json:"total"`
	Candidates []CandidateDTO `json:"candidates"`
}

// MatchableCountRequest scopes the nearby-count to a coordinate. RadiusKm
// defaults to the standard proximity radius when omitted.
type MatchableCountRequest struct {
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// MatchableCountResponse reports how many matchable profiles are currently
// within the radius of the requested coordinate. Cached indicates the figure
// was served from cache.
type MatchableCountResponse struct {
	Message  string  `json:"message"`
	RadiusKm float64 `json:"radius_km"`
	Count    int64   `json:"count"`
	Cached   bool    `json:"cached"`
}

// MatchDTO is the outward representation of a stored match, always from
// the requesting profile's point of view.
type MatchDTO struct {
	UUID           string    `json:"uuid"`
	OtherProfileID uint      `json:"other_profile_id"`
	OtherNickname  string    `json:"other_nickname,omitempty"`
	DistanceM      float64   `json:"distance_m"`
	Score          float64   `json:"score"`
	MatchedAt      time.Time `json:"matched_at"`
}

// ReconcileRequest drives an on-demand reconcile sweep for one profile at
// the given coordinate. RadiusKm defaults to the standard proximity radius.
type ReconcileRequest struct {
	ProfileID uint     `json:"profile_id" validate:"required"`
	Latitude  float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64  `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKm  *float64 `json:"radius_km,omitempty" validate:"omitempty,gt=0,lte=100"`
}

// ReconcileResponse reports a reconcile sweep's outcome: matches created for
// newly-in-range candidates and matches removed by drift expiry.
type ReconcileResponse struct {
	Message string     `json:"message"`
	Created []MatchDTO `json:"created"`
	Removed []MatchDTO `json:"removed"`
}

// NewMatchesResponse reports matches created strictly after the given instant.
type NewMatchesResponse struct {
	Message         string     `json:"message"`
	Since           time.Time  `json:"since"`
	HasNewMatch     bool       `json:"has_new_match"`
	NewMatchesCount int        `json:"new_matches_count"`
	LatestMatch     *MatchDTO  `json:"latest_match,omitempty"`
	Matches         []MatchDTO `json:"matches"`
}

// ListMatchesResponse lists all current matches for a profile.
type ListMatchesResponse struct {
	Message string     `json:"message"`
	Total   int        `json:"total"`
	Matches []MatchDTO `json:"matches"`
}
