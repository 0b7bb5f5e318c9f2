package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Match records that two profiles were matched, with each party's coordinate
// and the scoring criteria captured at match time. The snapshot is never
// recomputed while the match lives; it is only replaced if the pair
// unmatches and later rematches.
//
// Pairs are stored in canonical order (Profile1ID < Profile2ID) so the
// unique index on the pair enforces at most one row per unordered pair.
type Match struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_matches_uuid" json:"uuid"`

	Profile1ID uint     `gorm:"not null;uniqueIndex:uk_matches_pair,priority:1;index:idx_matches_profile1" json:"profile1_id"`
	Profile2ID uint     `gorm:"not null;uniqueIndex:uk_matches_pair,priority:2;index:idx_matches_profile2" json:"profile2_id"`
	Profile1   *Profile `gorm:"foreignKey:Profile1ID;references:ID" json:"profile1,omitempty"`
	Profile2   *Profile `gorm:"foreignKey:Profile2ID;references:ID" json:"profile2,omitempty"`

	// Coordinates of each party at match-creation time.
	Profile1Latitude  float64 `gorm:"not null" json:"profile1_latitude"`
	Profile1Longitude float64 `gorm:"not null" json:"profile1_longitude"`
	Profile2Latitude  float64 `gorm:"not null" json:"profile2_latitude"`
	Profile2Longitude float64 `gorm:"not null" json:"profile2_longitude"`

	MatchedAt time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_matches_matched_at" json:"matched_at"`
	Criteria  json.RawMessage `gorm:"type:jsonb" json:"criteria,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

// MatchCriteria is the snapshot stored in the Criteria blob.
type MatchCriteria struct {
	DistanceM float64 `json:"distance_m"`
	Score     float64 `json:"score"`
}

// CriteriaSnapshot decodes the stored criteria blob. A missing or malformed
// blob yields the zero snapshot.
func (m *Match) CriteriaSnapshot() MatchCriteria {
	var criteria MatchCriteria
	if len(m.Criteria) > 0 {
		_ = json.Unmarshal(m.Criteria, &criteria)
	}
	return criteria
}

// MatchFilter represents filter criteria for match queries
type MatchFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Profile1ID    *uint
	Profile2ID    *uint
	MatchedAfter  *time.Time
	MatchedBefore *time.Time
}

// CanonicalPair orders two profile IDs so the smaller becomes Profile1ID.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// Involves reports whether the match references the given profile.
func (m *Match) Involves(profileID uint) bool {
	return m.Profile1ID == profileID || m.Profile2ID == profileID
}

// OtherProfileID returns the counterpart of profileID in the pair. It
// returns 0 when profileID is not part of the match.
func (m *Match) OtherProfileID(profileID uint) uint {
	switch profileID {
	case m.Profile1ID:
		return m.Profile2ID
	case m.Profile2ID:
		return m.Profile1ID
	}
	return 0
}
