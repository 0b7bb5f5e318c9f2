package models

import (
	"time"

	"github.com/lib/pq"
)

// Scoring dimension names stored in the priority columns.
const (
	DimensionMBTI        = "mbti"
	DimensionPersonality = "personality"
	DimensionInterests   = "interests"
)

// PreferenceProfile holds a profile's declared ideal-type conditions,
// 1:1 with Profile. Personality and interests preference sets must be
// non-empty when the profile exists; the MBTI set may be empty, which opts
// the profile out of MBTI scoring.
type PreferenceProfile struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProfileID uint     `gorm:"not null;uniqueIndex:uk_preference_profiles_profile_id" json:"profile_id"`
	Profile   *Profile `gorm:"foreignKey:ProfileID;references:ID" json:"-"`

	// PreferredGender is M, F or A (any). Profiles created before the field
	// existed carry NULL and rely on the heterosexual fallback in the scorer.
	PreferredGender *string `gorm:"size:1" json:"preferred_gender,omitempty"`

	AgeMin    *int `json:"age_min,omitempty"`
	AgeMax    *int `json:"age_max,omitempty"`
	HeightMin *int `json:"height_min,omitempty"`
	HeightMax *int `json:"height_max,omitempty"`

	PreferredMBTI        pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"preferred_mbti"`
	PreferredPersonality pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"preferred_personality"`
	PreferredInterests   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"preferred_interests"`

	// Priority columns rank up to three scoring dimensions; position 1 is
	// weighted heaviest. Duplicates are rejected at the flow boundary.
	Priority1 *string `gorm:"size:16" json:"priority_1,omitempty"`
	Priority2 *string `gorm:"size:16" json:"priority_2,omitempty"`
	Priority3 *string `gorm:"size:16" json:"priority_3,omitempty"`

	// MinScore is the eligibility threshold for this profile's candidate
	// searches, on the 0-100 weighted scale.
	MinScore float64 `gorm:"not null;default:50" json:"min_score"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (PreferenceProfile) TableName() string {
	return "preference_profiles"
}

// PreferenceProfileFilter represents filter criteria for preference queries
type PreferenceProfileFilter struct {
	ID        *uint
	ProfileID *uint
}

// Priorities flattens the three nullable priority columns into an ordered,
// duplicate-free dimension list.
func (p *PreferenceProfile) Priorities() []string {
	out := make([]string, 0, 3)
	seen := make(map[string]struct{}, 3)
	for _, col := range []*string{p.Priority1, p.Priority2, p.Priority3} {
		if col == nil || *col == "" {
			continue
		}
		if _, dup := seen[*col]; dup {
			continue
		}
		seen[*col] = struct{}{}
		out = append(out, *col)
	}
	return out
}

// IsValidDimension reports whether name is a known scoring dimension.
func IsValidDimension(name string) bool {
	switch name {
	case DimensionMBTI, DimensionPersonality, DimensionInterests:
		return true
	}
	return false
}
