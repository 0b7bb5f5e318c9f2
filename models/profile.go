// Package models contains domain entities and business models for the matching system
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Gender codes stored on profiles and preferences.
const (
	GenderMale   = "M"
	GenderFemale = "F"

	// PreferredGenderAny is only valid on preference profiles.
	PreferredGenderAny = "A"
)

// Profile is a person's declared attributes. ServiceActive and
// MatchingConsent are derived by external completeness/verification checks
// and consumed here as plain booleans.
type Profile struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_profiles_uuid" json:"uuid"`
	Nickname string    `gorm:"size:30;not null" json:"nickname"`

	Age    int    `gorm:"not null" json:"age"`
	Gender string `gorm:"size:1;not null" json:"gender"`
	Height int    `gorm:"not null" json:"height"` // cm

	MBTI        *string        `gorm:"column:mbti;size:4" json:"mbti,omitempty"`
	Personality pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"personality"`
	Interests   pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"interests"`

	MatchingConsent *bool `gorm:"default:false;index:idx_profiles_matching_consent" json:"matching_consent"`
	ServiceActive   *bool `gorm:"default:false;index:idx_profiles_service_active" json:"service_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Preference *PreferenceProfile `gorm:"foreignKey:ProfileID" json:"preference,omitempty"`
	Location   *Location          `gorm:"foreignKey:ProfileID" json:"location,omitempty"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileFilter represents filter criteria for profile queries
type ProfileFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Nickname        *string
	Gender          *string
	MatchingConsent *bool
	ServiceActive   *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

// HasLocation reports whether a current coordinate is loaded for the profile.
func (p *Profile) HasLocation() bool {
	return p.Location != nil
}

// MBTIValue returns the MBTI code or the empty string when unset.
func (p *Profile) MBTIValue() string {
	if p.MBTI == nil {
		return ""
	}
	return *p.MBTI
}
