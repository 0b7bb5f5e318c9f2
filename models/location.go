package models

import "time"

// Location is a profile's single current coordinate, overwritten on every
// update. No history is retained. Latitude must be in [-90,90] and longitude
// in [-180,180]; range validation happens at the API boundary.
type Location struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	ProfileID uint     `gorm:"not null;uniqueIndex:uk_locations_profile_id" json:"profile_id"`
	Profile   *Profile `gorm:"foreignKey:ProfileID;references:ID" json:"-"`

	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}

// LocationFilter represents filter criteria for location queries
type LocationFilter struct {
	ID        *uint
	ProfileID *uint
}
