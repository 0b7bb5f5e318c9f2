// Package testing provides test utilities and database setup for testing the matching system
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/utils"
	"github.com/lib/pq"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestProfile creates a matchable profile with sensible defaults. The
// caller can mutate and Save the returned row to tweak individual attributes.
func (tf *TestFixtures) CreateTestProfile(gender string) (*models.Profile, error) {
	mbti := "INFP"
	profile := &models.Profile{
		UUID:            uuid.New(),
		Nickname:        fmt.Sprintf("tester-%04d", rand.Intn(10000)),
		Age:             25 + rand.Intn(10),
		Gender:          gender,
		Height:          165 + rand.Intn(20),
		MBTI:            &mbti,
		Personality:     pq.StringArray{"calm", "curious"},
		Interests:       pq.StringArray{"hiking", "coffee", "movies"},
		MatchingConsent: utils.ToPtr(true),
		ServiceActive:   utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test profile: %w", err)
	}
	return profile, nil
}

// CreateTestPreference creates an ideal-type declaration for the profile that
// accepts any gender and carries non-empty personality and interest sets.
func (tf *TestFixtures) CreateTestPreference(profileID uint) (*models.PreferenceProfile, error) {
	pref := &models.PreferenceProfile{
		ProfileID:            profileID,
		PreferredGender:      utils.ToPtr(models.PreferredGenderAny),
		PreferredMBTI:        pq.StringArray{},
		PreferredPersonality: pq.StringArray{"calm", "curious"},
		PreferredInterests:   pq.StringArray{"hiking", "coffee"},
		Priority1:            utils.ToPtr(models.DimensionPersonality),
		Priority2:            utils.ToPtr(models.DimensionInterests),
		MinScore:             50,
	}

	if err := tf.DB.DB.Create(pref).Error; err != nil {
		return nil, fmt.Errorf("failed to create test preference: %w", err)
	}
	return pref, nil
}

// CreateTestLocation places the profile at the given coordinate.
func (tf *TestFixtures) CreateTestLocation(profileID uint, latitude, longitude float64) (*models.Location, error) {
	location := &models.Location{
		ProfileID: profileID,
		Latitude:  latitude,
		Longitude: longitude,
	}

	if err := tf.DB.DB.Create(location).Error; err != nil {
		return nil, fmt.Errorf("failed to create test location: %w", err)
	}
	return location, nil
}

// CreateMatchablePair creates two mutually compatible profiles placed at the
// given coordinates, each with preferences and consent enabled.
func (tf *TestFixtures) CreateMatchablePair(lat1, lon1, lat2, lon2 float64) (*models.Profile, *models.Profile, error) {
	a, err := tf.CreateTestProfile(models.GenderMale)
	if err != nil {
		return nil, nil, err
	}
	b, err := tf.CreateTestProfile(models.GenderFemale)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tf.CreateTestPreference(a.ID); err != nil {
		return nil, nil, err
	}
	if _, err := tf.CreateTestPreference(b.ID); err != nil {
		return nil, nil, err
	}

	if _, err := tf.CreateTestLocation(a.ID, lat1, lon1); err != nil {
		return nil, nil, err
	}
	if _, err := tf.CreateTestLocation(b.ID, lat2, lon2); err != nil {
		return nil, nil, err
	}

	return a, b, nil
}
