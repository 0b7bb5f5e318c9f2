// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"

	"github.com/gun9212/idealmatch-backend/app/dto"
	businessflow "github.com/gun9212/idealmatch-backend/business_flow"
	"github.com/gun9212/idealmatch-backend/models"
	testingutil "github.com/gun9212/idealmatch-backend/testing"
	"github.com/gun9212/idealmatch-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPreferencesRequest() *dto.UpdatePreferencesRequest {
	return &dto.UpdatePreferencesRequest{
		PreferredGender:      utils.ToPtr(models.PreferredGenderAny),
		PreferredMBTI:        []string{"INFP"},
		PreferredPersonality: []string{"calm"},
		PreferredInterests:   []string{"hiking"},
		Priorities:           []string{models.DimensionMBTI, models.DimensionPersonality, models.DimensionInterests},
		MinScore:             utils.ToPtr(60.0),
	}
}

func TestProfileFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("GetProfileComposesPreferenceAndLocation", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			_, err = env.fixtures.CreateTestPreference(profile.ID)
			require.NoError(t, err)
			_, err = env.fixtures.CreateTestLocation(profile.ID, baseLat, baseLon)
			require.NoError(t, err)

			res, err := env.profileFlow.GetProfile(ctx, profile.ID)
			require.NoError(t, err)
			assert.Equal(t, profile.Nickname, res.Profile.Nickname)
			require.NotNil(t, res.Preference)
			assert.Equal(t, []string{models.DimensionPersonality, models.DimensionInterests}, res.Preference.Priorities)
			require.NotNil(t, res.Location)
			assert.InDelta(t, baseLat, res.Location.Latitude, 1e-9)
		})

		t.Run("GetProfileWithoutExtrasLeavesThemNil", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			res, err := env.profileFlow.GetProfile(ctx, profile.ID)
			require.NoError(t, err)
			assert.Nil(t, res.Preference)
			assert.Nil(t, res.Location)
		})

		t.Run("UpdateProfileAppliesOnlyProvidedFields", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			originalAge := profile.Age

			res, err := env.profileFlow.UpdateProfile(ctx, profile.ID, &dto.UpdateProfileRequest{
				Nickname: utils.ToPtr("updated"),
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "updated", res.Profile.Nickname)
			assert.Equal(t, originalAge, res.Profile.Age)
		})

		t.Run("UpdateProfileRejectsEmptyRequest", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			_, err = env.profileFlow.UpdateProfile(ctx, profile.ID, &dto.UpdateProfileRequest{}, nil)
			assert.True(t, businessflow.IsProfileUpdateEmpty(err))
		})

		t.Run("UpdateLocationRejectsOutOfRange", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			_, err = env.profileFlow.UpdateLocation(ctx, profile.ID, &dto.UpdateLocationRequest{
				Latitude:  91,
				Longitude: baseLon,
			}, nil)
			assert.True(t, businessflow.IsLocationOutOfRange(err))
		})

		t.Run("UpdateLocationOverwrites", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			_, err = env.profileFlow.UpdateLocation(ctx, profile.ID, &dto.UpdateLocationRequest{Latitude: baseLat, Longitude: baseLon}, nil)
			require.NoError(t, err)
			res, err := env.profileFlow.UpdateLocation(ctx, profile.ID, &dto.UpdateLocationRequest{Latitude: 35.1796, Longitude: 129.0756}, nil)
			require.NoError(t, err)
			assert.InDelta(t, 35.1796, res.Location.Latitude, 1e-9)
		})

		t.Run("UnknownProfile", func(t *testing.T) {
			_, err := env.profileFlow.GetProfile(ctx, 999999)
			assert.True(t, businessflow.IsProfileNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdatePreferences(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CreatesOnFirstDeclaration", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			res, err := env.profileFlow.UpdatePreferences(ctx, profile.ID, validPreferencesRequest(), nil)
			require.NoError(t, err)
			assert.InDelta(t, 60, res.Preference.MinScore, 1e-9)
			assert.Equal(t, []string{models.DimensionMBTI, models.DimensionPersonality, models.DimensionInterests}, res.Preference.Priorities)
		})

		t.Run("ReplacesWholesale", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, validPreferencesRequest(), nil)
			require.NoError(t, err)

			replacement := validPreferencesRequest()
			replacement.PreferredMBTI = nil
			replacement.Priorities = []string{models.DimensionInterests}
			replacement.AgeMin, replacement.AgeMax = utils.ToPtr(25), utils.ToPtr(35)
			res, err := env.profileFlow.UpdatePreferences(ctx, profile.ID, replacement, nil)
			require.NoError(t, err)
			assert.Empty(t, res.Preference.PreferredMBTI)
			assert.Equal(t, []string{models.DimensionInterests}, res.Preference.Priorities)
			require.NotNil(t, res.Preference.AgeMin)
			assert.Equal(t, 25, *res.Preference.AgeMin)
		})

		t.Run("EmptyPersonalitySet", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			req := validPreferencesRequest()
			req.PreferredPersonality = nil
			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, req, nil)
			assert.True(t, businessflow.IsPersonalitySetEmpty(err))
		})

		t.Run("EmptyInterestsSet", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			req := validPreferencesRequest()
			req.PreferredInterests = []string{}
			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, req, nil)
			assert.True(t, businessflow.IsInterestsSetEmpty(err))
		})

		t.Run("InvertedAgeRange", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			req := validPreferencesRequest()
			req.AgeMin, req.AgeMax = utils.ToPtr(40), utils.ToPtr(30)
			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, req, nil)
			assert.True(t, businessflow.IsAgeRangeInverted(err))
		})

		t.Run("InvertedHeightRange", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			req := validPreferencesRequest()
			req.HeightMin, req.HeightMax = utils.ToPtr(180), utils.ToPtr(170)
			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, req, nil)
			assert.True(t, businessflow.IsHeightRangeInverted(err))
		})

		t.Run("InvalidPriorityDimension", func(t *testing.T) {
			profile, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			req := validPreferencesRequest()
			req.Priorities = []string{"astrology"}
			_, err = env.profileFlow.UpdatePreferences(ctx, profile.ID, req, nil)
			assert.True(t, businessflow.IsInvalidPriority(err))
		})

		return nil
	})
	require.NoError(t, err)
}
