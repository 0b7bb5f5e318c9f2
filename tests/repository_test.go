// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/repository"
	testingutil "github.com/gun9212/idealmatch-backend/testing"
	"github.com/gun9212/idealmatch-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByID", func(t *testing.T) {
			created, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			profile, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, created.ID, profile.ID)
			assert.Equal(t, created.Nickname, profile.Nickname)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			profile, err := repo.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, profile)
		})

		t.Run("ByUUID", func(t *testing.T) {
			created, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			profile, err := repo.ByUUID(ctx, created.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, profile)
			assert.Equal(t, created.ID, profile.ID)
		})

		t.Run("Update", func(t *testing.T) {
			created, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			created.Nickname = "renamed"
			created.Age = 31
			require.NoError(t, repo.Update(ctx, *created))

			reloaded, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "renamed", reloaded.Nickname)
			assert.Equal(t, 31, reloaded.Age)
		})

		t.Run("SetMatchingConsent", func(t *testing.T) {
			created, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			assert.True(t, utils.IsTrue(created.MatchingConsent))

			require.NoError(t, repo.SetMatchingConsent(ctx, created.ID, false))

			reloaded, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(reloaded.MatchingConsent))
		})

		t.Run("SetServiceActive", func(t *testing.T) {
			created, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			require.NoError(t, repo.SetServiceActive(ctx, created.ID, false))

			reloaded, err := repo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(reloaded.ServiceActive))
		})

		t.Run("CountMatchable", func(t *testing.T) {
			count, err := repo.Count(ctx, models.ProfileFilter{
				MatchingConsent: utils.ToPtr(true),
				ServiceActive:   utils.ToPtr(true),
			})
			require.NoError(t, err)
			assert.Positive(t, count)
		})

		t.Run("ListMatchable", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			noLocation, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			_, err = fixtures.CreateTestLocation(a.ID, 37.5665, 126.9780)
			require.NoError(t, err)
			_, err = fixtures.CreateTestLocation(b.ID, 37.5666, 126.9781)
			require.NoError(t, err)

			matchable, err := repo.ListMatchable(ctx, a.ID)
			require.NoError(t, err)
			require.Len(t, matchable, 1)
			assert.Equal(t, b.ID, matchable[0].ID)
			require.NotNil(t, matchable[0].Location)
			assert.InDelta(t, 37.5666, matchable[0].Location.Latitude, 1e-9)

			// The observer itself and profiles without a location are excluded.
			for _, p := range matchable {
				assert.NotEqual(t, a.ID, p.ID)
				assert.NotEqual(t, noLocation.ID, p.ID)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPreferenceProfileRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPreferenceProfileRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByProfileID", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			created, err := fixtures.CreateTestPreference(profile.ID)
			require.NoError(t, err)

			pref, err := repo.ByProfileID(ctx, profile.ID)
			require.NoError(t, err)
			require.NotNil(t, pref)
			assert.Equal(t, created.ID, pref.ID)
			assert.Equal(t, []string{models.DimensionPersonality, models.DimensionInterests}, pref.Priorities())
		})

		t.Run("ByProfileIDNotFound", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			pref, err := repo.ByProfileID(ctx, profile.ID)
			assert.NoError(t, err)
			assert.Nil(t, pref)
		})

		t.Run("Update", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			pref, err := fixtures.CreateTestPreference(profile.ID)
			require.NoError(t, err)

			pref.MinScore = 80
			pref.AgeMin = utils.ToPtr(25)
			pref.AgeMax = utils.ToPtr(35)
			require.NoError(t, repo.Update(ctx, *pref))

			reloaded, err := repo.ByProfileID(ctx, profile.ID)
			require.NoError(t, err)
			assert.InDelta(t, 80, reloaded.MinScore, 1e-9)
			require.NotNil(t, reloaded.AgeMin)
			assert.Equal(t, 25, *reloaded.AgeMin)
		})

		t.Run("OnePerProfile", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPreference(profile.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestPreference(profile.ID)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLocationRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLocationRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("UpsertCreatesThenOverwrites", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)

			first, err := repo.Upsert(ctx, profile.ID, 37.5665, 126.9780)
			require.NoError(t, err)
			require.NotNil(t, first)

			second, err := repo.Upsert(ctx, profile.ID, 35.1796, 129.0756)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.InDelta(t, 35.1796, second.Latitude, 1e-9)

			// Only one row per profile; no history.
			count, err := repo.Count(ctx, models.LocationFilter{ProfileID: &profile.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("ByProfileIDNotFound", func(t *testing.T) {
			profile, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			loc, err := repo.ByProfileID(ctx, profile.ID)
			assert.NoError(t, err)
			assert.Nil(t, loc)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestMatchRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewMatchRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		newMatch := func(t *testing.T, p1, p2 uint) *models.Match {
			t.Helper()
			a, b := models.CanonicalPair(p1, p2)
			m := &models.Match{
				UUID:       uuid.New(),
				Profile1ID: a,
				Profile2ID: b,
				MatchedAt:  utils.UTCNow(),
			}
			require.NoError(t, repo.Save(ctx, m))
			return m
		}

		t.Run("ByPairIgnoresArgumentOrder", func(t *testing.T) {
			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			created := newMatch(t, b.ID, a.ID)

			found, err := repo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, created.ID, found.ID)

			flipped, err := repo.ByPair(ctx, b.ID, a.ID)
			require.NoError(t, err)
			require.NotNil(t, flipped)
			assert.Equal(t, created.ID, flipped.ID)
		})

		t.Run("AtMostOnePerPair", func(t *testing.T) {
			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			newMatch(t, a.ID, b.ID)

			p1, p2 := models.CanonicalPair(a.ID, b.ID)
			dup := &models.Match{
				UUID:       uuid.New(),
				Profile1ID: p1,
				Profile2ID: p2,
				MatchedAt:  utils.UTCNow(),
			}
			err = repo.Save(ctx, dup)
			require.Error(t, err)
			assert.True(t, repository.IsDuplicateKey(err))
		})

		t.Run("ListForProfileSince", func(t *testing.T) {
			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			newMatch(t, a.ID, b.ID)

			recent, err := repo.ListForProfileSince(ctx, a.ID, utils.UTCNow().Add(-time.Minute))
			require.NoError(t, err)
			assert.Len(t, recent, 1)

			none, err := repo.ListForProfileSince(ctx, a.ID, utils.UTCNow().Add(time.Minute))
			require.NoError(t, err)
			assert.Empty(t, none)
		})

		t.Run("DeleteAllForProfile", func(t *testing.T) {
			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			c, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			newMatch(t, a.ID, b.ID)
			newMatch(t, a.ID, c.ID)
			survivor := newMatch(t, b.ID, c.ID)

			removed, err := repo.DeleteAllForProfile(ctx, a.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), removed)

			remaining, err := repo.ListForProfile(ctx, b.ID)
			require.NoError(t, err)
			require.Len(t, remaining, 1)
			assert.Equal(t, survivor.ID, remaining[0].ID)
		})

		t.Run("DeleteIsIdempotent", func(t *testing.T) {
			a, err := fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			b, err := fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			m := newMatch(t, a.ID, b.ID)

			require.NoError(t, repo.Delete(ctx, m.ID))
			require.NoError(t, repo.Delete(ctx, m.ID))
		})

		return nil
	})
	require.NoError(t, err)
}
