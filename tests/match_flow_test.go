// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/gun9212/idealmatch-backend/app/dto"
	businessflow "github.com/gun9212/idealmatch-backend/business_flow"
	"github.com/gun9212/idealmatch-backend/config"
	"github.com/gun9212/idealmatch-backend/models"
	"github.com/gun9212/idealmatch-backend/repository"
	testingutil "github.com/gun9212/idealmatch-backend/testing"
	"github.com/gun9212/idealmatch-backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Base coordinate in central Seoul; deltas below stay well inside or outside
// the 500 m default radius.
const (
	baseLat = 37.5665
	baseLon = 126.9780

	// ~14 m northeast of base.
	nearLat = 37.5666
	nearLon = 126.9781

	// ~1 km north of base.
	farLat = 37.5755
	farLon = 126.9780
)

func testMatchingConfig() *config.MatchingConfig {
	return &config.MatchingConfig{
		DefaultRadiusKm: 0.5,
		TightRadiusKm:   0.01,
		MinScore:        50,
		MaxCandidates:   50,
	}
}

type flowEnv struct {
	profileRepo   repository.ProfileRepository
	matchRepo     repository.MatchRepository
	matchFlow     businessflow.MatchFlow
	profileFlow   businessflow.ProfileFlow
	candidateFlow businessflow.CandidateFlow
	fixtures      *testingutil.TestFixtures
}

func newFlowEnv(testDB *testingutil.TestDB) *flowEnv {
	profileRepo := repository.NewProfileRepository(testDB.DB)
	prefRepo := repository.NewPreferenceProfileRepository(testDB.DB)
	locationRepo := repository.NewLocationRepository(testDB.DB)
	matchRepo := repository.NewMatchRepository(testDB.DB)

	matchingCfg := testMatchingConfig()
	matchFlow := businessflow.NewMatchFlow(profileRepo, prefRepo, locationRepo, matchRepo, matchingCfg, testDB.DB)

	return &flowEnv{
		profileRepo:   profileRepo,
		matchRepo:     matchRepo,
		matchFlow:     matchFlow,
		profileFlow:   businessflow.NewProfileFlow(profileRepo, prefRepo, locationRepo, matchFlow, testDB.DB),
		candidateFlow: businessflow.NewCandidateFlow(profileRepo, prefRepo, matchingCfg, &config.CacheConfig{RedisPrefix: "test"}, nil),
		fixtures:      testingutil.NewTestFixtures(testDB),
	}
}

func reconcileAt(env *flowEnv, profileID uint, lat, lon float64) (*dto.ReconcileResponse, error) {
	return env.matchFlow.ReconcileMatches(testingutil.CreateTestContext(), profileID, &dto.ReconcileRequest{
		ProfileID: profileID,
		Latitude:  lat,
		Longitude: lon,
	}, nil)
}

func TestFindCandidates(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		a, b, err := env.fixtures.CreateMatchablePair(baseLat, baseLon, nearLat, nearLon)
		require.NoError(t, err)

		t.Run("RanksNearbyCompatibleProfile", func(t *testing.T) {
			res, err := env.candidateFlow.FindCandidates(ctx, a.ID, &dto.FindCandidatesRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
			}, nil)
			require.NoError(t, err)
			require.Equal(t, 1, res.Total)

			cand := res.Candidates[0]
			assert.Equal(t, b.ID, cand.ProfileID)
			assert.Less(t, cand.DistanceM, 20.0)
			// Personality exact overlap at weight 50, interests 2-of-3 at
			// weight 30 with F1 0.8.
			assert.InDelta(t, 74, cand.Score, 1e-9)
		})

		t.Run("RadiusExcludesFarProfiles", func(t *testing.T) {
			res, err := env.candidateFlow.FindCandidates(ctx, a.ID, &dto.FindCandidatesRequest{
				Latitude:  farLat,
				Longitude: farLon,
			}, nil)
			require.NoError(t, err)
			assert.Zero(t, res.Total)
		})

		t.Run("NoPreferenceYieldsEmptyListNotError", func(t *testing.T) {
			bare, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)

			res, err := env.candidateFlow.FindCandidates(ctx, bare.ID, &dto.FindCandidatesRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
			}, nil)
			require.NoError(t, err)
			assert.Zero(t, res.Total)
			assert.Empty(t, res.Candidates)
		})

		t.Run("UnknownProfile", func(t *testing.T) {
			_, err := env.candidateFlow.FindCandidates(ctx, 999999, &dto.FindCandidatesRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
			}, nil)
			assert.True(t, businessflow.IsProfileNotFound(err))
		})

		t.Run("InvalidRadius", func(t *testing.T) {
			_, err := env.candidateFlow.FindCandidates(ctx, a.ID, &dto.FindCandidatesRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
				RadiusKm:  utils.ToPtr(-1.0),
			}, nil)
			assert.True(t, businessflow.IsInvalidRadius(err))
		})

		t.Run("MatchableCountIsLocationScoped", func(t *testing.T) {
			res, err := env.candidateFlow.MatchableCount(ctx, a.ID, &dto.MatchableCountRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Count)
			assert.InDelta(t, 0.5, res.RadiusKm, 1e-9)
			assert.False(t, res.Cached)

			// Shrinking the radius below the pair distance empties the count.
			tight, err := env.candidateFlow.MatchableCount(ctx, a.ID, &dto.MatchableCountRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
				RadiusKm:  utils.ToPtr(0.005),
			})
			require.NoError(t, err)
			assert.Zero(t, tight.Count)
		})

		t.Run("MatchableCountRequiresConsent", func(t *testing.T) {
			revoked, err := env.fixtures.CreateTestProfile(models.GenderMale)
			require.NoError(t, err)
			require.NoError(t, env.profileRepo.SetMatchingConsent(ctx, revoked.ID, false))

			_, err = env.candidateFlow.MatchableCount(ctx, revoked.ID, &dto.MatchableCountRequest{
				Latitude:  baseLat,
				Longitude: baseLon,
			})
			assert.True(t, businessflow.IsMatchingConsentOff(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestReconcileMatches(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		a, b, err := env.fixtures.CreateMatchablePair(baseLat, baseLon, nearLat, nearLon)
		require.NoError(t, err)

		t.Run("CreatesMatchForInRangePair", func(t *testing.T) {
			res, err := reconcileAt(env, a.ID, baseLat, baseLon)
			require.NoError(t, err)
			require.Len(t, res.Created, 1)
			assert.Empty(t, res.Removed)

			created := res.Created[0]
			assert.Equal(t, b.ID, created.OtherProfileID)
			assert.Equal(t, b.Nickname, created.OtherNickname)
			assert.InDelta(t, 74, created.Score, 1e-9)
			assert.Less(t, created.DistanceM, 20.0)

			match, err := env.matchRepo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			require.NotNil(t, match)
			assert.Less(t, match.Profile1ID, match.Profile2ID)
		})

		t.Run("SecondPassIsIdempotent", func(t *testing.T) {
			res, err := reconcileAt(env, a.ID, baseLat, baseLon)
			require.NoError(t, err)
			assert.Empty(t, res.Created)
			assert.Empty(t, res.Removed)
		})

		t.Run("SnapshotIsNotRescored", func(t *testing.T) {
			before, err := env.matchRepo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			snapBefore := before.CriteriaSnapshot()

			// Move slightly within the radius and reconcile again.
			_, err = reconcileAt(env, a.ID, baseLat+0.0001, baseLon)
			require.NoError(t, err)

			after, err := env.matchRepo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.Equal(t, snapBefore, after.CriteriaSnapshot())
		})

		t.Run("DriftBeyondRadiusRemovesMatch", func(t *testing.T) {
			res, err := reconcileAt(env, a.ID, farLat, farLon)
			require.NoError(t, err)
			assert.Empty(t, res.Created)
			require.Len(t, res.Removed, 1)
			assert.Equal(t, b.ID, res.Removed[0].OtherProfileID)

			match, err := env.matchRepo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.Nil(t, match)
		})

		t.Run("ReturningRematches", func(t *testing.T) {
			res, err := reconcileAt(env, a.ID, baseLat, baseLon)
			require.NoError(t, err)
			assert.Len(t, res.Created, 1)
		})

		t.Run("ConsentOffRejectsReconcile", func(t *testing.T) {
			revoked, err := env.fixtures.CreateTestProfile(models.GenderFemale)
			require.NoError(t, err)
			require.NoError(t, env.profileRepo.SetMatchingConsent(ctx, revoked.ID, false))

			_, err = reconcileAt(env, revoked.ID, baseLat, baseLon)
			assert.True(t, businessflow.IsMatchingConsentOff(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestConsentLifecycle(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		// ~6 m apart, inside the 10 m tight radius used on re-grant.
		a, b, err := env.fixtures.CreateMatchablePair(baseLat, baseLon, baseLat+0.00005, baseLon)
		require.NoError(t, err)

		res, err := reconcileAt(env, a.ID, baseLat, baseLon)
		require.NoError(t, err)
		require.Len(t, res.Created, 1)

		t.Run("SameStateIsSilentNoOp", func(t *testing.T) {
			res, err := env.profileFlow.UpdateMatchingConsent(ctx, a.ID, &dto.UpdateConsentRequest{MatchingConsent: true}, nil)
			require.NoError(t, err)
			assert.Zero(t, res.MatchesRemoved)
			assert.Zero(t, res.MatchesCreated)

			matches, err := env.matchRepo.ListForProfile(ctx, a.ID)
			require.NoError(t, err)
			assert.Len(t, matches, 1)
		})

		t.Run("RevokeTearsDownAllMatches", func(t *testing.T) {
			res, err := env.profileFlow.UpdateMatchingConsent(ctx, a.ID, &dto.UpdateConsentRequest{MatchingConsent: false}, nil)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.MatchesRemoved)

			matches, err := env.matchRepo.ListForProfile(ctx, a.ID)
			require.NoError(t, err)
			assert.Empty(t, matches)

			reloaded, err := env.profileRepo.ByID(ctx, a.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(reloaded.MatchingConsent))
		})

		t.Run("RegrantRebuildsWithinTightRadius", func(t *testing.T) {
			res, err := env.profileFlow.UpdateMatchingConsent(ctx, a.ID, &dto.UpdateConsentRequest{MatchingConsent: true}, nil)
			require.NoError(t, err)
			assert.Equal(t, 1, res.MatchesCreated)

			match, err := env.matchRepo.ByPair(ctx, a.ID, b.ID)
			require.NoError(t, err)
			assert.NotNil(t, match)
		})

		t.Run("InactiveProfileRegrantCreatesNothing", func(t *testing.T) {
			// Pair at identical coordinates, so only the active flag stands
			// between them and an eager rematch.
			e, counterpart, err := env.fixtures.CreateMatchablePair(baseLat+0.01, baseLon, baseLat+0.01, baseLon)
			require.NoError(t, err)
			require.NoError(t, env.profileRepo.SetServiceActive(ctx, e.ID, false))

			_, err = env.profileFlow.UpdateMatchingConsent(ctx, e.ID, &dto.UpdateConsentRequest{MatchingConsent: false}, nil)
			require.NoError(t, err)

			res, err := env.profileFlow.UpdateMatchingConsent(ctx, e.ID, &dto.UpdateConsentRequest{MatchingConsent: true}, nil)
			require.NoError(t, err)
			assert.Zero(t, res.MatchesCreated)

			match, err := env.matchRepo.ByPair(ctx, e.ID, counterpart.ID)
			require.NoError(t, err)
			assert.Nil(t, match)
		})

		t.Run("RegrantBeyondTightRadiusCreatesNothing", func(t *testing.T) {
			// c sits ~22 m from its nearest compatible profile: matchable at
			// the default radius but outside the 10 m eager re-scan.
			c, _, err := env.fixtures.CreateMatchablePair(baseLat+0.001, baseLon, baseLat+0.0012, baseLon)
			require.NoError(t, err)

			_, err = env.profileFlow.UpdateMatchingConsent(ctx, c.ID, &dto.UpdateConsentRequest{MatchingConsent: false}, nil)
			require.NoError(t, err)

			res, err := env.profileFlow.UpdateMatchingConsent(ctx, c.ID, &dto.UpdateConsentRequest{MatchingConsent: true}, nil)
			require.NoError(t, err)
			assert.Zero(t, res.MatchesCreated)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestNewMatchesAndListing(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		env := newFlowEnv(testDB)
		ctx := testingutil.CreateTestContext()

		a, b, err := env.fixtures.CreateMatchablePair(baseLat, baseLon, nearLat, nearLon)
		require.NoError(t, err)

		_, err = reconcileAt(env, a.ID, baseLat, baseLon)
		require.NoError(t, err)

		t.Run("ReportsRecentMatch", func(t *testing.T) {
			res, err := env.matchFlow.CheckNewMatches(ctx, a.ID, utils.UTCNow().Add(-time.Minute))
			require.NoError(t, err)
			assert.True(t, res.HasNewMatch)
			assert.Equal(t, 1, res.NewMatchesCount)
			require.NotNil(t, res.LatestMatch)
			assert.Equal(t, b.ID, res.LatestMatch.OtherProfileID)
			assert.Equal(t, b.Nickname, res.LatestMatch.OtherNickname)
		})

		t.Run("NothingAfterCutoff", func(t *testing.T) {
			res, err := env.matchFlow.CheckNewMatches(ctx, a.ID, utils.UTCNow().Add(time.Minute))
			require.NoError(t, err)
			assert.False(t, res.HasNewMatch)
			assert.Nil(t, res.LatestMatch)
		})

		t.Run("CounterpartSeesTheSameMatch", func(t *testing.T) {
			res, err := env.matchFlow.ListMatches(ctx, b.ID)
			require.NoError(t, err)
			require.Equal(t, 1, res.Total)
			assert.Equal(t, a.ID, res.Matches[0].OtherProfileID)
			assert.Equal(t, a.Nickname, res.Matches[0].OtherNickname)
		})

		t.Run("UnknownProfile", func(t *testing.T) {
			_, err := env.matchFlow.ListMatches(ctx, 999999)
			assert.True(t, businessflow.IsProfileNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
