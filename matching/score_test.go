package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func allPriorities() []Dimension {
	return []Dimension{DimensionMBTI, DimensionPersonality, DimensionInterests}
}

func TestGenderFilter(t *testing.T) {
	cases := []struct {
		name      string
		preferred *string
		observer  Gender
		candidate Gender
		accepted  bool
	}{
		{"ExplicitMaleAcceptsMale", ptr("M"), GenderFemale, GenderMale, true},
		{"ExplicitMaleRejectsFemale", ptr("M"), GenderFemale, GenderFemale, false},
		{"ExplicitFemaleAcceptsFemale", ptr("F"), GenderMale, GenderFemale, true},
		{"ExplicitFemaleRejectsMale", ptr("F"), GenderMale, GenderMale, false},
		{"AnyAcceptsMale", ptr("A"), GenderMale, GenderMale, true},
		{"AnyAcceptsFemale", ptr("A"), GenderMale, GenderFemale, true},
		{"UnrecognizedValueAcceptsAll", ptr("X"), GenderMale, GenderMale, true},
		{"NilFallsBackMaleWantsFemale", nil, GenderMale, GenderFemale, true},
		{"NilFallsBackMaleRejectsMale", nil, GenderMale, GenderMale, false},
		{"NilFallsBackFemaleWantsMale", nil, GenderFemale, GenderMale, true},
		{"NilFallsBackFemaleRejectsFemale", nil, GenderFemale, GenderFemale, false},
		{"EmptyStringFallsBack", ptr(""), GenderMale, GenderFemale, true},
		{"UnknownObserverGenderRejects", nil, Gender("X"), GenderFemale, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prefs := Preferences{
				PreferredGender:    tc.preferred,
				PreferredInterests: []string{"hiking"},
				Priorities:         []Dimension{DimensionInterests},
			}
			cand := Candidate{Gender: tc.candidate, Interests: []string{"hiking"}}

			score := Score(prefs, cand, tc.observer)
			if tc.accepted {
				assert.Positive(t, score)
			} else {
				assert.Zero(t, score)
			}
		})
	}
}

func TestRangeFilters(t *testing.T) {
	base := Preferences{
		PreferredGender:    ptr("A"),
		PreferredInterests: []string{"hiking"},
		Priorities:         []Dimension{DimensionInterests},
	}
	cand := Candidate{Gender: GenderFemale, Age: 28, Height: 165, Interests: []string{"hiking"}}

	t.Run("InsideAgeRange", func(t *testing.T) {
		prefs := base
		prefs.AgeMin, prefs.AgeMax = ptr(25), ptr(30)
		assert.Positive(t, Score(prefs, cand, GenderMale))
	})

	t.Run("BoundsAreInclusive", func(t *testing.T) {
		prefs := base
		prefs.AgeMin, prefs.AgeMax = ptr(28), ptr(28)
		assert.Positive(t, Score(prefs, cand, GenderMale))
	})

	t.Run("OutsideAgeRange", func(t *testing.T) {
		prefs := base
		prefs.AgeMin, prefs.AgeMax = ptr(30), ptr(35)
		assert.Zero(t, Score(prefs, cand, GenderMale))
	})

	t.Run("HalfOpenAgeRangeIsIgnored", func(t *testing.T) {
		// Only one bound set: the filter does not apply at all.
		prefs := base
		prefs.AgeMin = ptr(30)
		assert.Positive(t, Score(prefs, cand, GenderMale))
	})

	t.Run("OutsideHeightRange", func(t *testing.T) {
		prefs := base
		prefs.HeightMin, prefs.HeightMax = ptr(170), ptr(180)
		assert.Zero(t, Score(prefs, cand, GenderMale))
	})

	t.Run("HalfOpenHeightRangeIsIgnored", func(t *testing.T) {
		prefs := base
		prefs.HeightMax = ptr(160)
		assert.Positive(t, Score(prefs, cand, GenderMale))
	})
}

func TestScoreWeights(t *testing.T) {
	prefs := Preferences{
		PreferredGender:      ptr("A"),
		PreferredMBTI:        []string{"INFP", "ENFP"},
		PreferredPersonality: []string{"calm", "curious"},
		PreferredInterests:   []string{"hiking", "coffee"},
		Priorities:           allPriorities(),
	}

	t.Run("PerfectCandidateScoresFull", func(t *testing.T) {
		cand := Candidate{
			Gender:      GenderFemale,
			MBTI:        "INFP",
			Personality: []string{"calm", "curious"},
			Interests:   []string{"hiking", "coffee"},
		}
		assert.InDelta(t, 100, Score(prefs, cand, GenderMale), 1e-9)
	})

	t.Run("MBTIMissOnlyDropsItsWeight", func(t *testing.T) {
		cand := Candidate{
			Gender:      GenderFemale,
			MBTI:        "ESTJ",
			Personality: []string{"calm", "curious"},
			Interests:   []string{"hiking", "coffee"},
		}
		assert.InDelta(t, 50, Score(prefs, cand, GenderMale), 1e-9)
	})

	t.Run("EmptyMBTISetSkipsTheDimension", func(t *testing.T) {
		// Opt-out: the 50 points are unreachable, not forfeited to a zero.
		optOut := prefs
		optOut.PreferredMBTI = nil
		cand := Candidate{
			Gender:      GenderFemale,
			MBTI:        "ESTJ",
			Personality: []string{"calm", "curious"},
			Interests:   []string{"hiking", "coffee"},
		}
		assert.InDelta(t, 50, Score(optOut, cand, GenderMale), 1e-9)
	})

	t.Run("CandidateWithoutMBTIScoresZeroOnIt", func(t *testing.T) {
		cand := Candidate{
			Gender:      GenderFemale,
			Personality: []string{"calm", "curious"},
			Interests:   []string{"hiking", "coffee"},
		}
		assert.InDelta(t, 50, Score(prefs, cand, GenderMale), 1e-9)
	})

	t.Run("PriorityOrderChangesWeights", func(t *testing.T) {
		reordered := prefs
		reordered.Priorities = []Dimension{DimensionInterests, DimensionMBTI, DimensionPersonality}
		cand := Candidate{
			Gender:    GenderFemale,
			MBTI:      "INFP",
			Interests: []string{"hiking", "coffee"},
		}
		// interests at 50, mbti at 30, personality overlap empty.
		assert.InDelta(t, 80, Score(reordered, cand, GenderMale), 1e-9)
	})

	t.Run("FewerPrioritiesShrinkTheMaximum", func(t *testing.T) {
		short := prefs
		short.Priorities = []Dimension{DimensionPersonality}
		cand := Candidate{
			Gender:      GenderFemale,
			MBTI:        "INFP",
			Personality: []string{"calm", "curious"},
			Interests:   []string{"hiking", "coffee"},
		}
		assert.InDelta(t, 50, Score(short, cand, GenderMale), 1e-9)
	})

	t.Run("PartialOverlapIsFractional", func(t *testing.T) {
		partial := Preferences{
			PreferredGender:    ptr("A"),
			PreferredInterests: []string{"hiking", "coffee", "movies", "books"},
			Priorities:         []Dimension{DimensionInterests},
		}
		cand := Candidate{
			Gender:    GenderFemale,
			Interests: []string{"hiking", "coffee", "gaming"},
		}
		// F1 of 2-of-4 preferred vs 2-of-3 actual is 4/7.
		assert.InDelta(t, 50*4.0/7.0, Score(partial, cand, GenderMale), 1e-9)
	})
}

func TestF1Overlap(t *testing.T) {
	t.Run("IdenticalSets", func(t *testing.T) {
		assert.InDelta(t, 1, F1Overlap([]string{"a", "b"}, []string{"b", "a"}), 1e-9)
	})

	t.Run("Disjoint", func(t *testing.T) {
		assert.Zero(t, F1Overlap([]string{"a"}, []string{"b"}))
	})

	t.Run("EitherEmpty", func(t *testing.T) {
		assert.Zero(t, F1Overlap(nil, []string{"a"}))
		assert.Zero(t, F1Overlap([]string{"a"}, nil))
	})

	t.Run("Symmetric", func(t *testing.T) {
		a := []string{"a", "b", "c", "d"}
		b := []string{"a", "b", "e"}
		assert.InDelta(t, F1Overlap(a, b), F1Overlap(b, a), 1e-9)
		assert.InDelta(t, 4.0/7.0, F1Overlap(a, b), 1e-9)
	})

	t.Run("DuplicatesAreIgnored", func(t *testing.T) {
		assert.InDelta(t, 1, F1Overlap([]string{"a", "a", "b"}, []string{"a", "b", "b"}), 1e-9)
	})
}

func TestSortRanked(t *testing.T) {
	list := []Ranked{
		{ProfileID: 1, DistanceKm: 0.4, Score: 70},
		{ProfileID: 2, DistanceKm: 0.1, Score: 90},
		{ProfileID: 3, DistanceKm: 0.3, Score: 90},
		{ProfileID: 4, DistanceKm: 0.2, Score: 70},
	}

	SortRanked(list)

	ids := []uint{list[0].ProfileID, list[1].ProfileID, list[2].ProfileID, list[3].ProfileID}
	// Descending score; ascending distance breaks ties.
	assert.Equal(t, []uint{2, 3, 4, 1}, ids)
}
