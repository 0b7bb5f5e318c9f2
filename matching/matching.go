// Package matching implements the compatibility scoring and distance engine.
// Everything in this package is pure computation: no I/O, no persistence, no
// logging. Persistence and orchestration live in business_flow.
package matching

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// PreferredGenderAny opts a preference profile out of gender filtering.
const PreferredGenderAny = "A"

// Dimension identifies a weighted scoring dimension.
type Dimension string

const (
	DimensionMBTI        Dimension = "mbti"
	DimensionPersonality Dimension = "personality"
	DimensionInterests   Dimension = "interests"
)

// PriorityWeights maps a dimension's position in the priority list to its
// point value. A dimension outside the list contributes nothing, so the
// achievable maximum shrinks when fewer priorities are declared.
var PriorityWeights = [3]float64{50, 30, 20}

const (
	// MaxScore bounds the weighted score.
	MaxScore = 100.0

	// DefaultMinScore is the eligibility threshold applied by the candidate
	// finder. The threshold used to be "3 of 4 binary criteria" before
	// weighted scoring replaced the binary scale.
	DefaultMinScore = 50.0
)

// Preferences is the scoring-relevant view of a preference profile.
// A nil PreferredGender triggers the heterosexual fallback on the observer's
// own gender; an empty PreferredMBTI set opts out of MBTI scoring entirely.
type Preferences struct {
	PreferredGender      *string
	AgeMin               *int
	AgeMax               *int
	HeightMin            *int
	HeightMax            *int
	PreferredMBTI        []string
	PreferredPersonality []string
	PreferredInterests   []string

	// Priorities is the ordered, duplicate-free list of weighted dimensions,
	// at most three entries.
	Priorities []Dimension
}

// Candidate is the scoring-relevant view of a candidate profile.
type Candidate struct {
	Gender      Gender
	Age         int
	Height      int
	MBTI        string
	Personality []string
	Interests   []string
}

// Ranked pairs a candidate profile with its computed distance and score.
type Ranked struct {
	ProfileID  uint
	DistanceKm float64
	Score      float64
}
