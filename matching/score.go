package matching

import "sort"

// Score computes the compatibility score of a candidate against a preference
// profile, in [0, 100]. Zero means ineligible.
//
// Stage 1 applies the hard filters (gender, age range, height range); any
// failure short-circuits to 0. Stage 2 sums the weighted dimension scores
// for candidates that survive Stage 1.
func Score(prefs Preferences, cand Candidate, observerGender Gender) float64 {
	if !genderAcceptable(prefs, cand, observerGender) {
		return 0
	}
	if prefs.AgeMin != nil && prefs.AgeMax != nil {
		if cand.Age < *prefs.AgeMin || cand.Age > *prefs.AgeMax {
			return 0
		}
	}
	if prefs.HeightMin != nil && prefs.HeightMax != nil {
		if cand.Height < *prefs.HeightMin || cand.Height > *prefs.HeightMax {
			return 0
		}
	}

	var total float64
	for i, dim := range prefs.Priorities {
		if i >= len(PriorityWeights) {
			break
		}
		weight := PriorityWeights[i]

		switch dim {
		case DimensionMBTI:
			// An empty preferred MBTI set is an opt-out of MBTI scoring,
			// not a zero: the dimension is skipped entirely.
			if len(prefs.PreferredMBTI) == 0 {
				continue
			}
			if cand.MBTI != "" && containsString(prefs.PreferredMBTI, cand.MBTI) {
				total += weight
			}
		case DimensionPersonality:
			if len(prefs.PreferredPersonality) == 0 {
				continue
			}
			total += weight * F1Overlap(prefs.PreferredPersonality, cand.Personality)
		case DimensionInterests:
			if len(prefs.PreferredInterests) == 0 {
				continue
			}
			total += weight * F1Overlap(prefs.PreferredInterests, cand.Interests)
		}
	}

	// Weights sum to at most 100, so the clamp only ever fires on
	// misconfigured weights.
	if total < 0 {
		return 0
	}
	if total > MaxScore {
		return MaxScore
	}
	return total
}

// genderAcceptable applies the gender hard filter. Profiles created before
// the preferred_gender field existed carry no preference; those fall back to
// strict heterosexual matching on the observer's own gender. The fallback
// must be preserved as-is for those legacy profiles.
func genderAcceptable(prefs Preferences, cand Candidate, observerGender Gender) bool {
	if prefs.PreferredGender != nil && *prefs.PreferredGender != "" {
		switch *prefs.PreferredGender {
		case string(GenderMale):
			return cand.Gender == GenderMale
		case string(GenderFemale):
			return cand.Gender == GenderFemale
		default:
			// PreferredGenderAny and any unrecognized value accept all.
			return true
		}
	}

	switch observerGender {
	case GenderMale:
		return cand.Gender == GenderFemale
	case GenderFemale:
		return cand.Gender == GenderMale
	default:
		return false
	}
}

// F1Overlap returns the harmonic mean of precision and recall between two
// tag sets, treating each slice as a set (duplicates ignored). It is 0 when
// either set is empty or they do not overlap, and symmetric in its inputs.
func F1Overlap(preferred, actual []string) float64 {
	prefSet := toSet(preferred)
	actSet := toSet(actual)
	if len(prefSet) == 0 || len(actSet) == 0 {
		return 0
	}

	intersection := 0
	for v := range actSet {
		if _, ok := prefSet[v]; ok {
			intersection++
		}
	}
	if intersection == 0 {
		return 0
	}

	precision := float64(intersection) / float64(len(prefSet))
	recall := float64(intersection) / float64(len(actSet))
	return 2 * precision * recall / (precision + recall)
}

// SortRanked orders candidates by descending score, breaking ties with
// ascending distance so the closer candidate ranks higher.
func SortRanked(list []Ranked) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		return list[i].DistanceKm < list[j].DistanceKm
	})
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
