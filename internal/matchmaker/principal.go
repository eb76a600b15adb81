package matchmaker

import (
	"math"

	"github.com/duoqueue/matchmaker/pkg/logger"
)

// Principal forms exactly |teams|/2 matches from the queued teams,
// pairing every team with a distinct partner.
type Principal interface {
	FormMatches(teams []Team, history []Match) ([]Match, error)
}

// principalBase implements the candidate generation and utility math
// shared by every concrete policy.
type principalBase struct {
	round  Round
	config Config
	nextID func() int64
}

// expectedScore is the Elo expectation scaled by points_per_match,
// rounded to 4 decimals.
func (p principalBase) expectedScore(lhs, rhs Team) float64 {
	e := p.config.PointsPerMatch / (1 + math.Pow(10, (rhs.Elo-lhs.Elo)/400))
	return math.Round(e*10000) / 10000
}

// period computes the {0,1} square-wave diversity signal for the current
// round_id.
func (p principalBase) period() float64 {
	active := float64(p.config.Period.Active)
	if active <= 0 {
		return 0
	}
	turn := float64(p.round.ID)
	frac := math.Mod(turn, active) / active
	dutyWindow := p.config.Period.DutyCycle / 5
	if frac < dutyWindow {
		return 1
	}
	return 0
}

// matchUtility computes a candidate match's utility and, as a side
// effect, stamps its Result.Points with each side's expected score — the
// in-game context later uses these as the baseline for delta computation.
func (p principalBase) matchUtility(m *Match) float64 {
	e1 := p.expectedScore(m.TeamOne.Team, m.TeamTwo.Team)
	e2 := p.expectedScore(m.TeamTwo.Team, m.TeamOne.Team)
	m.TeamOne.Points = e1
	m.TeamTwo.Points = e2
	if e2 != 0 {
		m.OddsRatio = e1 / e2
	}
	distance := math.Exp(-math.Abs(e1 - e2))
	return distance + p.period()/distance
}

// candidateMatches enumerates every unordered pair of teams as a
// candidate match, skipping pairs already present in history.
func (p principalBase) candidateMatches(teams []Team, history []Match) []Match {
	seen := make(map[pairKey]bool, len(history))
	for _, m := range history {
		seen[m.pairKey()] = true
	}
	var candidates []Match
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			a, b := teams[i], teams[j]
			if seen[newPairKey(a.ID, b.ID)] {
				continue
			}
			candidates = append(candidates, Match{
				ID:      p.nextID(),
				Round:   p.round,
				TeamOne: Result{Team: a},
				TeamTwo: Result{Team: b},
			})
		}
	}
	return candidates
}

// feasibleSets enumerates every size-n/2 combination of candidates in
// which no team repeats. Enumeration order is insertion order, which
// makes argmax/argmin tie-breaking over them deterministic (first seen
// wins) — a strict improvement over the source's hash-set enumeration.
func feasibleSets(candidates []Match, size int) [][]Match {
	var out [][]Match
	for _, combo := range combinationsOf(candidates, size) {
		if filterMatches(combo) {
			out = append(out, combo)
		}
	}
	return out
}

func filterMatches(matches []Match) bool {
	seen := make(map[int64]bool, 2*len(matches))
	for _, m := range matches {
		t1, t2 := m.TeamOne.Team.ID, m.TeamTwo.Team.ID
		if seen[t1] || seen[t2] {
			return false
		}
		seen[t1] = true
		seen[t2] = true
	}
	return true
}

// combinationsOf returns every size-k combination of items, in
// lexicographic-by-index (insertion) order.
func combinationsOf[T any](items []T, k int) [][]T {
	n := len(items)
	if k <= 0 || k > n {
		return nil
	}
	var out [][]T
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]T, k)
		for i, v := range idx {
			combo[i] = items[v]
		}
		out = append(out, combo)

		pos := k - 1
		for pos >= 0 && idx[pos] == n-k+pos {
			pos--
		}
		if pos < 0 {
			break
		}
		idx[pos]++
		for i := pos + 1; i < k; i++ {
			idx[i] = idx[i-1] + 1
		}
	}
	return out
}

// possibleSets enumerates feasible full pairings, preferring candidates
// that avoid repeating a match already present in history. When history
// rules out every candidate needed to complete a full set, it falls back
// to pairings drawn without regard to history rather than leaving the
// round unable to form any match at all.
func (p principalBase) possibleSets(teams []Team, history []Match) [][]Match {
	size := len(teams) / 2
	sets := feasibleSets(p.candidateMatches(teams, history), size)
	if len(sets) > 0 {
		return sets
	}
	return feasibleSets(p.candidateMatches(teams, nil), size)
}

// MaxSum picks the feasible set maximizing the sum of match utilities.
type MaxSum struct{ principalBase }

func (p MaxSum) FormMatches(teams []Team, history []Match) ([]Match, error) {
	sets := p.possibleSets(teams, history)
	if len(sets) == 0 {
		return nil, nil
	}
	best := sets[0]
	bestU := sumUtility(p, best)
	for _, s := range sets[1:] {
		u := sumUtility(p, s)
		if u > bestU {
			best, bestU = s, u
		}
	}
	return best, nil
}

func sumUtility(p principalBase, matches []Match) float64 {
	total := 0.0
	for i := range matches {
		total += p.matchUtility(&matches[i])
	}
	return total
}

// MinVariance picks the feasible set minimizing the variance of its
// matches' utilities.
type MinVariance struct{ principalBase }

func (p MinVariance) FormMatches(teams []Team, history []Match) ([]Match, error) {
	sets := p.possibleSets(teams, history)
	if len(sets) == 0 {
		return nil, nil
	}
	best := sets[0]
	bestV := variance(p, best)
	for _, s := range sets[1:] {
		v := variance(p, s)
		if v < bestV {
			best, bestV = s, v
		}
	}
	return best, nil
}

func variance(p principalBase, matches []Match) float64 {
	utilities := make([]float64, len(matches))
	for i := range matches {
		utilities[i] = p.matchUtility(&matches[i])
	}
	mean := 0.0
	for _, u := range utilities {
		mean += u
	}
	mean /= float64(len(utilities))
	v := 0.0
	for _, u := range utilities {
		v += (u - mean) * (u - mean)
	}
	return v / float64(len(utilities))
}

// MaxMin picks the feasible set maximizing its worst (minimum) match
// utility.
type MaxMin struct{ principalBase }

func (p MaxMin) FormMatches(teams []Team, history []Match) ([]Match, error) {
	sets := p.possibleSets(teams, history)
	if len(sets) == 0 {
		return nil, nil
	}
	best := sets[0]
	bestU := minUtility(p, best)
	for _, s := range sets[1:] {
		u := minUtility(p, s)
		if u > bestU {
			best, bestU = s, u
		}
	}
	return best, nil
}

func minUtility(p principalBase, matches []Match) float64 {
	m := p.matchUtility(&matches[0])
	for i := 1; i < len(matches); i++ {
		u := p.matchUtility(&matches[i])
		if u < m {
			m = u
		}
	}
	return m
}

// MinMax picks the feasible set minimizing its worst (maximum) match
// utility.
type MinMax struct{ principalBase }

func (p MinMax) FormMatches(teams []Team, history []Match) ([]Match, error) {
	sets := p.possibleSets(teams, history)
	if len(sets) == 0 {
		return nil, nil
	}
	best := sets[0]
	bestU := maxUtility(p, best)
	for _, s := range sets[1:] {
		u := maxUtility(p, s)
		if u < bestU {
			best, bestU = s, u
		}
	}
	return best, nil
}

func maxUtility(p principalBase, matches []Match) float64 {
	m := p.matchUtility(&matches[0])
	for i := 1; i < len(matches); i++ {
		u := p.matchUtility(&matches[i])
		if u > m {
			m = u
		}
	}
	return m
}

// GetPrincipal instantiates the configured policy for round, falling back
// to MaxSum (with a logged warning) on an unrecognized name.
func GetPrincipal(round Round, config Config, nextID func() int64, log *logger.Logger) Principal {
	base := principalBase{round: round, config: config, nextID: nextID}
	switch config.Principal {
	case PrincipalMaxSum:
		return MaxSum{base}
	case PrincipalMinVariance:
		return MinVariance{base}
	case PrincipalMaxMin:
		return MaxMin{base}
	case PrincipalMinMax:
		return MinMax{base}
	default:
		if log != nil {
			log.Sugar().Warnw("unknown principal, using max_sum",
				"principal", config.Principal)
		}
		return MaxSum{base}
	}
}
