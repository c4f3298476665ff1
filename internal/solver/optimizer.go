package solver

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

// Optimize runs a simulated-annealing local search over the mutable subset
// of the assignments. DEPT_APPROVED and FINAL_APPROVED rows are pinned:
// they constrain the search but are never altered. The returned schedule is
// the best one visited, so the final cost never exceeds the initial cost.
//
// The loop is restartable and idempotent at a local optimum: with no
// accepted move inside the stall window it stops early and reports
// convergence.
func Optimize(snap *models.Snapshot, assignments []models.Assignment, budget Budget, opts Options) ([]models.Assignment, QualityReport) {
	budget = budget.withDefaults()
	idx := snap.Index()

	current := make([]models.Assignment, len(assignments))
	copy(current, assignments)
	sort.Slice(current, func(i, j int) bool { return current[i].ExamID < current[j].ExamID })

	var mutable []int
	for i, a := range current {
		if !a.Status.Frozen() {
			mutable = append(mutable, i)
		}
	}

	initial := Evaluate(idx, current, opts)
	report := QualityReport{
		InitialCost:          initial.SoftCost,
		FinalCost:            initial.SoftCost,
		HardViolationsBefore: len(initial.HardViolations),
		HardViolationsAfter:  len(initial.HardViolations),
	}

	if len(mutable) == 0 {
		report.Warning = WarnNoOptimizableAssignments
		report.Converged = true
		return current, report
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	search := newSearchSpace(idx)

	best := cloneAssignments(current)
	bestHard, bestViol, bestSoft := len(initial.HardViolations), len(initial.SoftViolations), initial.SoftCost
	curHard, curViol, curSoft := bestHard, bestViol, bestSoft

	temperature := budget.StartTemperature
	stall := 0
	start := time.Now()

	for iter := 0; iter < budget.Iterations; iter++ {
		if time.Since(start) > budget.MaxDuration {
			break
		}
		report.Iterations = iter + 1

		undo := proposeMove(current, mutable, search, rng)
		if undo == nil {
			stall++
			if stall >= budget.StallWindow {
				report.Converged = true
				break
			}
			continue
		}

		next := Evaluate(idx, current, opts)
		nextHard, nextViol, nextSoft := len(next.HardViolations), len(next.SoftViolations), next.SoftCost

		accepted := false
		switch {
		case nextHard > curHard:
			// Never trade hard violations away for soft quality.
		case nextHard < curHard:
			accepted = true
		case nextViol > curViol:
			// Recorded soft breaches (undersized rooms) rank above the soft
			// cost: a move may not introduce one, whatever it saves.
		case nextViol < curViol || nextSoft <= curSoft:
			accepted = true
		default:
			// Classic annealing on the soft delta: likely early, never late.
			delta := nextSoft - curSoft
			accepted = temperature > 0 && rng.Float64() < math.Exp(-delta/temperature)
		}

		if accepted {
			curHard, curViol, curSoft = nextHard, nextViol, nextSoft
			report.AcceptedMoves++
			stall = 0
			if lexBetter(nextHard, nextViol, nextSoft, bestHard, bestViol, bestSoft) {
				best = cloneAssignments(current)
				bestHard, bestViol, bestSoft = nextHard, nextViol, nextSoft
			}
		} else {
			undo()
			stall++
			if stall >= budget.StallWindow {
				report.Converged = true
				break
			}
		}

		temperature *= budget.CoolingFactor
	}

	report.FinalCost = bestSoft
	report.HardViolationsAfter = bestHard
	if report.InitialCost > 0 {
		report.GainPct = (report.InitialCost - report.FinalCost) / report.InitialCost * 100
	}
	return best, report
}

// searchSpace caches sorted candidate lists so move proposals are O(1)-ish
// and reproducible under a fixed seed.
type searchSpace struct {
	slotIDs []string
	roomIDs []string
	supIDs  []string
}

func newSearchSpace(idx *models.SnapshotIndex) *searchSpace {
	s := &searchSpace{}
	for id := range idx.TimeSlots {
		s.slotIDs = append(s.slotIDs, id)
	}
	for id := range idx.Rooms {
		s.roomIDs = append(s.roomIDs, id)
	}
	for id := range idx.Supervisors {
		s.supIDs = append(s.supIDs, id)
	}
	sort.Strings(s.slotIDs)
	sort.Strings(s.roomIDs)
	sort.Strings(s.supIDs)
	return s
}

// proposeMove mutates current in place and returns an undo closure, or nil
// when no move could be built this iteration. Moves touch mutable rows only.
func proposeMove(current []models.Assignment, mutable []int, search *searchSpace, rng *rand.Rand) func() {
	switch rng.Intn(3) {
	case 0:
		// Re-slot: swap the slots of two exams, or relocate one exam to a
		// different slot when it is alone in the draw.
		i := mutable[rng.Intn(len(mutable))]
		j := mutable[rng.Intn(len(mutable))]
		if i != j {
			a, b := &current[i], &current[j]
			oldA, oldB := a.TimeSlotID, b.TimeSlotID
			if oldA == oldB {
				return nil
			}
			a.TimeSlotID, b.TimeSlotID = oldB, oldA
			return func() { a.TimeSlotID, b.TimeSlotID = oldA, oldB }
		}
		if len(search.slotIDs) < 2 {
			return nil
		}
		a := &current[i]
		slot := search.slotIDs[rng.Intn(len(search.slotIDs))]
		if slot == a.TimeSlotID {
			return nil
		}
		old := a.TimeSlotID
		a.TimeSlotID = slot
		return func() { a.TimeSlotID = old }
	case 1:
		if len(search.roomIDs) < 2 {
			return nil
		}
		i := mutable[rng.Intn(len(mutable))]
		a := &current[i]
		room := search.roomIDs[rng.Intn(len(search.roomIDs))]
		if room == a.RoomID {
			return nil
		}
		old := a.RoomID
		a.RoomID = room
		return func() { a.RoomID = old }
	default:
		if len(search.supIDs) < 2 {
			return nil
		}
		i := mutable[rng.Intn(len(mutable))]
		a := &current[i]
		sup := search.supIDs[rng.Intn(len(search.supIDs))]
		if sup == a.SupervisorID {
			return nil
		}
		old := a.SupervisorID
		a.SupervisorID = sup
		return func() { a.SupervisorID = old }
	}
}

// lexBetter ranks candidate schedules: hard violations first, recorded soft
// breaches second, weighted soft cost last.
func lexBetter(hard, viol int, soft float64, refHard, refViol int, refSoft float64) bool {
	if hard != refHard {
		return hard < refHard
	}
	if viol != refViol {
		return viol < refViol
	}
	return soft < refSoft
}

func cloneAssignments(in []models.Assignment) []models.Assignment {
	out := make([]models.Assignment, len(in))
	copy(out, in)
	return out
}
