package solver

import (
	"sort"
	"strconv"

	"github.com/univ-fst/exam-planner-api/internal/models"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
)

// BuildDraft produces a complete greedy assignment for every exam in the
// snapshot. FINAL_APPROVED assignments in existing are pinned and carried
// through untouched; everything else is rebuilt. The draft is deterministic:
// identical inputs always yield the identical schedule.
//
// The only failure is structural: more exams than room-slot pairs can ever
// hold. Any other tension degrades into recorded conflicts, never into an
// incomplete draft.
func BuildDraft(snap *models.Snapshot, existing []models.Assignment, opts Options) ([]models.Assignment, error) {
	if len(snap.Exams) > len(snap.Rooms)*len(snap.TimeSlots) {
		return nil, appErrors.Clone(appErrors.ErrInfeasibleInput, "")
	}

	idx := snap.Index()
	graph := buildConflictGraph(idx)
	state := newPlacementState(idx, opts)

	pinned := make(map[string]models.Assignment)
	for _, a := range existing {
		if a.Status == models.StatusFinalApproved {
			pinned[a.ExamID] = a
			state.occupy(a)
		}
	}

	// Most-constrained-first: big headcounts and high conflict fan-out are
	// the hardest to place, so they go first. Ties fall back to lowest id.
	order := make([]models.Exam, 0, len(snap.Exams))
	for _, exam := range snap.Exams {
		if _, isPinned := pinned[exam.ID]; !isPinned {
			order = append(order, exam)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.ExpectedHeadcount != b.ExpectedHeadcount {
			return a.ExpectedHeadcount > b.ExpectedHeadcount
		}
		if da, db := graph.degree(a.ID), graph.degree(b.ID); da != db {
			return da > db
		}
		return a.ID < b.ID
	})

	result := make([]models.Assignment, 0, len(snap.Exams))
	for _, a := range pinned {
		result = append(result, a)
	}

	for _, exam := range order {
		assignment := state.place(exam, graph)
		result = append(result, assignment)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ExamID < result[j].ExamID })
	return result, nil
}

// placementState tracks the occupancy of rooms, supervisors, and students
// while the greedy pass runs.
type placementState struct {
	idx  *models.SnapshotIndex
	opts Options

	slots []models.TimeSlot // chronological
	rooms []models.Room     // capacity ascending

	roomBusy   map[string]struct{} // slot|room
	supBusy    map[string]struct{} // slot|supervisor
	supLoad    map[string]int
	supDaily   map[string]int // supervisor|day
	examInSlot map[string][]string
}

func newPlacementState(idx *models.SnapshotIndex, opts Options) *placementState {
	s := &placementState{
		idx:        idx,
		opts:       opts,
		roomBusy:   make(map[string]struct{}),
		supBusy:    make(map[string]struct{}),
		supLoad:    make(map[string]int),
		supDaily:   make(map[string]int),
		examInSlot: make(map[string][]string),
	}
	for _, slot := range idx.TimeSlots {
		s.slots = append(s.slots, slot)
	}
	sort.Slice(s.slots, func(i, j int) bool {
		if !s.slots[i].StartTime.Equal(s.slots[j].StartTime) {
			return s.slots[i].StartTime.Before(s.slots[j].StartTime)
		}
		return s.slots[i].ID < s.slots[j].ID
	})
	for _, room := range idx.Rooms {
		s.rooms = append(s.rooms, room)
	}
	sort.Slice(s.rooms, func(i, j int) bool {
		if s.rooms[i].Capacity != s.rooms[j].Capacity {
			return s.rooms[i].Capacity < s.rooms[j].Capacity
		}
		return s.rooms[i].ID < s.rooms[j].ID
	})
	return s
}

func (s *placementState) occupy(a models.Assignment) {
	s.roomBusy[a.TimeSlotID+"|"+a.RoomID] = struct{}{}
	s.supBusy[a.TimeSlotID+"|"+a.SupervisorID] = struct{}{}
	s.supLoad[a.SupervisorID]++
	if slot, ok := s.idx.TimeSlots[a.TimeSlotID]; ok {
		s.supDaily[dailyKey(a.SupervisorID, slot.DayIndex)]++
	}
	s.examInSlot[a.TimeSlotID] = append(s.examInSlot[a.TimeSlotID], a.ExamID)
}

// place finds the best slot/room/supervisor for one exam. The search
// relaxes in stages so the draft always completes: first a fully clean
// placement, then an undersized room, then a double-booked supervisor.
func (s *placementState) place(exam models.Exam, graph conflictGraph) models.Assignment {
	type candidate struct {
		slot models.TimeSlot
		room models.Room
	}

	pick := func(requireCapacity, requireFreeSupervisor bool) (candidate, string, bool) {
		for _, slot := range s.slots {
			if s.slotHasConflict(exam.ID, slot.ID, graph) {
				continue
			}
			room, ok := s.findRoom(exam, slot.ID, requireCapacity)
			if !ok {
				continue
			}
			sup, ok := s.findSupervisor(exam, slot, requireFreeSupervisor)
			if !ok {
				continue
			}
			return candidate{slot: slot, room: room}, sup, true
		}
		return candidate{}, "", false
	}

	cand, supID, ok := pick(true, true)
	if !ok {
		// No capacity-sufficient room anywhere: take the largest free room
		// and let the evaluator record the capacity conflict.
		cand, supID, ok = pick(false, true)
	}
	if !ok {
		// Every supervisor is booked in every viable slot. Double-book the
		// least-loaded one rather than leaving the exam unassigned.
		cand, supID, ok = pick(true, false)
		if !ok {
			cand, supID, ok = pick(false, false)
		}
	}
	if !ok {
		// Student conflicts block every slot. Fall back to the least harmful
		// slot ignoring the conflict graph; the evaluator will report it.
		for _, slot := range s.slots {
			room, roomOK := s.findRoom(exam, slot.ID, false)
			if !roomOK {
				continue
			}
			sup, supOK := s.findSupervisor(exam, slot, false)
			if !supOK {
				continue
			}
			cand, supID, ok = candidate{slot: slot, room: room}, sup, true
			break
		}
	}
	if !ok {
		// Feasibility check guarantees a free room-slot pair exists; this
		// branch only triggers with zero supervisors in the snapshot.
		cand = candidate{slot: s.slots[0], room: s.rooms[len(s.rooms)-1]}
		supID = ""
	}

	assignment := models.Assignment{
		ExamID:       exam.ID,
		RoomID:       cand.room.ID,
		TimeSlotID:   cand.slot.ID,
		SupervisorID: supID,
		Status:       models.StatusDraft,
	}
	s.occupy(assignment)
	return assignment
}

func (s *placementState) slotHasConflict(examID, slotID string, graph conflictGraph) bool {
	for _, placed := range s.examInSlot[slotID] {
		if _, conflicting := graph[examID][placed]; conflicting {
			return true
		}
	}
	return false
}

// findRoom returns the smallest free room that fits, or the largest free
// room when capacity is relaxed.
func (s *placementState) findRoom(exam models.Exam, slotID string, requireCapacity bool) (models.Room, bool) {
	if requireCapacity {
		for _, room := range s.rooms {
			if room.Capacity < exam.ExpectedHeadcount {
				continue
			}
			if _, busy := s.roomBusy[slotID+"|"+room.ID]; !busy {
				return room, true
			}
		}
		return models.Room{}, false
	}
	for i := len(s.rooms) - 1; i >= 0; i-- {
		room := s.rooms[i]
		if _, busy := s.roomBusy[slotID+"|"+room.ID]; !busy {
			return room, true
		}
	}
	return models.Room{}, false
}

// findSupervisor picks the least-loaded eligible supervisor, preferring the
// exam's own department. With requireFree false the slot-exclusivity and
// load checks are waived.
func (s *placementState) findSupervisor(exam models.Exam, slot models.TimeSlot, requireFree bool) (string, bool) {
	dept, _ := s.idx.DepartmentOfExam(exam.ID)

	var (
		bestID    string
		bestOwn   bool
		bestLoad  int
		haveMatch bool
	)
	consider := func(sup models.Supervisor) {
		own := dept.ID != "" && sup.DepartmentID == dept.ID
		load := s.supLoad[sup.ID]
		better := !haveMatch ||
			(own && !bestOwn) ||
			(own == bestOwn && load < bestLoad) ||
			(own == bestOwn && load == bestLoad && sup.ID < bestID)
		if better {
			bestID, bestOwn, bestLoad, haveMatch = sup.ID, own, load, true
		}
	}

	for _, sup := range s.idx.Supervisors {
		if requireFree {
			if _, busy := s.supBusy[slot.ID+"|"+sup.ID]; busy {
				continue
			}
			if sup.MaxLoad > 0 && s.supLoad[sup.ID] >= sup.MaxLoad {
				continue
			}
			if s.opts.SupervisorDailyCap > 0 && s.supDaily[dailyKey(sup.ID, slot.DayIndex)] >= s.opts.SupervisorDailyCap {
				continue
			}
		}
		consider(sup)
	}
	return bestID, haveMatch
}

func dailyKey(supervisorID string, day int) string {
	return supervisorID + "|" + strconv.Itoa(day)
}
