package solver

import (
	"fmt"
	"math"
	"sort"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

// Evaluate inspects a candidate assignment set and reports every hard
// violation plus the weighted soft cost. It is pure: the same snapshot and
// assignments always yield the same report, and both the draft builder and
// the optimizer consult it so conflict semantics stay identical across
// phases.
func Evaluate(idx *models.SnapshotIndex, assignments []models.Assignment, opts Options) Report {
	ordered := make([]models.Assignment, len(assignments))
	copy(ordered, assignments)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ExamID < ordered[j].ExamID })

	report := Report{}

	bySlotRoom := make(map[string]string)       // slot|room -> first exam
	bySlotSupervisor := make(map[string]string) // slot|supervisor -> first exam
	bySlot := make(map[string][]string)         // slot -> exam ids

	for _, a := range ordered {
		roomKey := a.TimeSlotID + "|" + a.RoomID
		if first, taken := bySlotRoom[roomKey]; taken {
			report.HardViolations = append(report.HardViolations, Violation{
				Kind:              KindRoomDoubleBooked,
				ExamID:            a.ExamID,
				ConflictingExamID: first,
				Target:            a.RoomID,
				Detail:            fmt.Sprintf("room %s hosts two exams in slot %s", roomName(idx, a.RoomID), a.TimeSlotID),
			})
		} else {
			bySlotRoom[roomKey] = a.ExamID
		}

		supKey := a.TimeSlotID + "|" + a.SupervisorID
		if first, taken := bySlotSupervisor[supKey]; taken {
			report.HardViolations = append(report.HardViolations, Violation{
				Kind:              KindSupervisorDoubleBooked,
				ExamID:            a.ExamID,
				ConflictingExamID: first,
				Target:            a.SupervisorID,
				Detail:            fmt.Sprintf("supervisor %s proctors two exams in slot %s", supervisorName(idx, a.SupervisorID), a.TimeSlotID),
			})
		} else {
			bySlotSupervisor[supKey] = a.ExamID
		}

		bySlot[a.TimeSlotID] = append(bySlot[a.TimeSlotID], a.ExamID)

		if exam, ok := idx.Exams[a.ExamID]; ok {
			if room, ok := idx.Rooms[a.RoomID]; ok && room.Capacity < exam.ExpectedHeadcount {
				v := Violation{
					Kind:   KindRoomCapacityExceeded,
					ExamID: a.ExamID,
					Target: a.RoomID,
					Detail: fmt.Sprintf("room %s seats %d but %d students are expected", room.Name, room.Capacity, exam.ExpectedHeadcount),
				}
				if opts.CapacityHard {
					report.HardViolations = append(report.HardViolations, v)
				} else {
					report.SoftViolations = append(report.SoftViolations, v)
				}
			}
		}
	}

	// Student exclusivity: two exams sharing a student must not share a slot.
	for _, examIDs := range bySlot {
		for i := 0; i < len(examIDs); i++ {
			for j := i + 1; j < len(examIDs); j++ {
				u, v := examIDs[i], examIDs[j]
				if student := sharedStudent(idx, u, v); student != "" {
					report.HardViolations = append(report.HardViolations, Violation{
						Kind:              KindStudentConflict,
						ExamID:            v,
						ConflictingExamID: u,
						Target:            student,
						Detail:            fmt.Sprintf("student %s sits both exams in the same slot", student),
					})
				}
			}
		}
	}

	report.SoftCost = softCost(idx, ordered, opts.Weights)
	return report
}

// softCost is the weighted sum of supervisor load variance, room capacity
// waste, the day-clustering spread penalty, and the capacity deficit of
// undersized rooms. The deficit term keeps soft ROOM_CAPACITY_EXCEEDED
// breaches from being free: squeezing an exam into a too-small room always
// costs more than the waste it removes.
func softCost(idx *models.SnapshotIndex, assignments []models.Assignment, w Weights) float64 {
	if len(assignments) == 0 {
		return 0
	}

	loadPerSupervisor := make(map[string]int, len(idx.Supervisors))
	for supID := range idx.Supervisors {
		loadPerSupervisor[supID] = 0
	}
	examsPerDay := make(map[int]int)
	var waste, deficit float64

	for _, a := range assignments {
		loadPerSupervisor[a.SupervisorID]++
		if slot, ok := idx.TimeSlots[a.TimeSlotID]; ok {
			examsPerDay[slot.DayIndex]++
		}
		exam, okE := idx.Exams[a.ExamID]
		room, okR := idx.Rooms[a.RoomID]
		if okE && okR && room.Capacity > 0 {
			if room.Capacity >= exam.ExpectedHeadcount {
				waste += float64(room.Capacity-exam.ExpectedHeadcount) / float64(room.Capacity)
			} else {
				deficit += float64(exam.ExpectedHeadcount-room.Capacity) / float64(room.Capacity)
			}
		}
	}

	loads := make([]float64, 0, len(loadPerSupervisor))
	for _, c := range loadPerSupervisor {
		loads = append(loads, float64(c))
	}

	return w.LoadVariance*stddev(loads) +
		w.RoomWaste*waste +
		w.Spread*spreadPenalty(idx, examsPerDay, len(assignments)) +
		w.CapacityDeficit*deficit
}

// spreadPenalty grows when exams bunch up on few calendar days. It is the
// standard deviation of per-day exam counts over the whole slot calendar.
func spreadPenalty(idx *models.SnapshotIndex, examsPerDay map[int]int, total int) float64 {
	if total == 0 {
		return 0
	}
	days := make(map[int]struct{})
	for _, slot := range idx.TimeSlots {
		days[slot.DayIndex] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}
	counts := make([]float64, 0, len(days))
	for day := range days {
		counts = append(counts, float64(examsPerDay[day]))
	}
	return stddev(counts)
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}

func roomName(idx *models.SnapshotIndex, roomID string) string {
	if room, ok := idx.Rooms[roomID]; ok {
		return room.Name
	}
	return roomID
}

func supervisorName(idx *models.SnapshotIndex, supID string) string {
	if sup, ok := idx.Supervisors[supID]; ok {
		return sup.Name
	}
	return supID
}
