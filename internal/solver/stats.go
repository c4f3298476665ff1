package solver

import (
	"math"
	"sort"

	"github.com/univ-fst/exam-planner-api/internal/models"
)

// Scope optionally narrows KPI aggregation to one department or program.
// Role-based narrowing happens at the API boundary; this layer only applies
// whatever scope it is handed.
type Scope struct {
	DepartmentID string `json:"department_id,omitempty"`
	ProgramID    string `json:"program_id,omitempty"`
}

// IsZero reports whether the scope restricts nothing.
func (s Scope) IsZero() bool {
	return s.DepartmentID == "" && s.ProgramID == ""
}

// RoomOccupancy is the per-room utilisation of the slot calendar.
type RoomOccupancy struct {
	RoomID       string  `json:"room_id"`
	RoomName     string  `json:"room_name"`
	OccupancyPct float64 `json:"occupancy_pct"`
}

// SupervisorLoad counts assignments proctored by one supervisor.
type SupervisorLoad struct {
	SupervisorID   string `json:"supervisor_id"`
	SupervisorName string `json:"supervisor_name"`
	Count          int    `json:"count"`
}

// DayCount is one point of the exams-by-day timeline.
type DayCount struct {
	DayIndex int `json:"day_index"`
	Count    int `json:"count"`
}

// KpiReport aggregates the current schedule for the dashboard.
type KpiReport struct {
	TotalStudents      int                    `json:"total_students"`
	TotalProfs         int                    `json:"total_profs"`
	TotalExams         int                    `json:"total_exams"`
	ConflictsByDept    map[string]int         `json:"conflicts_by_dept"`
	ConflictsByProgram map[string]int         `json:"conflicts_by_program"`
	RoomOccupancy      []RoomOccupancy        `json:"room_occupancy"`
	ProfLoad           []SupervisorLoad       `json:"prof_load"`
	ExamsByDay         []DayCount             `json:"exams_by_day"`
	QualityScore       float64                `json:"quality_score"`
	OccupancyRate      float64                `json:"occupancy_rate"`
	OptimizationGain   float64                `json:"optimization_gain"`
	RoomWastePct       float64                `json:"room_waste_pct"`
	ValidationStatus   models.StatusHistogram `json:"validation_status"`
}

// ConflictRow is the audit-level view of a single violation.
type ConflictRow struct {
	Type              string `json:"type"`
	ExamID            string `json:"exam_id"`
	ExamName          string `json:"exam_name"`
	ConflictingExamID string `json:"conflicting_exam_id,omitempty"`
	Target            string `json:"target"`
	Detail            string `json:"detail"`
}

// ComputeKPIs aggregates assignments into the dashboard report. Read-only:
// neither the snapshot nor the assignments are mutated. lastGain carries the
// gain_pct of the most recent optimizer run, zero when none happened yet.
func ComputeKPIs(snap *models.Snapshot, assignments []models.Assignment, opts Options, scope Scope, topLoad int, lastGain float64) KpiReport {
	idx := snap.Index()
	scoped := filterByScope(idx, assignments, scope)
	report := Evaluate(idx, scoped, opts)

	kpi := KpiReport{
		TotalStudents:      snap.DistinctStudents(),
		TotalProfs:         len(snap.Supervisors),
		TotalExams:         len(scoped),
		ConflictsByDept:    make(map[string]int),
		ConflictsByProgram: make(map[string]int),
		OptimizationGain:   lastGain,
	}

	for _, v := range report.HardViolations {
		if dept, ok := idx.DepartmentOfExam(v.ExamID); ok {
			kpi.ConflictsByDept[dept.Name]++
		}
		if program, ok := idx.ProgramOfExam(v.ExamID); ok {
			kpi.ConflictsByProgram[program.Name]++
		}
	}

	kpi.RoomOccupancy, kpi.OccupancyRate = roomOccupancy(idx, scoped)
	kpi.ProfLoad = supervisorLoads(idx, scoped, topLoad)
	kpi.ExamsByDay = examsByDay(idx, scoped)
	kpi.RoomWastePct = roomWastePct(idx, scoped)
	kpi.QualityScore = qualityScore(report, len(scoped))

	for _, a := range scoped {
		kpi.ValidationStatus.Add(a.Status)
	}
	return kpi
}

// DetailedConflicts renders the raw violation list with display names, the
// audit companion to the aggregate KPI numbers.
func DetailedConflicts(snap *models.Snapshot, assignments []models.Assignment, opts Options) []ConflictRow {
	idx := snap.Index()
	report := Evaluate(idx, assignments, opts)

	rows := make([]ConflictRow, 0, len(report.HardViolations)+len(report.SoftViolations))
	for _, v := range report.Violations() {
		rows = append(rows, ConflictRow{
			Type:              v.Kind,
			ExamID:            v.ExamID,
			ExamName:          examName(idx, v.ExamID),
			ConflictingExamID: v.ConflictingExamID,
			Target:            v.Target,
			Detail:            v.Detail,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Type != rows[j].Type {
			return rows[i].Type < rows[j].Type
		}
		return rows[i].ExamID < rows[j].ExamID
	})
	return rows
}

func filterByScope(idx *models.SnapshotIndex, assignments []models.Assignment, scope Scope) []models.Assignment {
	if scope.IsZero() {
		return assignments
	}
	out := make([]models.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if scope.ProgramID != "" {
			if program, ok := idx.ProgramOfExam(a.ExamID); !ok || program.ID != scope.ProgramID {
				continue
			}
		}
		if scope.DepartmentID != "" {
			if dept, ok := idx.DepartmentOfExam(a.ExamID); !ok || dept.ID != scope.DepartmentID {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

func roomOccupancy(idx *models.SnapshotIndex, assignments []models.Assignment) ([]RoomOccupancy, float64) {
	var available float64
	for _, slot := range idx.TimeSlots {
		available += slot.EndTime.Sub(slot.StartTime).Minutes()
	}
	if available <= 0 {
		return nil, 0
	}

	assignedMinutes := make(map[string]float64)
	for _, a := range assignments {
		if exam, ok := idx.Exams[a.ExamID]; ok {
			assignedMinutes[a.RoomID] += float64(exam.DurationMinutes)
		}
	}

	out := make([]RoomOccupancy, 0, len(idx.Rooms))
	var sum float64
	for _, room := range idx.Rooms {
		pct := assignedMinutes[room.ID] / available * 100
		sum += pct
		out = append(out, RoomOccupancy{RoomID: room.ID, RoomName: room.Name, OccupancyPct: round2(pct)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccupancyPct != out[j].OccupancyPct {
			return out[i].OccupancyPct > out[j].OccupancyPct
		}
		return out[i].RoomID < out[j].RoomID
	})

	rate := 0.0
	if len(out) > 0 {
		rate = round2(sum / float64(len(out)))
	}
	return out, rate
}

func supervisorLoads(idx *models.SnapshotIndex, assignments []models.Assignment, topN int) []SupervisorLoad {
	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.SupervisorID]++
	}
	out := make([]SupervisorLoad, 0, len(idx.Supervisors))
	for id, sup := range idx.Supervisors {
		out = append(out, SupervisorLoad{SupervisorID: id, SupervisorName: sup.Name, Count: counts[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SupervisorID < out[j].SupervisorID
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func examsByDay(idx *models.SnapshotIndex, assignments []models.Assignment) []DayCount {
	counts := make(map[int]int)
	for _, a := range assignments {
		if slot, ok := idx.TimeSlots[a.TimeSlotID]; ok {
			counts[slot.DayIndex]++
		}
	}
	out := make([]DayCount, 0, len(counts))
	for day, count := range counts {
		out = append(out, DayCount{DayIndex: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayIndex < out[j].DayIndex })
	return out
}

func roomWastePct(idx *models.SnapshotIndex, assignments []models.Assignment) float64 {
	var waste, n float64
	for _, a := range assignments {
		exam, okE := idx.Exams[a.ExamID]
		room, okR := idx.Rooms[a.RoomID]
		if !okE || !okR || room.Capacity <= 0 || room.Capacity < exam.ExpectedHeadcount {
			continue
		}
		waste += float64(room.Capacity-exam.ExpectedHeadcount) / float64(room.Capacity)
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(waste / n * 100)
}

// qualityScore maps the evaluation onto a 0-100 scale: hard violations
// dominate, residual soft cost erodes the remainder.
func qualityScore(report Report, totalAssignments int) float64 {
	if totalAssignments == 0 {
		return 0
	}
	normalizedSoft := report.SoftCost / float64(totalAssignments)
	score := 100 - float64(len(report.HardViolations))*10 - normalizedSoft*10
	return round2(math.Max(0, math.Min(100, score)))
}

func examName(idx *models.SnapshotIndex, examID string) string {
	if exam, ok := idx.Exams[examID]; ok {
		if module, ok := idx.Modules[exam.ModuleID]; ok {
			return module.Name
		}
	}
	return examID
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
