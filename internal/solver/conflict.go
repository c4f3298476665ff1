package solver

import "github.com/univ-fst/exam-planner-api/internal/models"

// conflictGraph maps each exam to the exams it shares at least one enrolled
// student with. Edges are symmetric.
type conflictGraph map[string]map[string]struct{}

// buildConflictGraph inverts the enrollment index into pairwise exam
// conflicts. Two exams conflict when any student sits both.
func buildConflictGraph(idx *models.SnapshotIndex) conflictGraph {
	examsByStudent := make(map[string][]string)
	for examID, students := range idx.StudentsByExam {
		for studentID := range students {
			examsByStudent[studentID] = append(examsByStudent[studentID], examID)
		}
	}

	graph := make(conflictGraph, len(idx.Exams))
	for examID := range idx.Exams {
		graph[examID] = make(map[string]struct{})
	}
	for _, examIDs := range examsByStudent {
		for i := 0; i < len(examIDs); i++ {
			for j := i + 1; j < len(examIDs); j++ {
				u, v := examIDs[i], examIDs[j]
				graph[u][v] = struct{}{}
				graph[v][u] = struct{}{}
			}
		}
	}
	return graph
}

// degree is the conflict fan-out of an exam, used by the draft ordering.
func (g conflictGraph) degree(examID string) int {
	return len(g[examID])
}

// sharedStudent returns one student enrolled in both exams, for reporting.
func sharedStudent(idx *models.SnapshotIndex, examA, examB string) string {
	a := idx.StudentsByExam[examA]
	b := idx.StudentsByExam[examB]
	if len(b) < len(a) {
		a, b = b, a
	}
	for studentID := range a {
		if _, ok := b[studentID]; ok {
			return studentID
		}
	}
	return ""
}
