package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/univ-fst/exam-planner-api/internal/models"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/response"
)

// Capability names an action a role may perform. Routes guard on
// capabilities rather than raw role strings so the role matrix lives in
// one place.
type Capability string

const (
	CapRunSolver       Capability = "solver:run"
	CapValidateDept    Capability = "workflow:validate-dept"
	CapApproveFinal    Capability = "workflow:approve-final"
	CapResetWorkflow   Capability = "workflow:reset"
	CapViewWorkflow    Capability = "workflow:view"
	CapViewStats       Capability = "stats:view"
	CapViewTimetable   Capability = "timetable:view"
	CapExportTimetable Capability = "timetable:export"
)

// roleCapabilities is the access matrix. ADMIN and DEAN drive the full
// cycle, HEAD validates their own department, PROFESSOR and STUDENT read.
var roleCapabilities = map[models.UserRole]map[Capability]struct{}{
	models.RoleAdmin: capSet(
		CapRunSolver, CapValidateDept, CapApproveFinal, CapResetWorkflow,
		CapViewWorkflow, CapViewStats, CapViewTimetable, CapExportTimetable,
	),
	models.RoleDean: capSet(
		CapRunSolver, CapApproveFinal, CapResetWorkflow,
		CapViewWorkflow, CapViewStats, CapViewTimetable, CapExportTimetable,
	),
	models.RoleHead: capSet(
		CapValidateDept, CapViewWorkflow, CapViewStats, CapViewTimetable, CapExportTimetable,
	),
	models.RoleProfessor: capSet(
		CapViewTimetable, CapExportTimetable,
	),
	models.RoleStudent: capSet(
		CapViewTimetable,
	),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	out := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		out[c] = struct{}{}
	}
	return out
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role models.UserRole, cap Capability) bool {
	set, ok := roleCapabilities[role]
	if !ok {
		return false
	}
	_, ok = set[cap]
	return ok
}

// Require blocks requests whose authenticated role lacks the capability.
func Require(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !HasCapability(claims.Role, cap) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
