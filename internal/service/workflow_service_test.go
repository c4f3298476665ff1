package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univ-fst/exam-planner-api/internal/dto"
	"github.com/univ-fst/exam-planner-api/internal/models"
	"github.com/univ-fst/exam-planner-api/internal/solver"
	appErrors "github.com/univ-fst/exam-planner-api/pkg/errors"
	"github.com/univ-fst/exam-planner-api/pkg/runner"
)

func newWorkflowFixture(store *stubAssignmentStore) *WorkflowService {
	return NewWorkflowService(
		&stubSnapshots{snap: fixtureSnapshot()},
		store,
		runner.NewGuard(nil),
		nil, nil,
		solver.Options{Weights: solver.DefaultWeights()},
	)
}

func TestValidateDepartmentPromotesCleanDepartment(t *testing.T) {
	store := &stubAssignmentStore{
		assignments: fixtureAssignments(),
		histogram:   models.StatusHistogram{Draft: 1, DeptApproved: 2},
	}
	svc := newWorkflowFixture(store)

	resp, err := svc.ValidateDepartment(context.Background(), "d1")
	require.NoError(t, err)

	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, "d1:DRAFT>DEPT_APPROVED", store.statusUpdates[0])
	assert.Equal(t, 2, resp.ValidationStatus.DeptApproved)
}

func TestValidateDepartmentRefusesUnresolvedConflicts(t *testing.T) {
	assignments := fixtureAssignments()
	assignments[1].TimeSlotID = "s1" // e1 and e2 now collide on room, supervisor, and student
	store := &stubAssignmentStore{assignments: assignments}
	svc := newWorkflowFixture(store)

	_, err := svc.ValidateDepartment(context.Background(), "d1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnresolvedConflicts))
	assert.Empty(t, store.statusUpdates, "a conflicted department must not be promoted")
}

func TestValidateDepartmentIgnoresForeignConflicts(t *testing.T) {
	assignments := fixtureAssignments()
	assignments[1].TimeSlotID = "s1" // the Mathematics exams collide
	store := &stubAssignmentStore{assignments: assignments}
	svc := newWorkflowFixture(store)

	// Physics is untouched by the Mathematics collision.
	_, err := svc.ValidateDepartment(context.Background(), "d2")
	require.NoError(t, err)
	require.Len(t, store.statusUpdates, 1)
	assert.Equal(t, "d2:DRAFT>DEPT_APPROVED", store.statusUpdates[0])
}

func TestValidateDepartmentUnknown(t *testing.T) {
	store := &stubAssignmentStore{assignments: fixtureAssignments()}
	svc := newWorkflowFixture(store)

	_, err := svc.ValidateDepartment(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestValidateDepartmentRefusedDuringRun(t *testing.T) {
	store := &stubAssignmentStore{assignments: fixtureAssignments()}
	svc := newWorkflowFixture(store)

	require.True(t, svc.guard.TryAcquire("optimize"))
	defer svc.guard.Release()

	_, err := svc.ValidateDepartment(context.Background(), "d1")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrRunInProgress))
}

// gatedAssignmentStore parks List until released, holding the transition
// mid-flight so concurrent acquisition can be observed.
type gatedAssignmentStore struct {
	*stubAssignmentStore
	entered chan struct{}
	release chan struct{}
}

func (s *gatedAssignmentStore) List(ctx context.Context) ([]models.Assignment, error) {
	close(s.entered)
	<-s.release
	return s.stubAssignmentStore.List(ctx)
}

func TestValidateDepartmentExcludesRunsWhilePromoting(t *testing.T) {
	store := &gatedAssignmentStore{
		stubAssignmentStore: &stubAssignmentStore{assignments: fixtureAssignments()},
		entered:             make(chan struct{}),
		release:             make(chan struct{}),
	}
	svc := NewWorkflowService(
		&stubSnapshots{snap: fixtureSnapshot()},
		store,
		runner.NewGuard(nil),
		nil, nil,
		solver.Options{Weights: solver.DefaultWeights()},
	)

	done := make(chan error, 1)
	go func() {
		_, err := svc.ValidateDepartment(context.Background(), "d1")
		done <- err
	}()

	<-store.entered
	assert.False(t, svc.guard.TryAcquire("draft"),
		"a run must not start while a transition is promoting rows")

	close(store.release)
	require.NoError(t, <-done)

	require.True(t, svc.guard.TryAcquire("draft"), "the transition must release the guard")
	svc.guard.Release()
}

func TestApproveFinalBlockedByPendingDepartments(t *testing.T) {
	store := &stubAssignmentStore{pending: []string{"Mathematics"}}
	svc := newWorkflowFixture(store)

	_, err := svc.ApproveFinal(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPendingApproval))
}

func TestApproveFinalPromotesEverything(t *testing.T) {
	store := &stubAssignmentStore{
		promoted:  3,
		histogram: models.StatusHistogram{FinalApproved: 3},
	}
	svc := newWorkflowFixture(store)

	resp, err := svc.ApproveFinal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, resp.ValidationStatus.FinalApproved)
}

func TestApproveFinalWithNothingToPromote(t *testing.T) {
	store := &stubAssignmentStore{promoted: 0}
	svc := newWorkflowFixture(store)

	_, err := svc.ApproveFinal(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestResetDemotesDepartment(t *testing.T) {
	store := &stubAssignmentStore{
		resetCount: 2,
		histogram:  models.StatusHistogram{Draft: 3},
	}
	svc := newWorkflowFixture(store)

	resp, err := svc.Reset(context.Background(), dto.ResetRequest{DepartmentID: "d1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, store.resets)
	assert.False(t, store.resetForce)
	assert.Equal(t, 3, resp.ValidationStatus.Draft)
}

func TestResetWithoutDepartmentResetsInstitution(t *testing.T) {
	store := &stubAssignmentStore{
		resetCount: 5,
		histogram:  models.StatusHistogram{Draft: 5},
	}
	svc := newWorkflowFixture(store)

	resp, err := svc.Reset(context.Background(), dto.ResetRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, store.resets, "an empty department means every department")
	assert.Equal(t, 5, resp.ValidationStatus.Draft)
}

func TestResetFinalizedRequiresForce(t *testing.T) {
	store := &stubAssignmentStore{
		resetCount: 0,
		histogram:  models.StatusHistogram{FinalApproved: 3},
	}
	svc := newWorkflowFixture(store)

	_, err := svc.Reset(context.Background(), dto.ResetRequest{DepartmentID: "d1"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrFinalized))

	store.resetCount = 3
	store.histogram = models.StatusHistogram{Draft: 3}
	resp, err := svc.Reset(context.Background(), dto.ResetRequest{DepartmentID: "d1", Force: true})
	require.NoError(t, err)
	assert.True(t, store.resetForce)
	assert.Equal(t, 3, resp.ValidationStatus.Draft)
}

func TestStatusSummaryFlags(t *testing.T) {
	store := &stubAssignmentStore{
		histogram: models.StatusHistogram{DeptApproved: 3},
	}
	svc := newWorkflowFixture(store)

	summary, err := svc.StatusSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.ReadyForFinal)
	assert.False(t, summary.ScheduleIsFinalized)

	store.histogram = models.StatusHistogram{FinalApproved: 3}
	summary, err = svc.StatusSummary(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.ScheduleIsFinalized)
}
