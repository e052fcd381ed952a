package mongodb_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLeaveRequestRepository_Overlap(t *testing.T) {
	repo := mongodb.NewLeaveRequestRepository(newTestDatabase(t))
	ctx := context.Background()
	employeeID := primitive.NewObjectID().Hex()

	_, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: employeeID,
		Type:       leave.LeaveTypeCasual,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-12",
		Days:       3,
		Reason:     "trip",
	})
	require.NoError(t, err)

	cases := []struct {
		start, end string
		want       bool
	}{
		{"2024-06-01", "2024-06-09", false},
		{"2024-06-01", "2024-06-10", true},
		{"2024-06-11", "2024-06-11", true},
		{"2024-06-12", "2024-06-20", true},
		{"2024-06-13", "2024-06-20", false},
	}
	for _, c := range cases {
		got, err := repo.HasOverlap(ctx, employeeID, c.start, c.end)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%s..%s", c.start, c.end)
	}

	other, err := repo.HasOverlap(ctx, primitive.NewObjectID().Hex(), "2024-06-10", "2024-06-12")
	require.NoError(t, err)
	assert.False(t, other)
}

func TestLeaveRequestRepository_SingleDecisionWins(t *testing.T) {
	repo := mongodb.NewLeaveRequestRepository(newTestDatabase(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: primitive.NewObjectID().Hex(),
		Type:       leave.LeaveTypeSick,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-10",
		Days:       1,
		Reason:     "flu",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.LeaveRequestStatusPending, created.Status)

	statuses := []leave.LeaveRequestStatus{
		leave.LeaveRequestStatusApproved,
		leave.LeaveRequestStatusRejected,
		leave.LeaveRequestStatusApproved,
		leave.LeaveRequestStatusRejected,
	}
	errs := make([]error, len(statuses))
	var wg sync.WaitGroup
	for i, status := range statuses {
		wg.Add(1)
		go func(i int, status leave.LeaveRequestStatus) {
			defer wg.Done()
			decided := created
			assert.NoError(t, decided.Transition(status, primitive.NewObjectID().Hex(), "", time.Now()))
			errs[i] = repo.UpdateDecision(ctx, decided)
		}(i, status)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, wins)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status.IsTerminal())
	assert.NotNil(t, stored.DecidedBy)

	pending, err := repo.CountByStatus(ctx, leave.LeaveRequestStatusPending)
	require.NoError(t, err)
	assert.Zero(t, pending)

	err = repo.UpdateDecision(ctx, leave.LeaveRequest{ID: primitive.NewObjectID().Hex(), Status: leave.LeaveRequestStatusApproved})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}
