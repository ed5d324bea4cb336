package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	reservationRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/reservation"
	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/internal/service/reservations/models"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/ptr"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/txmanager"
)

const (
	customerID = int64(5)
	managerID  = int64(100)
	strangerID = int64(200)
)

type fakeRepo struct {
	items      map[int64]*domain.Reservation
	lastFilter domain.ReservationsFilter
	cancelErr  error
	listErr    error
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeRepo) GetWithFilter(_ context.Context, filter domain.ReservationsFilter) ([]*domain.Reservation, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Reservation
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRepo) Cancel(_ context.Context, id int64, status domain.ReservationStatus, reason *string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	r := f.items[id]
	r.Status = status
	r.CancellationReason = reason
	now := time.Now()
	r.CancelledAt = &now
	return nil
}

func (f *fakeRepo) MoveToTrash(_ context.Context, id int64) error {
	now := time.Now()
	f.items[id].TrashedAt = &now
	return nil
}

type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeSalons struct {
	err error
}

func (f *fakeSalons) GetSalon(_ context.Context, salonID int64) (*salonservice.Salon, error) {
	if f.err != nil {
		return nil, f.err
	}
	if salonID != 1 {
		return nil, salonservice.ErrSalonNotFound
	}
	return &salonservice.Salon{ID: 1, Name: "Ginza", ManagerIDs: []int64{managerID}}, nil
}

func newService(t *testing.T) (*Service, *fakeRepo, *fakeSalons) {
	t.Helper()

	repo := &fakeRepo{items: map[int64]*domain.Reservation{
		42: {
			ID:         42,
			SalonID:    1,
			StaffID:    7,
			MenuID:     3,
			CustomerID: customerID,
			Date:       time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			StartTime:  "10:00",
			EndTime:    "11:30",
			Status:     domain.StatusConfirmed,
		},
	}}
	salons := &fakeSalons{}
	return NewService(repo, &fakeTx{}, salons, logger.NewNop()), repo, salons
}

func TestGetByID_Access(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "customer", userID: customerID},
		{name: "salon manager", userID: managerID},
		{name: "stranger", userID: strangerID, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(t)

			resp, err := svc.GetByID(context.Background(), 42, tt.userID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "2025-03-11", resp.Date)
			assert.Equal(t, "10:00", resp.StartTime)
			assert.Equal(t, 90, resp.DurationMinutes)
		})
	}
}

func TestGetByID_Errors(t *testing.T) {
	svc, _, salons := newService(t)

	_, err := svc.GetByID(context.Background(), 1, customerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = svc.GetByID(context.Background(), 0, customerID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	salons.err = errors.New("timeout")
	_, err = svc.GetByID(context.Background(), 42, strangerID)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestGetSalonReservations(t *testing.T) {
	svc, repo, _ := newService(t)
	date := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

	resp, err := svc.GetSalonReservations(context.Background(), &models.GetSalonReservationsRequest{
		UserID:    managerID,
		SalonID:   1,
		StaffID:   ptr.Ptr(int64(7)),
		StartDate: &date,
		EndDate:   &date,
		Status:    ptr.Ptr("confirmed"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)

	assert.Equal(t, int64(1), repo.lastFilter.SalonID)
	assert.True(t, repo.lastFilter.IsSingleDay())
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, domain.StatusConfirmed, *repo.lastFilter.Status)
}

func TestGetSalonReservations_Errors(t *testing.T) {
	start := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	tests := []struct {
		name    string
		req     *models.GetSalonReservationsRequest
		wantErr error
	}{
		{
			name:    "not a manager",
			req:     &models.GetSalonReservationsRequest{UserID: customerID, SalonID: 1},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "unknown salon",
			req:     &models.GetSalonReservationsRequest{UserID: managerID, SalonID: 2},
			wantErr: ErrSalonNotFound,
		},
		{
			name:    "invalid status",
			req:     &models.GetSalonReservationsRequest{UserID: managerID, SalonID: 1, Status: ptr.Ptr("pending")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "inverted period",
			req:     &models.GetSalonReservationsRequest{UserID: managerID, SalonID: 1, StartDate: &start, EndDate: &end},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newService(t)

			_, err := svc.GetSalonReservations(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetCustomerReservations(t *testing.T) {
	svc, repo, _ := newService(t)

	resp, err := svc.GetCustomerReservations(context.Background(), &models.GetCustomerReservationsRequest{UserID: customerID})
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)
	assert.Equal(t, customerID, ptr.Deref(repo.lastFilter.CustomerID, 0))
	assert.True(t, repo.lastFilter.IncludeInactive)
	assert.False(t, repo.lastFilter.IncludeTrashed)

	repo.listErr = errors.New("connection reset")
	_, err = svc.GetCustomerReservations(context.Background(), &models.GetCustomerReservationsRequest{UserID: customerID})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		wantStatus domain.ReservationStatus
		wantErr    error
	}{
		{name: "by customer", userID: customerID, wantStatus: domain.StatusCancelledByCustomer},
		{name: "by manager", userID: managerID, wantStatus: domain.StatusCancelledBySalon},
		{name: "by stranger", userID: strangerID, wantErr: ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			reason := "fever"

			err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{
				UserID:             tt.userID,
				CancellationReason: &reason,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.StatusConfirmed, repo.items[42].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, repo.items[42].Status)
			assert.Equal(t, "fever", ptr.Deref(repo.items[42].CancellationReason, ""))
		})
	}
}

func TestCancel_Rejections(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.items[42].Status = domain.StatusCancelledBySalon

		err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID})
		assert.ErrorIs(t, err, ErrCannotCancel)
	})

	t.Run("reason too long", func(t *testing.T) {
		svc, _, _ := newService(t)
		reason := strings.Repeat("я", domain.MaxCancellationReasonLength+1)

		err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID, CancellationReason: &reason})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("cancelled concurrently", func(t *testing.T) {
		svc, repo, _ := newService(t)
		repo.cancelErr = reservationRepo.ErrReservationNotFound

		err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID})
		assert.ErrorIs(t, err, ErrCannotCancel)
	})
}

func TestCancel_Transaction(t *testing.T) {
	t.Run("runs in one transaction", func(t *testing.T) {
		svc, repo, _ := newService(t)
		tx := svc.txManager.(*fakeTx)

		require.NoError(t, svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID}))
		assert.Equal(t, 1, tx.calls)
		assert.Equal(t, domain.StatusCancelledByCustomer, repo.items[42].Status)
	})

	t.Run("begin failure", func(t *testing.T) {
		svc, repo, _ := newService(t)
		tx := svc.txManager.(*fakeTx)
		tx.err = fmt.Errorf("%w: connection refused", txmanager.ErrBeginTx)

		err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID})
		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, domain.StatusConfirmed, repo.items[42].Status)
	})

	t.Run("invalid reason skips transaction", func(t *testing.T) {
		svc, _, _ := newService(t)
		tx := svc.txManager.(*fakeTx)
		reason := strings.Repeat("я", domain.MaxCancellationReasonLength+1)

		err := svc.Cancel(context.Background(), 42, &models.CancelReservationRequest{UserID: customerID, CancellationReason: &reason})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Zero(t, tx.calls)
	})
}

func TestMoveToTrash(t *testing.T) {
	svc, repo, _ := newService(t)

	err := svc.MoveToTrash(context.Background(), 42, customerID)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Nil(t, repo.items[42].TrashedAt)

	require.NoError(t, svc.MoveToTrash(context.Background(), 42, managerID))
	assert.NotNil(t, repo.items[42].TrashedAt)

	// Повторный перенос не считается ошибкой
	require.NoError(t, svc.MoveToTrash(context.Background(), 42, managerID))
}
