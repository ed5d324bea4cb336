package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atsuki-sakai/salon-system-sub000/internal/domain"
	reservationRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/reservation"
	scheduleRepo "github.com/atsuki-sakai/salon-system-sub000/internal/infra/storage/schedule"
	"github.com/atsuki-sakai/salon-system-sub000/internal/integrations/salonservice"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/keylock"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/logger"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/metrics"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/ptr"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/txmanager"
	"github.com/atsuki-sakai/salon-system-sub000/pkg/types"
)

var jst = time.FixedZone("JST", 9*3600)

// 2025-03-11 is a Tuesday
var tuesday = time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeDirectory struct {
	mu          sync.Mutex
	staff       map[int64]*salonservice.Staff
	menu        *salonservice.Menu
	customer    *salonservice.Customer
	customerErr error
}

func (f *fakeDirectory) GetStaff(_ context.Context, staffID int64) (*salonservice.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.staff[staffID]
	if !ok {
		return nil, salonservice.ErrStaffNotFound
	}
	return s, nil
}

func (f *fakeDirectory) GetMenu(_ context.Context, _, _ int64) (*salonservice.Menu, error) {
	return f.menu, nil
}

func (f *fakeDirectory) GetCustomerWithGracefulDegradation(_ context.Context, _ int64) (*salonservice.Customer, error) {
	return f.customer, f.customerErr
}

type fakeSchedule struct {
	hours         *domain.BusinessHours
	salonHolidays domain.HolidaySet
	staffHolidays domain.HolidaySet
}

func (f *fakeSchedule) GetBusinessHours(_ context.Context, _ int64, _ time.Weekday) (*domain.BusinessHours, error) {
	if f.hours == nil {
		return nil, scheduleRepo.ErrHoursNotFound
	}
	return f.hours, nil
}

func (f *fakeSchedule) GetSalonHolidays(_ context.Context, _ int64, _, _ time.Time) (domain.HolidaySet, error) {
	return f.salonHolidays, nil
}

func (f *fakeSchedule) GetStaffHolidays(_ context.Context, _ int64, _, _ time.Time) (domain.HolidaySet, error) {
	return f.staffHolidays, nil
}

// memReservations in-memory storage without database-level overlap protection
type memReservations struct {
	mu        sync.Mutex
	nextID    int64
	items     []*domain.Reservation
	createErr error
	onCreate  func(m *memReservations)
}

func (m *memReservations) ListBookings(_ context.Context, staffID int64, date time.Time) ([]*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Reservation, 0)
	for _, r := range m.items {
		if r.StaffID == staffID && r.Date.Equal(date) && r.IsActive() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.IsBefore(out[j].StartTime) })
	return out, nil
}

func (m *memReservations) Create(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.onCreate != nil {
		m.onCreate(m)
	}
	if m.createErr != nil {
		return nil, m.createErr
	}

	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.items = append(m.items, r)
	return r, nil
}

func (m *memReservations) add(r *domain.Reservation) {
	m.nextID++
	r.ID = m.nextID
	m.items = append(m.items, r)
}

// passThroughTx runs fn directly and records whether its context was still alive
type passThroughTx struct {
	mu         sync.Mutex
	ctxErrSeen []error
}

func (p *passThroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	p.mu.Lock()
	p.ctxErrSeen = append(p.ctxErrSeen, ctx.Err())
	p.mu.Unlock()
	return fn(ctx)
}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingMetrics) IncReservation(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

type fixture struct {
	directory    *fakeDirectory
	schedule     *fakeSchedule
	reservations *memReservations
	locker       Locker
	tx           *passThroughTx
	metrics      *countingMetrics
	policy       domain.BookingPolicy
	now          time.Time
	lockWait     time.Duration
}

func newFixture() *fixture {
	return &fixture{
		directory: &fakeDirectory{
			staff: map[int64]*salonservice.Staff{
				7: {ID: 7, SalonID: 1, Name: "Yamada", IsActive: true},
				8: {ID: 8, SalonID: 1, Name: "Suzuki", IsActive: true},
			},
			menu:     &salonservice.Menu{ID: 3, SalonID: 1, Name: "Cut", DurationMinutes: 30},
			customer: &salonservice.Customer{ID: 5, Name: "Sato"},
		},
		schedule: &fakeSchedule{
			hours:         &domain.BusinessHours{SalonID: 1, OpenTime: "09:00", CloseTime: "18:00"},
			salonHolidays: domain.NewHolidaySet(),
			staffHolidays: domain.NewHolidaySet(),
		},
		reservations: &memReservations{},
		locker:       keylock.NewRegistry(),
		tx:           &passThroughTx{},
		metrics:      &countingMetrics{outcomes: map[string]int{}},
		policy:       domain.DefaultBookingPolicy(),
		now:          time.Date(2025, 3, 10, 8, 0, 0, 0, jst),
		lockWait:     time.Second,
	}
}

func (f *fixture) useCase() *UseCase {
	uc := NewUseCase(
		f.reservations,
		f.schedule,
		f.directory,
		f.locker,
		f.tx,
		f.policy,
		jst,
		f.lockWait,
		f.metrics,
		logger.NewNop(),
	)
	uc.timeProvider = fixedTime{now: f.now}
	return uc
}

func request(start string) *Request {
	return &Request{
		SalonID:    1,
		StaffID:    7,
		MenuID:     3,
		CustomerID: 5,
		Date:       tuesday,
		StartTime:  types.TimeString(start),
	}
}

func existing(staffID int64, start, end string) *domain.Reservation {
	return &domain.Reservation{
		SalonID:      1,
		StaffID:      staffID,
		Date:         tuesday,
		StartTime:    types.TimeString(start),
		EndTime:      types.TimeString(end),
		Status:       domain.StatusConfirmed,
		CustomerName: "Tanaka",
		StaffName:    "Yamada",
		MenuName:     "Color",
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixture()
	req := request("10:00")
	req.Notes = ptr.Ptr("first visit")

	resp, err := f.useCase().Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, types.TimeString("10:00"), resp.StartTime)
	assert.Equal(t, types.TimeString("10:30"), resp.EndTime)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "Sato", resp.CustomerName)
	assert.Equal(t, "Yamada", resp.StaffName)
	assert.Equal(t, "Cut", resp.MenuName)
	assert.Equal(t, "first visit", *resp.Notes)
	assert.Equal(t, tuesday, resp.Date)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeCreated])
}

func TestExecute_ExplicitEndTime(t *testing.T) {
	f := newFixture()

	req := request("10:00")
	req.EndTime = "10:30"
	_, err := f.useCase().Execute(context.Background(), req)
	require.NoError(t, err)

	req = request("11:00")
	req.EndTime = "12:00"
	_, err = f.useCase().Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)
}

func TestExecute_HalfOpenBoundaries(t *testing.T) {
	f := newFixture()
	f.reservations.add(existing(7, "10:00", "11:00"))
	uc := f.useCase()

	// ends exactly when the existing one starts
	_, err := uc.Execute(context.Background(), request("09:30"))
	require.NoError(t, err)

	// starts exactly when the existing one ends
	_, err = uc.Execute(context.Background(), request("11:00"))
	require.NoError(t, err)

	// one minute of overlap
	_, err = uc.Execute(context.Background(), request("10:59"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(1), conflict.Existing.ID)
}

func TestExecute_Conflict(t *testing.T) {
	f := newFixture()
	f.reservations.add(existing(7, "10:00", "11:00"))

	resp, err := f.useCase().Execute(context.Background(), request("10:30"))
	assert.Nil(t, resp)

	assert.ErrorIs(t, err, ErrConflict)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Existing)
	assert.Equal(t, "Tanaka", conflict.Existing.CustomerName)
	assert.Contains(t, err.Error(), `"Tanaka"`)
	assert.Contains(t, err.Error(), "10:00-11:00")

	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeConflict])
	assert.Zero(t, f.metrics.outcomes[metrics.OutcomeFailed])
}

func TestExecute_ConcurrentIntentsOnlyOneWins(t *testing.T) {
	for _, n := range []int{2, 10} {
		t.Run(fmt.Sprintf("%d clients", n), func(t *testing.T) {
			f := newFixture()
			uc := f.useCase()

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				winners   []*Response
				conflicts []*ConflictError
				others    []error
			)

			start := make(chan struct{})
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					<-start

					resp, err := uc.Execute(context.Background(), request("10:00"))

					mu.Lock()
					defer mu.Unlock()

					var conflict *ConflictError
					switch {
					case err == nil:
						winners = append(winners, resp)
					case errors.As(err, &conflict):
						conflicts = append(conflicts, conflict)
					default:
						others = append(others, err)
					}
				}()
			}
			close(start)
			wg.Wait()

			require.Empty(t, others)
			require.Len(t, winners, 1)
			require.Len(t, conflicts, n-1)
			for _, c := range conflicts {
				require.NotNil(t, c.Existing)
				assert.Equal(t, winners[0].ID, c.Existing.ID)
			}

			all, _ := f.reservations.ListBookings(context.Background(), 7, tuesday)
			assert.Len(t, all, 1)
		})
	}
}

func TestExecute_DifferentStaffDoNotBlock(t *testing.T) {
	f := newFixture()
	registry := keylock.NewRegistry()
	f.locker = registry
	f.lockWait = 100 * time.Millisecond

	// staff 7 is busy on this date
	release, err := registry.Acquire(context.Background(), lockKey(7, tuesday))
	require.NoError(t, err)
	defer release()

	req := request("10:00")
	req.StaffID = 8
	_, err = f.useCase().Execute(context.Background(), req)
	require.NoError(t, err)

	_, err = f.useCase().Execute(context.Background(), request("10:00"))
	assert.ErrorIs(t, err, ErrLockUnavailable)
}

// cancellingLocker cancels the caller's context right after the lock is granted
type cancellingLocker struct {
	inner  Locker
	cancel context.CancelFunc
}

func (c *cancellingLocker) Acquire(ctx context.Context, key string) (keylock.ReleaseFunc, error) {
	release, err := c.inner.Acquire(ctx, key)
	if err == nil {
		c.cancel()
	}
	return release, err
}

func TestExecute_CallerCancellationAfterLockDoesNotAbortCommit(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.locker = &cancellingLocker{inner: keylock.NewRegistry(), cancel: cancel}

	resp, err := f.useCase().Execute(ctx, request("10:00"))
	require.NoError(t, err)
	assert.NotZero(t, resp.ID)

	require.Error(t, ctx.Err())
	require.Len(t, f.tx.ctxErrSeen, 1)
	assert.NoError(t, f.tx.ctxErrSeen[0])
}

func TestExecute_DatabaseOverlapIsReportedAsConflict(t *testing.T) {
	f := newFixture()
	// another instance commits first; the exclusion constraint rejects our insert
	f.reservations.onCreate = func(m *memReservations) {
		m.add(existing(7, "09:45", "10:15"))
	}
	f.reservations.createErr = reservationRepo.ErrOverlap

	_, err := f.useCase().Execute(context.Background(), request("10:00"))

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.NotNil(t, conflict.Existing)
	assert.Equal(t, types.TimeString("09:45"), conflict.Existing.StartTime)
	assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeConflict])
}

func TestExecute_SerializationFailureWithoutOverlapIsRetryable(t *testing.T) {
	f := newFixture()
	f.reservations.createErr = fmt.Errorf("%w: could not serialize access", txmanager.ErrSerializationFailure)

	_, err := f.useCase().Execute(context.Background(), request("10:00"))
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestExecute_CustomerDirectoryDegraded(t *testing.T) {
	f := newFixture()
	f.directory.customer = nil
	f.directory.customerErr = fmt.Errorf("%w: timeout", salonservice.ErrServiceDegraded)

	resp, err := f.useCase().Execute(context.Background(), request("10:00"))
	require.NoError(t, err)
	assert.Empty(t, resp.CustomerName)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *Request)
		wantErr error
	}{
		{"missing customer", func(_ *fixture, req *Request) { req.CustomerID = 0 }, ErrInvalidInput},
		{"malformed start", func(_ *fixture, req *Request) { req.StartTime = "9:00" }, ErrInvalidInput},
		{"start at 24:00", func(_ *fixture, req *Request) { req.StartTime = "24:00" }, ErrInvalidInput},
		{"end before start", func(_ *fixture, req *Request) { req.EndTime = "09:00" }, ErrInvalidInput},
		{"unknown staff", func(_ *fixture, req *Request) { req.StaffID = 99 }, ErrStaffNotFound},
		{"staff of another salon", func(_ *fixture, req *Request) { req.SalonID = 2 }, ErrStaffNotFound},
		{"customer not found", func(f *fixture, _ *Request) {
			f.directory.customer = nil
			f.directory.customerErr = salonservice.ErrCustomerNotFound
		}, ErrCustomerNotFound},
		{"zero menu duration", func(f *fixture, _ *Request) { f.directory.menu.DurationMinutes = 0 }, ErrInvalidMenuDuration},
		{"past date", func(_ *fixture, req *Request) { req.Date = tuesday.AddDate(0, 0, -2) }, ErrInvalidDate},
		{"beyond horizon", func(f *fixture, req *Request) {
			f.policy.AdvanceBookingDays = 7
			req.Date = tuesday.AddDate(0, 0, 14)
		}, ErrDateTooFarInFuture},
		{"too late today", func(f *fixture, _ *Request) {
			f.now = time.Date(2025, 3, 11, 9, 50, 0, 0, jst)
			f.policy.MinBookingNoticeMinutes = 30
		}, ErrTooLateToBook},
		{"staff holiday", func(f *fixture, _ *Request) { f.schedule.staffHolidays = domain.NewHolidaySet(tuesday) }, ErrHoliday},
		{"salon holiday", func(f *fixture, _ *Request) { f.schedule.salonHolidays = domain.NewHolidaySet(tuesday) }, ErrHoliday},
		{"closed weekday", func(f *fixture, _ *Request) { f.schedule.hours = &domain.BusinessHours{IsClosed: true} }, ErrSalonClosed},
		{"no business hours", func(f *fixture, _ *Request) { f.schedule.hours = nil }, ErrSalonClosed},
		{"ends after closing", func(_ *fixture, req *Request) { req.StartTime = "17:45" }, ErrOutsideBusinessHours},
		{"starts before opening", func(_ *fixture, req *Request) { req.StartTime = "08:45" }, ErrOutsideBusinessHours},
		{"crosses midnight", func(f *fixture, req *Request) {
			f.schedule.hours = &domain.BusinessHours{OpenTime: "09:00", CloseTime: "24:00"}
			req.StartTime = "23:45"
		}, ErrInvalidTimeSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := request("10:00")
			tt.mutate(f, req)

			resp, err := f.useCase().Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			assert.Empty(t, f.reservations.items)
			assert.Equal(t, 1, f.metrics.outcomes[metrics.OutcomeFailed])
		})
	}
}

func TestExecute_UntilMidnightIsAllowed(t *testing.T) {
	f := newFixture()
	f.schedule.hours = &domain.BusinessHours{OpenTime: "09:00", CloseTime: "24:00"}

	resp, err := f.useCase().Execute(context.Background(), request("23:30"))
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("24:00"), resp.EndTime)
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "staff:7:2025-03-11", lockKey(7, tuesday))
}

func TestIntervalTimes(t *testing.T) {
	start, end, err := intervalTimes(600, 1440)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), start)
	assert.Equal(t, types.TimeString("24:00"), end)

	_, _, err = intervalTimes(-1, 60)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, types.ErrMinutesOutOfRange)

	_, _, err = intervalTimes(1400, 1441)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, types.ErrMinutesOutOfRange)
}

func TestConflictError_WithoutRecord(t *testing.T) {
	err := error(&ConflictError{})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ErrConflict.Error(), err.Error())
}
