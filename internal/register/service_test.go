package register

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
)

// fakeStore is a slice-backed Store for policy tests.
type fakeStore struct {
	mu         sync.Mutex
	records    []Record
	nextID     int
	failCreate error
}

func (f *fakeStore) Create(_ context.Context, rec Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return Record{}, f.failCreate
	}
	f.nextID++
	rec.ID = fmt.Sprintf("rec-%d", f.nextID)
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) ByName(_ context.Context, name string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, r := range f.records {
		if r.FullName == name {
			out = append(out, r)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeStore) All(_ context.Context) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]Record(nil), f.records...)
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeStore) CompleteCheckout(_ context.Context, id string, timeOut time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Status = StatusCheckedOut
			out := timeOut
			f.records[i].TimeOut = &out
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeStore) DeleteAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = nil
	return nil
}

func sortNewestFirst(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].TimeIn.After(records[j].TimeIn)
	})
}

func newTestService(store *fakeStore, now time.Time) *Service {
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCheckInCreatesOpenRecord(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	svc := newTestService(store, now)

	rec, err := svc.CheckIn(context.Background(), CheckInInput{
		FullName: "  Ama Owusu  ",
		Contact:  "0244000000",
		Role:     RoleVisitor,
		Purpose:  "Meeting",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Ama Owusu", rec.FullName)
	assert.Equal(t, StatusCheckedIn, rec.Status)
	assert.Nil(t, rec.TimeOut)
	assert.Equal(t, now, rec.TimeIn)
	assert.Equal(t, "2024-05-01", rec.Date)
	require.NotNil(t, rec.Purpose)
	assert.Equal(t, "Meeting", *rec.Purpose)
	require.NotNil(t, rec.Contact)
	assert.Equal(t, "0244000000", *rec.Contact)
	assert.Nil(t, rec.Email)
}

func TestCheckInRejectsEmptyName(t *testing.T) {
	svc := newTestService(&fakeStore{}, time.Now())

	_, err := svc.CheckIn(context.Background(), CheckInInput{FullName: "   ", Role: RoleStaff})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "fullName", verr.Field)
}

func TestCheckInRejectsInvalidRole(t *testing.T) {
	svc := newTestService(&fakeStore{}, time.Now())

	_, err := svc.CheckIn(context.Background(), CheckInInput{FullName: "Kofi Mensah", Role: "Contractor"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestCheckInRejectsDuplicateActive(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, time.Now())

	_, err := svc.CheckIn(context.Background(), CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	matches, _ := store.ByName(context.Background(), "Ama Owusu")
	assert.Len(t, matches, 1, "rejection must not append a record")
}

func TestCheckInClearsPurposeForStaff(t *testing.T) {
	svc := newTestService(&fakeStore{}, time.Now())

	rec, err := svc.CheckIn(context.Background(), CheckInInput{
		FullName: "Kofi Mensah",
		Role:     RoleStaff,
		Purpose:  "should be dropped",
	})
	require.NoError(t, err)
	assert.Nil(t, rec.Purpose)
}

func TestCheckInStorageFailure(t *testing.T) {
	store := &fakeStore{failCreate: errors.New("connection reset")}
	svc := newTestService(store, time.Now())

	_, err := svc.CheckIn(context.Background(), CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Empty(t, store.records)
}

func TestCheckOutClosesRecord(t *testing.T) {
	store := &fakeStore{}
	in := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, in)

	created, err := svc.CheckIn(context.Background(), CheckInInput{
		FullName: "Ama Owusu",
		Contact:  "0244000000",
		Email:    "ama@example.com",
		Role:     RoleVisitor,
		Purpose:  "Meeting",
	})
	require.NoError(t, err)

	out := in.Add(2 * time.Hour)
	svc.now = func() time.Time { return out }

	closed, err := svc.CheckOut(context.Background(), "Ama Owusu")
	require.NoError(t, err)

	assert.Equal(t, StatusCheckedOut, closed.Status)
	require.NotNil(t, closed.TimeOut)
	assert.False(t, closed.TimeOut.Before(closed.TimeIn))

	// Everything besides status and timeOut is untouched.
	assert.Equal(t, created.ID, closed.ID)
	assert.Equal(t, created.FullName, closed.FullName)
	assert.Equal(t, created.Contact, closed.Contact)
	assert.Equal(t, created.Email, closed.Email)
	assert.Equal(t, created.Role, closed.Role)
	assert.Equal(t, created.Purpose, closed.Purpose)
	assert.Equal(t, created.Date, closed.Date)
	assert.Equal(t, created.TimeIn, closed.TimeIn)
}

func TestCheckOutUnknownName(t *testing.T) {
	svc := newTestService(&fakeStore{}, time.Now())

	_, err := svc.CheckOut(context.Background(), "Nobody Here")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCheckOutAlreadyClosed(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, time.Now())

	_, err := svc.CheckIn(context.Background(), CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})
	require.NoError(t, err)
	_, err = svc.CheckOut(context.Background(), "Ama Owusu")
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), "Ama Owusu")
	require.ErrorIs(t, err, ErrNotCheckedIn, "closed records must yield NotCheckedIn, not NotFound")
}

func TestCheckOutEmptyName(t *testing.T) {
	svc := newTestService(&fakeStore{}, time.Now())

	_, err := svc.CheckOut(context.Background(), "  ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestResolveActiveTieBreak(t *testing.T) {
	// Two open records for one name can only come from the check-in race; the
	// most recently opened one must win, consistently.
	store := &fakeStore{}
	t1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(45 * time.Second)
	store.records = []Record{
		{ID: "a", FullName: "Ama Owusu", Role: RoleVisitor, Date: DateOf(t1), TimeIn: t1, Status: StatusCheckedIn},
		{ID: "b", FullName: "Ama Owusu", Role: RoleVisitor, Date: DateOf(t2), TimeIn: t2, Status: StatusCheckedIn},
	}
	svc := NewService(store)

	for i := 0; i < 3; i++ {
		active, err := svc.ResolveActive(context.Background(), "Ama Owusu")
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, "b", active.ID)
	}
}

func TestResolveActiveNoMatch(t *testing.T) {
	store := &fakeStore{}
	t1 := time.Now().UTC()
	store.records = []Record{
		{ID: "a", FullName: "Ama Owusu", Role: RoleVisitor, Date: DateOf(t1), TimeIn: t1, Status: StatusCheckedOut},
	}
	svc := NewService(store)

	active, err := svc.ResolveActive(context.Background(), "Ama Owusu")
	require.NoError(t, err)
	assert.Nil(t, active)

	active, err = svc.ResolveActive(context.Background(), "Unknown Person")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestLifecycleScenario(t *testing.T) {
	store := &fakeStore{}
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(store, now)
	ctx := context.Background()

	rec, err := svc.CheckIn(ctx, CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor, Purpose: "Meeting"})
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, rec.Status)

	_, err = svc.CheckIn(ctx, CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	svc.now = func() time.Time { return now.Add(time.Hour) }
	closed, err := svc.CheckOut(ctx, "Ama Owusu")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, closed.Status)
	assert.NotNil(t, closed.TimeOut)

	_, err = svc.CheckOut(ctx, "Ama Owusu")
	require.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestClear(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, time.Now())
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, CheckInInput{FullName: "Ama Owusu", Role: RoleVisitor})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))
	records, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
