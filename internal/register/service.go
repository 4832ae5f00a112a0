package register

import (
	"context"
	"strings"
	"time"
)

// Store is the record persistence contract the policies run against.
type Store interface {
	// Create appends a record and returns it with the store-assigned id.
	Create(ctx context.Context, rec Record) (Record, error)
	// ByName returns every record whose full_name equals name, newest first.
	ByName(ctx context.Context, name string) ([]Record, error)
	// All returns the full record set, newest first.
	All(ctx context.Context) ([]Record, error)
	// CompleteCheckout sets status and time_out on one record, touching
	// nothing else. Both fields apply or neither.
	CompleteCheckout(ctx context.Context, id string, timeOut time.Time) error
	// DeleteAll removes every record unconditionally.
	DeleteAll(ctx context.Context) error
}

// CheckInInput carries the submitted check-in form fields.
type CheckInInput struct {
	FullName string
	Contact  string
	Email    string
	Role     Role
	Purpose  string
}

// Service applies the attendance lifecycle rules over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates the lifecycle engine.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ResolveActive returns the single open record for name, or nil when there is
// none. When a race has left more than one open record for the same name, the
// most recently opened one wins so a later duplicate never shadows the session
// a check-out should close.
func (s *Service) ResolveActive(ctx context.Context, name string) (*Record, error) {
	matches, err := s.store.ByName(ctx, name)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	var active *Record
	for i := range matches {
		r := matches[i]
		if !r.Active() {
			continue
		}
		if active == nil || r.TimeIn.After(active.TimeIn) {
			active = &matches[i]
		}
	}
	return active, nil
}

// CheckIn validates and admits a new attendance event. Exactly one record is
// appended on success; no state changes on any rejection path.
func (s *Service) CheckIn(ctx context.Context, in CheckInInput) (Record, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return Record{}, &ValidationError{Field: "fullName", Reason: "must not be empty"}
	}
	if !in.Role.Valid() {
		return Record{}, &ValidationError{Field: "role", Reason: "must be Visitor or Staff"}
	}

	active, err := s.ResolveActive(ctx, name)
	if err != nil {
		return Record{}, err
	}
	if active != nil {
		return Record{}, ErrAlreadyCheckedIn
	}

	now := s.now().UTC()
	rec := Record{
		FullName: name,
		Contact:  optional(in.Contact),
		Email:    optional(in.Email),
		Role:     in.Role,
		Date:     DateOf(now),
		TimeIn:   now,
		Status:   StatusCheckedIn,
	}
	// Purpose only means something for visitors.
	if in.Role == RoleVisitor {
		rec.Purpose = optional(in.Purpose)
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return Record{}, &StorageError{Op: "create", Err: err}
	}
	return created, nil
}

// CheckOut closes the open session for name. ErrNotFound and ErrNotCheckedIn
// are distinct outcomes: the first means the name is unknown, the second that
// every record for it is already closed.
func (s *Service) CheckOut(ctx context.Context, fullName string) (Record, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return Record{}, &ValidationError{Field: "fullName", Reason: "must not be empty"}
	}

	matches, err := s.store.ByName(ctx, name)
	if err != nil {
		return Record{}, &StorageError{Op: "query", Err: err}
	}
	if len(matches) == 0 {
		return Record{}, ErrNotFound
	}

	var active *Record
	for i := range matches {
		r := matches[i]
		if !r.Active() {
			continue
		}
		if active == nil || r.TimeIn.After(active.TimeIn) {
			active = &matches[i]
		}
	}
	if active == nil {
		return Record{}, ErrNotCheckedIn
	}

	out := s.now().UTC()
	if out.Before(active.TimeIn) {
		out = active.TimeIn
	}
	if err := s.store.CompleteCheckout(ctx, active.ID, out); err != nil {
		return Record{}, &StorageError{Op: "update", Err: err}
	}

	closed := *active
	closed.Status = StatusCheckedOut
	closed.TimeOut = &out
	return closed, nil
}

// Snapshot returns the full record set, newest first.
func (s *Service) Snapshot(ctx context.Context) ([]Record, error) {
	records, err := s.store.All(ctx)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	return records, nil
}

// Clear removes every record. Admin-only; callers gate it behind auth.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
