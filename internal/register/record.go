package register

import "time"

// Role classifies who is signing the register.
type Role string

// Roles accepted on check-in.
const (
	RoleVisitor Role = "Visitor"
	RoleStaff   Role = "Staff"
)

// Valid reports whether the role is one of the accepted values.
func (r Role) Valid() bool {
	return r == RoleVisitor || r == RoleStaff
}

// Status tracks where a record is in its lifecycle. The wire values match what
// the register has always stored, so exports stay byte-compatible.
type Status string

const (
	StatusCheckedIn  Status = "checkedIn"
	StatusCheckedOut Status = "checkedOut"
)

// Record is one attendance entry. A record is created at check-in, mutated
// exactly once at check-out, and otherwise only read.
type Record struct {
	ID       string     `json:"id"`
	FullName string     `json:"fullName"`
	Contact  *string    `json:"contact,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Role     Role       `json:"role"`
	Purpose  *string    `json:"purpose,omitempty"`
	Date     string     `json:"date"`
	TimeIn   time.Time  `json:"timeIn"`
	TimeOut  *time.Time `json:"timeOut,omitempty"`
	Status   Status     `json:"status"`
}

// Active reports whether the record holds an open session.
func (r Record) Active() bool {
	return r.Status == StatusCheckedIn
}

// DateOf derives the calendar date stored on a record: the date portion of the
// check-in instant in UTC. Derived once at creation and never recomputed.
func DateOf(timeIn time.Time) string {
	return timeIn.UTC().Format("2006-01-02")
}
