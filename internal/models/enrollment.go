package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses. Any transition between them is allowed.
const (
	EnrollmentStatusActive    EnrollmentStatus = "Active"
	EnrollmentStatusSuspended EnrollmentStatus = "Suspended"
	EnrollmentStatusCancelled EnrollmentStatus = "Cancelled"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusSuspended, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Enrollment links a student to a class. ClassID is cleared when the class is removed.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"studentId"`
	ClassID        *string          `db:"class_id" json:"classId,omitempty"`
	EnrollmentDate time.Time        `db:"enrollment_date" json:"enrollmentDate"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt      *time.Time       `db:"updated_at" json:"updatedAt,omitempty"`
}

// EnrollmentPatch carries optional enrollment changes.
type EnrollmentPatch struct {
	Status *EnrollmentStatus
}

// Apply merges the supplied fields into e.
func (p EnrollmentPatch) Apply(e Enrollment) Enrollment {
	if p.Status != nil {
		e.Status = *p.Status
	}
	return e
}

// EnrollmentView enriches Enrollment with student and class info.
type EnrollmentView struct {
	Enrollment
	StudentName        string  `db:"student_name" json:"studentName"`
	RegistrationNumber string  `db:"registration_number" json:"registrationNumber"`
	ClassCode          *string `db:"class_code" json:"classCode,omitempty"`
	ClassName          *string `db:"class_name" json:"className,omitempty"`
}

// EnrollmentFilter provides filters for searching enrollments. Empty fields are ignored.
type EnrollmentFilter struct {
	EnrollmentID string
	StudentID    string
	ClassID      string
	Status       EnrollmentStatus
}

// Empty reports whether no filter is set.
func (f EnrollmentFilter) Empty() bool {
	return f.EnrollmentID == "" && f.StudentID == "" && f.ClassID == "" && f.Status == ""
}
