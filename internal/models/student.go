package models

import "time"

// Student represents a learner profile bound 1:1 to a user.
type Student struct {
	ID                 string     `db:"id" json:"id"`
	UserID             string     `db:"user_id" json:"userId"`
	RegistrationNumber string     `db:"registration_number" json:"registrationNumber"`
	FullName           string     `db:"full_name" json:"fullName"`
	CPF                string     `db:"cpf" json:"cpf"`
	BirthDate          *time.Time `db:"birth_date" json:"birthDate,omitempty"`
	Address            *string    `db:"address" json:"address,omitempty"`
	PhoneNumber        *string    `db:"phone_number" json:"phoneNumber,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}

// StudentPatch carries optional student changes.
type StudentPatch struct {
	FullName    *string
	BirthDate   *time.Time
	Address     *string
	PhoneNumber *string
}

// Apply merges the supplied fields into s.
func (p StudentPatch) Apply(s Student) Student {
	if p.FullName != nil {
		s.FullName = *p.FullName
	}
	if p.BirthDate != nil {
		birth := *p.BirthDate
		s.BirthDate = &birth
	}
	if p.Address != nil {
		address := *p.Address
		s.Address = &address
	}
	if p.PhoneNumber != nil {
		phone := *p.PhoneNumber
		s.PhoneNumber = &phone
	}
	return s
}

// StudentView joins a student with its user and enrollment counters.
type StudentView struct {
	Student
	UserFullName      string `db:"user_full_name" json:"userFullName"`
	Email             string `db:"email" json:"email"`
	Document          string `db:"document" json:"document"`
	UserActive        bool   `db:"user_active" json:"userActive"`
	TotalEnrollments  int    `db:"total_enrollments" json:"totalEnrollments"`
	ActiveEnrollments int    `db:"active_enrollments" json:"activeEnrollments"`
}

// StudentFilter encapsulates search and paging for listing students.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}

// StudentStatistics aggregates enrollment counters across all students.
type StudentStatistics struct {
	TotalStudents                 int `db:"total_students" json:"totalStudents"`
	TotalEnrollments              int `db:"total_enrollments" json:"totalEnrollments"`
	TotalActiveEnrollments        int `db:"total_active_enrollments" json:"totalActiveEnrollments"`
	StudentsWithActiveEnrollments int `db:"students_with_active_enrollments" json:"studentsWithActiveEnrollments"`
	StudentsWithoutEnrollments    int `db:"students_without_enrollments" json:"studentsWithoutEnrollments"`
}
