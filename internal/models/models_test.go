package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassPatchApplyOnlySuppliedFields(t *testing.T) {
	room := "Lab 2"
	original := Class{ClassCode: "CLS01", Name: "Math", Status: ClassStatusOpen, Capacity: 50}

	updated := ClassPatch{Room: &room}.Apply(original)
	assert.Equal(t, "Lab 2", *updated.Room)
	assert.Equal(t, ClassStatusOpen, updated.Status)
	assert.Nil(t, original.Room)

	closed := ClassStatusClosed
	updated = ClassPatch{Status: &closed}.Apply(updated)
	assert.Equal(t, ClassStatusClosed, updated.Status)
	assert.Equal(t, "Lab 2", *updated.Room)
}

func TestStudentPatchApply(t *testing.T) {
	name := "Maria Souza"
	birth := time.Date(2001, 5, 3, 0, 0, 0, 0, time.UTC)
	s := StudentPatch{FullName: &name, BirthDate: &birth}.Apply(Student{FullName: "Maria", CPF: "111"})
	assert.Equal(t, "Maria Souza", s.FullName)
	assert.Equal(t, birth, *s.BirthDate)
	assert.Equal(t, "111", s.CPF)
	assert.Nil(t, s.Address)
}

func TestUserPatchApply(t *testing.T) {
	inactive := false
	u := UserPatch{Active: &inactive}.Apply(User{Email: "a@b.com", Active: true})
	assert.False(t, u.Active)
	assert.Equal(t, "a@b.com", u.Email)
}

func TestComputeOccupancyNotClamped(t *testing.T) {
	occ := ComputeOccupancy(Class{Capacity: 2}, 3)
	assert.Equal(t, 3, occ.TotalEnrollments)
	assert.Equal(t, -1, occ.AvailableSeats)

	view := ClassView{Class: Class{Capacity: 50}, TotalEnrollments: 4}.WithOccupancy()
	assert.Equal(t, 46, view.AvailableSeats)
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 0, 21)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 500, 250)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
	assert.Equal(t, 3, p.TotalPages())
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages())
}

func TestPaginationClampsPage(t *testing.T) {
	p := NewPagination(math.MaxInt, MaxPageSize, 0)
	assert.Equal(t, MaxPage, p.Page)
	assert.Equal(t, (MaxPage-1)*MaxPageSize, p.Offset())
	assert.Positive(t, p.Offset())
}

func TestEnrollmentFilterEmpty(t *testing.T) {
	assert.True(t, EnrollmentFilter{}.Empty())
	assert.False(t, EnrollmentFilter{Status: EnrollmentStatusActive}.Empty())
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RoleStudent.Valid())
	assert.False(t, UserRole("SUPERADMIN").Valid())
}
