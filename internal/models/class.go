package models

import "time"

// ClassStatus enumerates the lifecycle of a class offering.
type ClassStatus string

const (
	ClassStatusOpen      ClassStatus = "Open"
	ClassStatusClosed    ClassStatus = "Closed"
	ClassStatusCancelled ClassStatus = "Cancelled"
)

// DefaultClassCapacity is assigned to every new class.
const DefaultClassCapacity = 50

// Class represents a course offering.
type Class struct {
	ID          string      `db:"id" json:"id"`
	ClassCode   string      `db:"class_code" json:"classCode"`
	Name        string      `db:"name" json:"name"`
	Description *string     `db:"description" json:"description,omitempty"`
	Capacity    int         `db:"capacity" json:"capacity"`
	Room        *string     `db:"room" json:"room,omitempty"`
	Status      ClassStatus `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   *time.Time  `db:"updated_at" json:"updatedAt,omitempty"`
}

// ClassPatch carries optional class changes.
type ClassPatch struct {
	Room   *string
	Status *ClassStatus
}

// Apply merges the supplied fields into c.
func (p ClassPatch) Apply(c Class) Class {
	if p.Room != nil {
		room := *p.Room
		c.Room = &room
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	return c
}

// Occupancy summarises seat usage. AvailableSeats is not clamped at zero.
type Occupancy struct {
	TotalEnrollments int `json:"totalEnrollments"`
	AvailableSeats   int `json:"availableSeats"`
}

// ComputeOccupancy derives seat accounting from capacity and the enrollment count.
func ComputeOccupancy(c Class, totalEnrollments int) Occupancy {
	return Occupancy{TotalEnrollments: totalEnrollments, AvailableSeats: c.Capacity - totalEnrollments}
}

// ClassView is a class enriched with its enrollment count.
type ClassView struct {
	Class
	TotalEnrollments int `db:"total_enrollments" json:"totalEnrollments"`
	AvailableSeats   int `db:"-" json:"availableSeats"`
}

// WithOccupancy fills AvailableSeats from TotalEnrollments.
func (v ClassView) WithOccupancy() ClassView {
	v.AvailableSeats = ComputeOccupancy(v.Class, v.TotalEnrollments).AvailableSeats
	return v
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Search   string
	Page     int
	PageSize int
}
