package models

import "time"

// Class represents a capacity-bounded group students can be assigned to.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail extends Class with its current occupancy.
type ClassDetail struct {
	Class
	Occupancy int `db:"occupancy" json:"occupancy"`
}
