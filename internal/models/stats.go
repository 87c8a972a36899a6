package models

import "time"

// ClassOccupancy summarises how full a single class is.
type ClassOccupancy struct {
	ClassID          string  `db:"class_id" json:"class_id"`
	ClassName        string  `db:"class_name" json:"class_name"`
	Capacity         int     `db:"capacity" json:"capacity"`
	Occupancy        int     `db:"occupancy" json:"occupancy"`
	OccupancyPercent float64 `db:"-" json:"occupancy_percent"`
}

// Stats aggregates system-wide counters with per-class occupancy.
type Stats struct {
	TotalStudents    int              `json:"total_students"`
	ActiveStudents   int              `json:"active_students"`
	InactiveStudents int              `json:"inactive_students"`
	TotalClasses     int              `json:"total_classes"`
	Classes          []ClassOccupancy `json:"classes"`
	GeneratedAt      time.Time        `json:"generated_at"`
}
