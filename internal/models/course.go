package models

import "time"

type Semester string

const (
	SemesterSpring Semester = "Spring"
	SemesterSummer Semester = "Summer"
	SemesterFall   Semester = "Fall"
	SemesterWinter Semester = "Winter"
)

// Course is one course-catalog document as persisted to the store.
type Course struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	Code        string   `json:"course_code" bson:"course_code"`
	Name        string   `json:"course_name" bson:"course_name"`
	Credits     int      `json:"credits" bson:"credits"`
	Department  string   `json:"department" bson:"department"`
	Semester    Semester `json:"semester" bson:"semester"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`

	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (Course) Collection() string {
	return "courses"
}

func ValidSemesters() []Semester {
	return []Semester{SemesterSpring, SemesterSummer, SemesterFall, SemesterWinter}
}
