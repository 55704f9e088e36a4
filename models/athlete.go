// Package models defines data structures used across the application.
// File: models/athlete.go
package models

import "time"

// ----------------------- athlete model -----------------------

// Registration age bounds enforced before a record is created.
const (
	MinAge = 7
	MaxAge = 20
)

// Athlete is one registration record. ID is the document id assigned by the
// document service; AthleteID is the human-readable registration code
// generated at registration time (e.g. "ID-26-348201").
type Athlete struct {
	ID          string    `json:"id,omitempty"`
	AthleteID   string    `json:"athleteId"`
	FirstName   string    `json:"firstName"`
	MiddleName  string    `json:"middleName,omitempty"`
	LastName    string    `json:"lastName"`
	DOB         string    `json:"dob"` // YYYY-MM-DD
	Gender      string    `json:"gender"`
	Sport       string    `json:"sport"`
	ParentPhone string    `json:"parentPhone"`
	HomeAddress string    `json:"homeAddress"`
	Category    string    `json:"category,omitempty"`
	Photo       string    `json:"photo,omitempty"` // base64 JPEG, 400x400
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

// FullName returns the display name used on exports and ID cards.
func (a Athlete) FullName() string {
	if a.MiddleName != "" {
		return a.FirstName + " " + a.MiddleName + " " + a.LastName
	}
	return a.FirstName + " " + a.LastName
}

// AgeAt computes the athlete's age in whole years at the given instant.
// A malformed date of birth reports -1.
func (a Athlete) AgeAt(now time.Time) int {
	dob, err := time.Parse("2006-01-02", a.DOB)
	if err != nil {
		return -1
	}
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	return age
}

// SportsList is the fixed set of sports offered at the camp.
var SportsList = []string{
	"Football", "Basketball", "Athletics", "Swimming",
	"Tennis", "Volleyball", "Combat Sports",
}
