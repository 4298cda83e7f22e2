// Package enrollment works out which term a student should enlist in next and
// which subjects of that term are still open to them.
package enrollment

import (
	"fmt"
	"sort"
	"strings"
)

const (
	StatusPassed = "passed"
	PassingGrade = 75.0
)

// Row is one curriculum subject with the student's standing in it.
type Row struct {
	SubjectCode  string   `json:"subject_code"`
	SubjectTitle string   `json:"subject_title"`
	Units        float64  `json:"units"`
	YearLevel    int      `json:"year_level"`
	Semester     int      `json:"semester"`
	Grade        *float64 `json:"grade"`
	Status       string   `json:"status"`
}

func (r Row) Term() Term { return Term{YearLevel: r.YearLevel, Semester: r.Semester} }

func (r Row) status() string { return strings.ToLower(strings.TrimSpace(r.Status)) }

// Passed reports whether the row is marked passed or has a passing grade.
func (r Row) Passed() bool {
	return r.status() == StatusPassed || (r.Grade != nil && *r.Grade >= PassingGrade)
}

// attempted reports whether anything was ever recorded for the row.
func (r Row) attempted() bool {
	return r.Grade != nil || r.status() != ""
}

// Term is a (year level, semester) pair; there are two semesters per year.
type Term struct {
	YearLevel int `json:"year_level"`
	Semester  int `json:"semester"`
}

func (t Term) Less(o Term) bool {
	if t.YearLevel != o.YearLevel {
		return t.YearLevel < o.YearLevel
	}
	return t.Semester < o.Semester
}

// Next is the following semester: 1 → 2 of the same year, 2 → 1 of the next year.
func (t Term) Next() Term {
	if t.Semester >= 2 {
		return Term{YearLevel: t.YearLevel + 1, Semester: 1}
	}
	return Term{YearLevel: t.YearLevel, Semester: t.Semester + 1}
}

func (t Term) IsZero() bool { return t == Term{} }

func (t Term) String() string {
	return fmt.Sprintf("Year %d, Semester %d", t.YearLevel, t.Semester)
}

// Assessment is the local recommendation for the next enlistment.
type Assessment struct {
	Current       Term `json:"current"`
	Target        Term `json:"target"`
	CurrentPassed bool `json:"current_passed"`
}

// Terms returns the distinct terms of rows in ascending order.
func Terms(rows []Row) []Term {
	seen := make(map[Term]bool)
	terms := make([]Term, 0)
	for _, r := range rows {
		if t := r.Term(); !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Less(terms[j]) })
	return terms
}

// Assess picks the current term and the term to enlist in.
//
// The current term is the latest term with any recorded grade or status; a
// curriculum listing future terms does not make them current. Without any
// record the first term is current. The target advances past the current term
// only when every one of its rows is passed.
func Assess(rows []Row) (Assessment, bool) {
	terms := Terms(rows)
	if len(terms) == 0 {
		return Assessment{}, false
	}
	byTerm := make(map[Term][]Row, len(terms))
	for _, r := range rows {
		byTerm[r.Term()] = append(byTerm[r.Term()], r)
	}

	current := terms[0]
	for _, t := range terms {
		for _, r := range byTerm[t] {
			if r.attempted() {
				current = t
				break
			}
		}
	}

	a := Assessment{Current: current, Target: current, CurrentPassed: termPassed(byTerm[current])}
	if a.CurrentPassed {
		a.Target = current.Next()
	}
	return a, true
}

func termPassed(rows []Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// AvailableSubjects lists the rows of the target term not yet marked passed.
// A positive yearFilter further keeps only rows of that year level.
func AvailableSubjects(rows []Row, target Term, yearFilter int) []Row {
	avail := make([]Row, 0)
	for _, r := range rows {
		if r.Term() != target || r.status() == StatusPassed {
			continue
		}
		if yearFilter > 0 && r.YearLevel != yearFilter {
			continue
		}
		avail = append(avail, r)
	}
	return avail
}

// TotalUnits sums the units of rows.
func TotalUnits(rows []Row) float64 {
	var total float64
	for _, r := range rows {
		total += r.Units
	}
	return total
}
