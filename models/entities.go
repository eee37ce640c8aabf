package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Role identifies which side of the app a user belongs to
type Role string

const (
	RoleUser      Role = "user"
	RoleAuthority Role = "authority"
)

// ReportStatus represents the lifecycle status of a report
type ReportStatus string

const (
	StatusPending    ReportStatus = "Pending"
	StatusInProgress ReportStatus = "In Progress"
	StatusResolved   ReportStatus = "Resolved"
)

// Rank orders statuses along the forward-only lifecycle. Unknown statuses rank 0.
func (s ReportStatus) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusInProgress:
		return 2
	case StatusResolved:
		return 3
	}
	return 0
}

// CanTransitionTo reports whether moving from s to next goes forward.
// An unknown current status is treated as Pending.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	cur := s.Rank()
	if cur == 0 {
		cur = StatusPending.Rank()
	}
	return next.Rank() > cur
}

// Priority represents report priority levels
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the three known priorities
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// User represents a citizen or authority profile as mirrored in the session store
type User struct {
	Role          Role   `json:"role"`
	FullName      string `json:"fullName,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Password      string `json:"password,omitempty"`
	Location      string `json:"location,omitempty"`
	IDNumber      string `json:"idNumber,omitempty"`
	IDFile        string `json:"idFile,omitempty"`
	AuthorityRole string `json:"authorityRole,omitempty"`
}

// DisplayName returns the name shown on report forms
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.FullName
}

// Public returns a copy without the password
func (u User) Public() User {
	u.Password = ""
	return u
}

// Report represents a civic-issue report as served by the report backend
type Report struct {
	ID            string       `json:"_id"`
	UserEmail     string       `json:"userEmail"`
	Problem       string       `json:"problem"`
	Subtype       string       `json:"subtype"`
	Priority      Priority     `json:"priority"`
	Description   string       `json:"description"`
	Name          string       `json:"name,omitempty"`
	Phone         string       `json:"phone,omitempty"`
	Area          string       `json:"area"`
	Locality      string       `json:"locality,omitempty"`
	City          string       `json:"city,omitempty"`
	Lat           *float64     `json:"lat"`
	Lng           *float64     `json:"lng"`
	Photo         string       `json:"photo,omitempty"`
	Status        ReportStatus `json:"status"`
	Comment       string       `json:"comment,omitempty"`
	ScheduledAt   string       `json:"scheduledAt,omitempty"`
	EstimatedDays string       `json:"estimatedDays,omitempty"`
	ResolvedPic   string       `json:"resolvedPic,omitempty"`
	UserRating    *int         `json:"userRating,omitempty"`
	CreatedAt     *time.Time   `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" for the report identifier and
// tolerates estimatedDays sent as a number.
func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	aux := struct {
		*plain
		AltID         string          `json:"id"`
		EstimatedDays json.RawMessage `json:"estimatedDays"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.AltID
	}
	if len(aux.EstimatedDays) > 0 && string(aux.EstimatedDays) != "null" {
		var s string
		if err := json.Unmarshal(aux.EstimatedDays, &s); err == nil {
			r.EstimatedDays = s
		} else {
			r.EstimatedDays = strings.Trim(string(aux.EstimatedDays), `"`)
		}
	}
	return nil
}

// HasLocation reports whether both coordinates are known
func (r *Report) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}

// ProblemCategory is one entry of the problem/subtype table
type ProblemCategory struct {
	Label    string   `json:"label"`
	Subtypes []string `json:"subtypes"`
}

// HasSubtype reports whether subtype belongs to this category
func (c ProblemCategory) HasSubtype(subtype string) bool {
	for _, s := range c.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// ProblemCategories drives both the report form and the authority filters
var ProblemCategories = []ProblemCategory{
	{Label: "Garbage", Subtypes: []string{"Overflow", "Illegal dumping", "Odor issues"}},
	{Label: "Street Lights", Subtypes: []string{"Not working", "Flickering", "Broken pole"}},
	{Label: "Water Leakage", Subtypes: []string{"Drainage", "Water management", "Plumbing"}},
	{Label: "Trees", Subtypes: []string{"Fallen tree", "Disease", "Obstruction"}},
	{Label: "Potholes", Subtypes: []string{"Small", "Medium", "Large"}},
	{Label: "Traffic Congestion", Subtypes: []string{"Peak hours", "Accident prone area", "Signal issues"}},
	{Label: "Public Amenities", Subtypes: []string{"Benches", "Public toilets", "Bus shelters"}},
}

// FindCategory looks up a problem category by label
func FindCategory(label string) (ProblemCategory, bool) {
	for _, c := range ProblemCategories {
		if c.Label == label {
			return c, true
		}
	}
	return ProblemCategory{}, false
}

// AuthorityRoles lists the roles an authority can register with
var AuthorityRoles = []string{
	"Municipality Worker",
	"Sanitation Worker",
	"Traffic Authority",
	"Police",
	"Other",
}

// Draft holds an authority's unsent inputs for one report
type Draft struct {
	Comment       string `json:"comment,omitempty"`
	ScheduleDate  string `json:"scheduleDate,omitempty"`
	ScheduleTime  string `json:"scheduleTime,omitempty"`
	EstimatedDays string `json:"estimatedDays,omitempty"`
}

// IsEmpty reports whether the draft carries no input
func (d Draft) IsEmpty() bool {
	return d == Draft{}
}

// StatusCounts aggregates reports by status. Pending is the complement of
// InProgress and Resolved so that Total always equals the sum of the three.
type StatusCounts struct {
	Total      int `json:"total"`
	InProgress int `json:"progress"`
	Resolved   int `json:"resolved"`
	Pending    int `json:"pending"`
}

// CountStatuses computes StatusCounts over reports
func CountStatuses(reports []Report) StatusCounts {
	c := StatusCounts{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case StatusInProgress:
			c.InProgress++
		case StatusResolved:
			c.Resolved++
		}
	}
	c.Pending = c.Total - c.InProgress - c.Resolved
	return c
}
