package learnapi

import (
	"strings"
	"time"
)

// Certification is a search result with resource type "certification".
type Certification struct {
	UID          string   `json:"uid"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	ResourceType string   `json:"resource_type"`
	LastModified string   `json:"last_modified"`
	Levels       []string `json:"levels"`
	Roles        []string `json:"roles"`
	Products     []string `json:"products"`
	Summary      string   `json:"summary"`
	// Exams holds exam uids such as "exam.az-104".
	Exams []string `json:"exams"`
}

// Exam is a search result with resource type "examination".
type Exam struct {
	UID          string   `json:"uid"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	ResourceType string   `json:"resource_type"`
	LastModified string   `json:"last_modified"`
	Levels       []string `json:"levels"`
	Products     []string `json:"products"`
}

// Content is any other learning content (modules, learning paths).
type Content struct {
	UID               string   `json:"uid"`
	Title             string   `json:"title"`
	URL               string   `json:"url"`
	ResourceType      string   `json:"resource_type"`
	LastModified      string   `json:"last_modified"`
	DurationInMinutes int      `json:"duration_in_minutes"`
	NumberOfChildren  int      `json:"number_of_children"`
	Products          []string `json:"products"`
	Roles             []string `json:"roles"`
	Levels            []string `json:"levels"`
}

// ParseLastModified reads the "M/D/YYYY hh:mm:ss AM" timestamps the api
// returns and keeps the calendar date.
func ParseLastModified(value string) (time.Time, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return time.Time{}, false
	}
	date, err := time.Parse("1/2/2006", fields[0])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
