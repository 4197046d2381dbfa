package lists

import (
	"fmt"
	"time"
)

// MentorRoster is the ordered list of mentor handles used for the
// good-first-issue mentor ping. Selection rotates by day so the same
// mentor is named for every assignment on a given day.
type MentorRoster struct {
	mentors []string
}

// NewMentorRoster builds a roster from explicit handles.
func NewMentorRoster(mentors []string) *MentorRoster {
	return &MentorRoster{mentors: mentors}
}

// LoadMentorRoster builds a roster from a line-oriented list resource.
// Unlike the spam list, a missing roster is an error: the mentor
// handler cannot run without one (the workflow run is marked failed so
// maintainers see it).
func LoadMentorRoster(load Loader) (*MentorRoster, error) {
	if load == nil {
		return nil, fmt.Errorf("no mentor roster source configured")
	}
	data, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load mentor roster: %w", err)
	}
	mentors := parseLines(data)
	if len(mentors) == 0 {
		return nil, fmt.Errorf("mentor roster is empty")
	}
	return &MentorRoster{mentors: mentors}, nil
}

// MentorFor returns the mentor for the given time's UTC day, rotating
// through the roster by day index.
func (r *MentorRoster) MentorFor(t time.Time) (string, error) {
	if r == nil || len(r.mentors) == 0 {
		return "", fmt.Errorf("mentor roster is empty")
	}
	dayIndex := int(t.UTC().Unix() / 86400)
	return r.mentors[dayIndex%len(r.mentors)], nil
}

// Len returns the roster size.
func (r *MentorRoster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.mentors)
}
