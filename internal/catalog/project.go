// Package catalog holds the portfolio's project collection and the query
// state (category, search, sort, page) that decides which projects a page
// view shows.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrMalformedDocument is returned when a data document cannot be used as a
// project collection.
var ErrMalformedDocument = errors.New("malformed project document")

const dateLayout = "2006-01-02"

// Date is a calendar date as found in completionDate.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{t.UTC()}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("completionDate: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Project is one portfolio entry. It is never modified after loading.
type Project struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Technologies   []string `json:"technologies"`
	CompletionDate Date     `json:"completionDate"`
	Featured       bool     `json:"featured"`
	DemoURL        string   `json:"demoUrl,omitempty"`
	GithubURL      string   `json:"githubUrl,omitempty"`
}

// Category is a filter bucket. Count comes from the data source as is.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Document is the shape of the static projects file.
type Document struct {
	Projects   []Project  `json:"projects"`
	Categories []Category `json:"categories"`
}

// Decode parses and checks a project document.
func Decode(data []byte) (*Document, error) {
	var raw struct {
		Projects   *[]Project `json:"projects"`
		Categories []Category `json:"categories"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if raw.Projects == nil {
		return nil, fmt.Errorf("%w: missing projects array", ErrMalformedDocument)
	}

	doc := &Document{Projects: *raw.Projects, Categories: raw.Categories}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks that every project has a unique, non-empty id.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Projects))
	for i, p := range d.Projects {
		if p.ID == "" {
			return fmt.Errorf("%w: project %d has no id", ErrMalformedDocument, i)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: duplicate project id %q", ErrMalformedDocument, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}
