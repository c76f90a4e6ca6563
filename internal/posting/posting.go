// Package posting resolves job postings from URLs or caller-supplied text.
// URL acquisition tries a priority-ordered list of providers selected by
// which credentials are configured, accepting the first result that passes
// validation.
package posting

import (
	"fmt"
	"strings"
)

// MinDescLength is the minimum description length for a scrape result to be
// considered valid.
const MinDescLength = 50

// placeholderTitles are titles that signal a failed or blocked scrape rather
// than a real posting.
var placeholderTitles = map[string]struct{}{
	"":                   {},
	"unknown":            {},
	"untitled":           {},
	"just a moment...":   {},
	"access denied":      {},
	"attention required": {},
}

// Posting is a normalized job posting. It is transient per request; nothing
// in this package persists it.
type Posting struct {
	JobTitle string `json:"job_title"`
	Company  string `json:"company"`
	JobDesc  string `json:"job_desc"`
	JobURL   string `json:"job_url,omitempty"`
}

// FromText builds a posting from caller-supplied fields, the direct-input
// alternative to URL acquisition.
func FromText(jobTitle, company, jobDesc, jobURL string) *Posting {
	return &Posting{
		JobTitle: strings.TrimSpace(jobTitle),
		Company:  strings.TrimSpace(company),
		JobDesc:  strings.TrimSpace(jobDesc),
		JobURL:   jobURL,
	}
}

// Validate rejects postings with a placeholder title or a too-short
// description. Providers whose results fail validation are treated as failed.
func (p *Posting) Validate() error {
	title := strings.ToLower(strings.TrimSpace(p.JobTitle))
	if _, bad := placeholderTitles[title]; bad {
		return fmt.Errorf("posting has a placeholder title %q", p.JobTitle)
	}
	if len(strings.TrimSpace(p.JobDesc)) <= MinDescLength {
		return fmt.Errorf("posting description too short (%d chars, need > %d)", len(strings.TrimSpace(p.JobDesc)), MinDescLength)
	}
	return nil
}
