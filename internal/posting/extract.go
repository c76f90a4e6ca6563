package posting

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// selectorSet holds the site-specific CSS selectors for a job board.
type selectorSet struct {
	title       string
	company     string
	description string
}

// siteSelectors maps hostnames to known job-board selectors. Unknown hosts
// fall back to the generic heuristics below.
var siteSelectors = map[string]selectorSet{
	"www.indeed.com": {
		title:       "h1.jobsearch-JobInfoHeader-title",
		company:     "div[data-testid='jobsearch-CompanyInfoContainer']",
		description: "#jobDescriptionText",
	},
	"fr.indeed.com": {
		title:       "h1.jobsearch-JobInfoHeader-title",
		company:     "div[data-testid='jobsearch-CompanyInfoContainer']",
		description: "#jobDescriptionText",
	},
	"www.linkedin.com": {
		title:       "h1.top-card-layout__title",
		company:     "a.topcard__org-name-link",
		description: "div.show-more-less-html__markup",
	},
}

// descriptionSelectors are generic selectors tried in order on unknown sites.
var descriptionSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// ParseHTML extracts a posting from raw HTML, using the hostname's selector
// table when one exists and generic title/description heuristics otherwise.
// The caller is responsible for validating the result.
func ParseHTML(html, jobURL string) (*Posting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	host := hostnameOf(jobURL)

	p := &Posting{JobURL: jobURL}
	if sel, ok := siteSelectors[host]; ok {
		p.JobTitle = cleanWhitespace(doc.Find(sel.title).First().Text())
		p.Company = firstLine(cleanWhitespace(doc.Find(sel.company).First().Text()))
		p.JobDesc = cleanWhitespace(doc.Find(sel.description).First().Text())
	}

	if p.JobTitle == "" {
		p.JobTitle = genericTitle(doc)
	}
	if p.Company == "" {
		p.Company = genericCompany(doc, host)
	}
	if p.JobDesc == "" {
		p.JobDesc = genericDescription(doc)
	}

	return p, nil
}

func genericTitle(doc *goquery.Document) string {
	if title := cleanWhitespace(doc.Find("h1").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	return cleanWhitespace(doc.Find("title").First().Text())
}

func genericCompany(doc *goquery.Document, host string) string {
	if site, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if name := strings.TrimSpace(site); name != "" {
			return name
		}
	}
	return strings.TrimPrefix(host, "www.")
}

func genericDescription(doc *goquery.Document) string {
	// Strip noise before looking for content.
	doc.Find("nav, footer, header, script, style, noscript, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	for _, selector := range descriptionSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := cleanWhitespace(sel.First().Text()); text != "" {
				return text
			}
		}
	}
	return cleanWhitespace(doc.Find("body").Text())
}

func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// cleanWhitespace trims each line and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// firstLine keeps only the first line of multi-line selector output, which
// for company containers usually is the company name.
func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
