package wpfeed

import (
	"regexp"
	"strings"

	"github.com/freshspot/jobharvest/internal/domain"
)

var (
	hiringRoleRe     = regexp.MustCompile(`(?:Hiring\s*(?:\d{4})?\s*[–-]\s*)([^–-]+)`)
	companyTrailRe   = regexp.MustCompile(`(?i)\s+(Hiring|Job|Career|Recruitment).*$`)
	applyNowSuffixes = []string{" – Apply Now!", " - Apply Now!"}
)

// ParseTitle extracts the company name and job role from a post title.
// Board titles follow two shapes: "Company Off Campus Hiring 2025 – Role"
// and "Company – Role". Anything unrecognizable degrades to the placeholder
// rather than failing the listing.
func ParseTitle(title string) (company, role string) {
	for _, suffix := range applyNowSuffixes {
		title = strings.ReplaceAll(title, suffix, "")
	}
	title = strings.TrimSpace(title)

	if idx := strings.Index(title, "Off Campus"); idx >= 0 {
		company = strings.TrimSpace(title[:idx])
		remaining := title[idx+len("Off Campus"):]

		if m := hiringRoleRe.FindStringSubmatch(remaining); m != nil {
			role = strings.TrimSpace(m[1])
		} else {
			role = strings.TrimSpace(splitDash(remaining))
		}
	} else {
		company, role = splitFirstDash(title)
	}

	company = companyTrailRe.ReplaceAllString(company, "")
	company = strings.TrimSpace(company)
	role = strings.TrimSpace(role)

	if company == "" {
		company = domain.NotSpecified
	}
	if role == "" {
		role = domain.NotSpecified
	}
	return company, role
}

// splitFirstDash splits "Company – Role" on the first dash of either kind.
func splitFirstDash(s string) (before, after string) {
	for _, sep := range []string{"–", "-"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+len(sep):])
		}
	}
	return strings.TrimSpace(s), ""
}

// splitDash returns the text after the first dash, or the whole string.
func splitDash(s string) string {
	_, after := splitFirstDash(s)
	if after == "" {
		return s
	}
	return after
}
