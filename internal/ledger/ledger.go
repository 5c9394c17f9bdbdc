// Package ledger implements the append-only CSV staging tier. One ledger
// file exists per job category; the harvest pipeline appends enriched rows
// to it and the reconciler later imports them into the relational store.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/freshspot/jobharvest/internal/domain"
)

// columns is the fixed ledger schema. Order matters: rows are positional
// and older ledgers must stay readable.
var columns = []string{
	"company_name", "job_role", "website_link", "state", "city",
	"experience", "qualification", "batch", "salary_package",
	"job_description", "key_responsibility", "about_company",
	"selection_process", "image", "posted_on",
}

// postedOnFormats are tried in order when parsing a row's timestamp.
// ISO 8601 variants first; the trailing formats cover rows written by
// earlier tooling.
var postedOnFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"02/01/2006",
}

// Record is one staged posting row.
type Record struct {
	CompanyName       string
	JobRole           string
	WebsiteLink       string
	State             string
	City              string
	Experience        string
	Qualification     string
	Batch             string
	SalaryPackage     string
	JobDescription    string
	KeyResponsibility string
	AboutCompany      string
	SelectionProcess  string
	Image             string
	PostedOn          string
}

// FormatPostedOn renders a timestamp the way ledger rows store it.
func FormatPostedOn(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParsePostedOn parses the row's timestamp. ok is false for empty,
// placeholder, or unrecognized values; callers decide how to degrade.
func (r *Record) ParsePostedOn() (time.Time, bool) {
	s := r.PostedOn
	if s == "" || s == domain.NotSpecified {
		return time.Time{}, false
	}
	for _, layout := range postedOnFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (r *Record) row() []string {
	return []string{
		r.CompanyName, r.JobRole, r.WebsiteLink, r.State, r.City,
		r.Experience, r.Qualification, r.Batch, r.SalaryPackage,
		r.JobDescription, r.KeyResponsibility, r.AboutCompany,
		r.SelectionProcess, r.Image, r.PostedOn,
	}
}

func recordFromRow(row []string) Record {
	var r Record
	fields := []*string{
		&r.CompanyName, &r.JobRole, &r.WebsiteLink, &r.State, &r.City,
		&r.Experience, &r.Qualification, &r.Batch, &r.SalaryPackage,
		&r.JobDescription, &r.KeyResponsibility, &r.AboutCompany,
		&r.SelectionProcess, &r.Image, &r.PostedOn,
	}
	for i := range fields {
		if i < len(row) {
			*fields[i] = row[i]
		}
	}
	return r
}

// Ledger is a handle on one category's staging file.
type Ledger struct {
	path string
}

// Open returns a handle for the ledger at path. The file is not created
// until the first append.
func Open(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Exists reports whether the backing file is present and non-empty.
func (l *Ledger) Exists() bool {
	info, err := os.Stat(l.path)
	return err == nil && info.Size() > 0
}

// Append writes records to the end of the ledger in order. The header row
// is written exactly once, when the file is first created.
func (l *Ledger) Append(records ...Record) error {
	if len(records) == 0 {
		return nil
	}

	writeHeader := !l.Exists()
	if writeHeader {
		if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("failed to write ledger header: %w", err)
		}
	}
	for i := range records {
		if err := w.Write(records[i].row()); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger %s: %w", l.path, err)
	}
	return f.Sync()
}

// Records reads every row in the ledger in file order. A missing file is an
// empty ledger, not an error. Rows with a deviant column count are padded
// or truncated rather than rejected; ledgers accrete rows from multiple
// tool versions and one malformed row must not block reconciliation.
func (l *Ledger) Records() ([]Record, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []Record
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger %s: %w", l.path, err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == columns[0] {
				continue
			}
		}
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

// RewriteFiltered rewrites the ledger keeping only rows for which keep
// returns true, and reports how many were dropped. The replacement is
// written to a temp file and renamed into place so a crash mid-rewrite
// never truncates the ledger. When nothing is dropped the file is left
// untouched.
func (l *Ledger) RewriteFiltered(keep func(*Record) bool) (removed int, err error) {
	records, err := l.Records()
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	kept := make([]Record, 0, len(records))
	for i := range records {
		if keep(&records[i]) {
			kept = append(kept, records[i])
		} else {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write ledger header: %w", err)
	}
	for i := range kept {
		if err := w.Write(kept[i].row()); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("failed to write ledger row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to flush temp ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to sync temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp ledger: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		return 0, fmt.Errorf("failed to replace ledger %s: %w", l.path, err)
	}
	return removed, nil
}

// WriteCopy writes the given records to a new file at destPath, always with
// a header. Used by the reconciler to emit a cleaned snapshot without
// touching the source ledger.
func WriteCopy(destPath string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", destPath, err)
	}
	for i := range records {
		if err := w.Write(records[i].row()); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", destPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", destPath, err)
	}
	return f.Sync()
}
