// Package export writes lead reports as CSV files for download.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/flameguard/flameguard-site/internal/config"
	"github.com/flameguard/flameguard-site/internal/db/models"
)

// utf8BOM makes spreadsheet applications detect the encoding of Cyrillic text.
const utf8BOM = "\ufeff"

// TimeLayout formats timestamps in reports.
const TimeLayout = "2006-01-02 15:04:05"

// Header is the first row of a lead report.
var Header = []string{ //nolint:gochecknoglobals
	"id", "created_at", "name", "phone", "email", "company", "message",
	"source", "status", "priority", "consent", "notes",
}

// Report describes a written report file.
type Report struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	Size      int64     `json:"size"`
	HumanSize string    `json:"human_size"`
	CreatedAt time.Time `json:"created_at"`
}

// Writer writes reports into a directory served under a URL prefix.
type Writer struct {
	dir       string
	urlPrefix string
	now       func() time.Time
}

// New creates a writer from the export settings.
func New(cfg config.Export) *Writer {
	return &Writer{
		dir:       cfg.Dir,
		urlPrefix: strings.TrimSuffix(cfg.URLPrefix, "/"),
		now:       time.Now,
	}
}

// Dir returns the report directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteLeadsCSV encodes leads as CSV to out.
func WriteLeadsCSV(out io.Writer, leads []models.Lead) error {
	if _, err := io.WriteString(out, utf8BOM); err != nil {
		return err //nolint:wrapcheck
	}

	cw := csv.NewWriter(out)

	if err := cw.Write(Header); err != nil {
		return err //nolint:wrapcheck
	}

	for i := range leads {
		l := &leads[i]

		if err := cw.Write([]string{
			strconv.FormatUint(l.ID, 10),
			l.CreatedAt.Format(TimeLayout),
			l.Name,
			l.Phone,
			l.Email,
			l.Company,
			l.Message,
			l.Source,
			string(l.Status),
			string(l.Priority),
			strconv.FormatBool(l.Consent),
			l.Notes,
		}); err != nil {
			return err //nolint:wrapcheck
		}
	}

	cw.Flush()

	return cw.Error() //nolint:wrapcheck
}

// Leads writes a lead report file.
func (w *Writer) Leads(leads []models.Lead) (*Report, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	now := w.now()
	name := "leads-" + now.Format("20060102-150405") + "-" + uuid.NewString()[:8] + ".csv"
	full := filepath.Join(w.dir, name)

	f, err := os.Create(full)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	bw := bufio.NewWriter(f)

	err = WriteLeadsCSV(bw, leads)
	if err == nil {
		err = bw.Flush()
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = os.Remove(full)
		return nil, fmt.Errorf("write report: %w", err)
	}

	st, err := os.Stat(full)
	if err != nil {
		return nil, fmt.Errorf("stat report: %w", err)
	}

	return &Report{
		Name:      name,
		URL:       path.Join(w.urlPrefix, name),
		Rows:      len(leads),
		Size:      st.Size(),
		HumanSize: humanize.Bytes(uint64(st.Size())),
		CreatedAt: now,
	}, nil
}

// Purge removes reports older than maxAge and returns how many were deleted.
func (w *Writer) Purge(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("read export dir: %w", err)
	}

	cutoff := w.now().Add(-maxAge)
	removed := 0

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}

		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		if err = os.Remove(filepath.Join(w.dir, e.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}
