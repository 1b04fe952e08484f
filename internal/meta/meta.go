// Package meta extracts structured fields from archive filenames and from
// downloaded .meta camera files.
package meta

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Archive filenames look like "NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta".
var filenameRe = regexp.MustCompile(`^(NEON)\.([^.]+)\.([^.]+)\.([^_]+)_(\d{4})_(\d{2})_(\d{2})_(\d{6})`)

// Camera temperature is embedded in the overlay text, not a field of its own.
var cameraTempRe = regexp.MustCompile(`Camera Temperature:\s*(\d+\.\d+)`)

// FileInfo is the metadata encoded in an archive filename.
type FileInfo struct {
	Provider    string
	Domain      string
	SiteCode    string
	ProductCode string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM:SS
	TimeZone    string
	DayOfWeek   string
	DayOfYear   int
	Epoch       int64
}

// ParseFilename decodes the provider/domain/site/product and capture
// timestamp components of an archive filename. Timestamps are taken as UTC,
// matching how the archive names its files.
func ParseFilename(name string) (FileInfo, error) {
	m := filenameRe.FindStringSubmatch(name)
	if m == nil {
		return FileInfo{}, fmt.Errorf("filename %q does not match the archive naming pattern", name)
	}

	year, _ := strconv.Atoi(m[5])
	month, _ := strconv.Atoi(m[6])
	day, _ := strconv.Atoi(m[7])
	hour, _ := strconv.Atoi(m[8][0:2])
	minute, _ := strconv.Atoi(m[8][2:4])
	second, _ := strconv.Atoi(m[8][4:6])

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	return FileInfo{
		Provider:    m[1],
		Domain:      m[2],
		SiteCode:    m[3],
		ProductCode: m[4],
		Date:        ts.Format("2006-01-02"),
		Time:        ts.Format("15:04:05"),
		TimeZone:    "UTC",
		DayOfWeek:   ts.Weekday().String(),
		DayOfYear:   ts.YearDay(),
		Epoch:       ts.Unix(),
	}, nil
}

// Record is the distilled content of one .meta file plus its filename fields.
type Record struct {
	Filename          string
	ExposureLimit     string
	IPAddr            string
	MACAddr           string
	CameraTemperature string
	Info              FileInfo
}

// ParseFile reads a .meta file (flat key=value lines) and keeps the handful
// of fields worth tabulating. Unknown keys are ignored; a filename that does
// not match the archive pattern leaves Info zeroed rather than failing.
func ParseFile(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("opening meta file: %w", err)
	}
	defer f.Close()

	rec := Record{Filename: filepath.Base(path)}
	if info, err := ParseFilename(rec.Filename); err == nil {
		rec.Info = info
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "exposure_limit":
			rec.ExposureLimit = value
		case "ip_addr":
			rec.IPAddr = value
		case "mac_addr":
			rec.MACAddr = value
		case "overlay_text":
			if m := cameraTempRe.FindStringSubmatch(value); m != nil {
				rec.CameraTemperature = m[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading meta file: %w", err)
	}
	return rec, nil
}

// ScanDir parses every .meta file directly under dir, sorted by filename.
// Individual unreadable files are skipped, not fatal.
func ScanDir(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading meta directory %s: %w", dir, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta") {
			continue
		}
		rec, err := ParseFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Filename < records[j].Filename })
	return records, nil
}
