package meta

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFilename(t *testing.T) {
	info, err := ParseFilename("NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta")
	if err != nil {
		t.Fatal(err)
	}

	if info.Provider != "NEON" {
		t.Errorf("Provider = %q", info.Provider)
	}
	if info.Domain != "D16" {
		t.Errorf("Domain = %q", info.Domain)
	}
	if info.SiteCode != "ABBY" {
		t.Errorf("SiteCode = %q", info.SiteCode)
	}
	if info.ProductCode != "DP1.00033" {
		t.Errorf("ProductCode = %q", info.ProductCode)
	}
	if info.Date != "2021-01-01" {
		t.Errorf("Date = %q", info.Date)
	}
	if info.Time != "07:30:06" {
		t.Errorf("Time = %q", info.Time)
	}
	if info.DayOfWeek != "Friday" {
		t.Errorf("DayOfWeek = %q", info.DayOfWeek)
	}
	if info.DayOfYear != 1 {
		t.Errorf("DayOfYear = %d", info.DayOfYear)
	}
	if info.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q", info.TimeZone)
	}
	if info.Epoch != 1609486206 {
		t.Errorf("Epoch = %d", info.Epoch)
	}
}

func TestParseFilenameBad(t *testing.T) {
	for _, name := range []string{
		"",
		"random.jpg",
		"NEON.D16.ABBY.meta",
	} {
		if _, err := ParseFilename(name); err == nil {
			t.Errorf("ParseFilename(%q) should fail", name)
		}
	}
}

const metaFileContent = `file_set=NetCam
exposure_limit=453
ip_addr=192.168.1.64
mac_addr=00:40:8C:12:34:56
overlay_text=NEON.D16.ABBY Camera Temperature: 12.5 degrees
unknown_key=ignored
not a key value line
`

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	name := "NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(metaFileContent), 0600); err != nil {
		t.Fatal(err)
	}

	rec, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if rec.Filename != name {
		t.Errorf("Filename = %q", rec.Filename)
	}
	if rec.ExposureLimit != "453" {
		t.Errorf("ExposureLimit = %q", rec.ExposureLimit)
	}
	if rec.IPAddr != "192.168.1.64" {
		t.Errorf("IPAddr = %q", rec.IPAddr)
	}
	if rec.MACAddr != "00:40:8C:12:34:56" {
		t.Errorf("MACAddr = %q", rec.MACAddr)
	}
	if rec.CameraTemperature != "12.5" {
		t.Errorf("CameraTemperature = %q", rec.CameraTemperature)
	}
	if rec.Info.SiteCode != "ABBY" {
		t.Errorf("Info.SiteCode = %q", rec.Info.SiteCode)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		"NEON.D16.ABBY.DP1.00033_2021_01_01_123006.meta",
		"NEON.D16.ABBY.DP1.00033_2021_01_01_073006.meta",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("exposure_limit=1\n"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	// Non-meta files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	records, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Filename > records[1].Filename {
		t.Error("records not sorted by filename")
	}
	if records[0].Info.Time != "07:30:06" {
		t.Errorf("first record time = %q", records[0].Info.Time)
	}
}

func TestScanDirMissing(t *testing.T) {
	if _, err := ScanDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
