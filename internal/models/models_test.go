package models

import "testing"

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected FileKind
		ok       bool
	}{
		{
			name:     "full resolution jpg under archive",
			url:      "https://phenocam.nau.edu/data/archive/SITE/2021/01/SITE_2021_01_01_073006.jpg",
			expected: KindFullRes,
			ok:       true,
		},
		{
			name:     "thumbnail",
			url:      "https://phenocam.nau.edu/data/archive/SITE/2021/01/thumbnails/SITE_2021_01_01_073006.jpg",
			expected: KindThumbnail,
			ok:       true,
		},
		{
			name:     "metadata file",
			url:      "https://phenocam.nau.edu/data/archive/SITE/2021/01/SITE_2021_01_01_073006.meta",
			expected: KindMeta,
			ok:       true,
		},
		{
			name: "jpg outside archive",
			url:  "https://phenocam.nau.edu/static/logo.jpg",
			ok:   false,
		},
		{
			name: "non-jpg under archive",
			url:  "https://phenocam.nau.edu/data/archive/SITE/2021/01/readme.txt",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ClassifyURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("ClassifyURL(%q) ok = %v, want %v", tt.url, ok, tt.ok)
			}
			if ok && kind != tt.expected {
				t.Errorf("ClassifyURL(%q) = %q, want %q", tt.url, kind, tt.expected)
			}
		})
	}
}

func TestFileKindValid(t *testing.T) {
	for _, k := range AllKinds() {
		if !k.Valid() {
			t.Errorf("expected %q to be valid", k)
		}
	}
	if FileKind("bogus").Valid() {
		t.Error("expected bogus kind to be invalid")
	}
	if FileKind("").Valid() {
		t.Error("expected empty kind to be invalid")
	}
}

func TestPageDateKey(t *testing.T) {
	d := PageDate{Year: 2021, Month: 1, Day: 5}
	if got := d.Key(); got != "2021/01/05" {
		t.Errorf("Key() = %q, want %q", got, "2021/01/05")
	}
}
