// Package parse turns one archive day page into a structured catalog.
//
// The extraction is deliberately positional: the archive serves a fixed
// template where the #browse_siteinfo block's first link is the site name and
// the 2nd/3rd links are year and month. A template change upstream breaks
// this parser loudly rather than silently, which is the intent.
package parse

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"phenofetch/internal/models"
)

const (
	siteInfoSelector   = "div#browse_siteinfo"
	imageEntrySelector = "div.col-6.col-sm-4.col-md-3.col-lg-2.px-1"
	timeLabelSelector  = "span.imglabel small"
	metaLinkSelector   = `a[href$=".meta"]`
)

var (
	// Day number sits between the month link and the next-day link, e.g.
	// ".../01/ 15 <a ...". Matched against the block's inner HTML because the
	// anchor tag is part of the pattern.
	dayPrimaryRe = regexp.MustCompile(`/(\d+)\s*<`)
	// Fallback: digits trailing the block text when no next-day link exists.
	dayFallbackRe = regexp.MustCompile(`/(\d+)\s*$`)
	// "07:00:06 UTC-8" -> time and timezone.
	timeLabelRe = regexp.MustCompile(`(\d+:\d+:\d+)\s+(.+)`)
)

// DayPage parses the HTML of one catalog day page. It returns (nil, nil) when
// the page lacks the site-info container, which the archive serves for days
// without captures; that is a normal outcome, not a failure.
func DayPage(htmlContent, baseURL string) (*models.DayCatalog, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing day page html: %w", err)
	}

	siteInfo := doc.Find(siteInfoSelector).First()
	if siteInfo.Length() == 0 {
		return nil, nil
	}

	catalog := &models.DayCatalog{
		SiteName:    siteName(siteInfo),
		Date:        pageDate(siteInfo),
		DayOfYear:   labelInt(siteInfo, "Day-of-Year:"),
		TotalImages: labelInt(siteInfo, "Number of Images:"),
	}

	doc.Find(imageEntrySelector).Each(func(_ int, entry *goquery.Selection) {
		catalog.Images = append(catalog.Images, imageEntry(entry, baseURL))
	})

	return catalog, nil
}

// siteName takes the text of the site-info block's first link.
func siteName(siteInfo *goquery.Selection) string {
	name := strings.TrimSpace(siteInfo.Find("a").First().Text())
	if name == "" {
		return "Unknown"
	}
	return name
}

// pageDate extracts year and month from the 2nd and 3rd links of the
// site-info block and the day from the surrounding text.
func pageDate(siteInfo *goquery.Selection) models.PageDate {
	var d models.PageDate

	links := siteInfo.Find("a")
	if links.Length() > 1 {
		d.Year = atoiOrZero(links.Eq(1).Text())
	}
	if links.Length() > 2 {
		d.Month = atoiOrZero(links.Eq(2).Text())
	}
	d.Day = dayNumber(siteInfo)
	return d
}

func dayNumber(siteInfo *goquery.Selection) int {
	if blockHTML, err := siteInfo.Html(); err == nil {
		if m := dayPrimaryRe.FindStringSubmatch(blockHTML); m != nil {
			return atoiOrZero(m[1])
		}
	}
	if m := dayFallbackRe.FindStringSubmatch(strings.TrimSpace(siteInfo.Text())); m != nil {
		return atoiOrZero(m[1])
	}
	return 0
}

// labelInt finds a "Label: 123" line in the block text and returns the value,
// or 0 when the label is absent.
func labelInt(siteInfo *goquery.Selection, label string) int {
	for _, line := range strings.Split(siteInfo.Text(), "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, label)
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(line[idx+len(label):])
		// Keep only the leading digit run; the template sometimes appends
		// trailing markup text on the same line.
		for i, r := range value {
			if r < '0' || r > '9' {
				value = value[:i]
				break
			}
		}
		return atoiOrZero(value)
	}
	return 0
}

func imageEntry(entry *goquery.Selection, baseURL string) models.ImageEntry {
	e := models.ImageEntry{
		ImageURL:     resolveURL(baseURL, entry.Find("a").First().AttrOr("href", "")),
		ThumbnailURL: resolveURL(baseURL, entry.Find("img").First().AttrOr("src", "")),
		MetadataURL:  resolveURL(baseURL, entry.Find(metaLinkSelector).First().AttrOr("href", "")),
	}
	e.Time, e.Timezone = splitTimeLabel(strings.TrimSpace(entry.Find(timeLabelSelector).First().Text()))
	return e
}

// splitTimeLabel splits "07:00:06 UTC-8" into time and timezone. When the
// label has no recognizable time run the whole string is kept as the time.
func splitTimeLabel(label string) (string, string) {
	if label == "" {
		return "", ""
	}
	if m := timeLabelRe.FindStringSubmatch(label); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	return label, ""
}

// resolveURL makes href absolute against the archive base. Already-absolute
// links pass through unchanged; empty hrefs stay empty.
func resolveURL(baseURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
