package normalize

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
)

// KeyFunc derives the identity key used for deduplication.
type KeyFunc func(models.Earthquake) string

// KeyByID keys records on the source-assigned identifier (USGS feeds).
func KeyByID(eq models.Earthquake) string {
	return eq.ID
}

// DeduplicateTMD keeps the first record per reported (DateTimeThai,
// latitude, longitude) triple, the feed's only stable identity. The
// timestamp is compared as its raw string, before any parsing, so records
// whose timestamps fail to parse still stay distinct.
func DeduplicateTMD(items []TMDRecord) []TMDRecord {
	seen := make(map[string]struct{}, len(items))
	out := make([]TMDRecord, 0, len(items))
	for _, item := range items {
		k := fmt.Sprintf("%s|%g|%g", item.DateTimeThai,
			parseFloatOrZero(item.Latitude), parseFloatOrZero(item.Longitude))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Deduplicate keeps the first occurrence per key, preserving input order.
func Deduplicate(records []models.Earthquake, key KeyFunc) []models.Earthquake {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Earthquake, 0, len(records))
	for _, eq := range records {
		k := key(eq)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, eq)
	}
	return out
}

// Filter restricts records by date window and country.
type Filter struct {
	Start   *time.Time // inclusive, widened to start of that day
	End     *time.Time // inclusive, widened to end of that day
	Country string     // "" or "all" disables country matching
}

// countryAliases maps lowercase country names to alternative spellings that
// also count as a match in place text.
var countryAliases = map[string][]string{
	"united states":  {"usa", "us", "united states of america"},
	"united kingdom": {"uk", "great britain", "england", "scotland", "wales"},
	"thailand":       {"thai", "siam"},
	"myanmar":        {"burma"},
}

// FilterByCountryAndDate returns the records passing both filters, in input
// order. Records whose timestamp could not be parsed upstream (Time == 0)
// are skipped when a date bound is set rather than failing the batch.
func FilterByCountryAndDate(records []models.Earthquake, f Filter) []models.Earthquake {
	out := make([]models.Earthquake, 0, len(records))
	for _, eq := range records {
		if !passesDates(eq, f) {
			continue
		}
		if !MatchesCountry(eq.Place, f.Country) {
			continue
		}
		out = append(out, eq)
	}
	return out
}

func passesDates(eq models.Earthquake, f Filter) bool {
	if f.Start == nil && f.End == nil {
		return true
	}
	if eq.Time == 0 {
		return false
	}
	t := time.UnixMilli(eq.Time)
	if f.Start != nil && t.Before(startOfDay(*f.Start)) {
		return false
	}
	if f.End != nil && t.After(endOfDay(*f.End)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// MatchesCountry reports whether place text names the country, either
// directly or through a known alias. Empty or "all" matches everything.
func MatchesCountry(place, country string) bool {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" || country == "all" {
		return true
	}
	placeLower := strings.ToLower(place)
	if strings.Contains(placeLower, country) {
		return true
	}
	for _, alt := range countryAliases[country] {
		if strings.Contains(placeLower, alt) {
			return true
		}
	}
	return false
}

// SortByTimeDesc orders records newest-first. Equal timestamps keep their
// relative order.
func SortByTimeDesc(records []models.Earthquake) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time > records[j].Time
	})
}

// ActiveRegions extracts distinct region names from place descriptions,
// sorted alphabetically. "10km NE of Tokyo, Japan" yields "Japan";
// "Banda Sea, Indonesia" yields "Indonesia".
func ActiveRegions(records []models.Earthquake) []string {
	set := make(map[string]struct{})
	for _, eq := range records {
		place := strings.TrimSpace(eq.Place)
		if place == "" {
			continue
		}
		region := place
		if _, after, ok := strings.Cut(place, " of "); ok {
			region = after
		}
		if idx := strings.LastIndex(region, ", "); idx >= 0 {
			region = region[idx+2:]
		}
		region = strings.TrimSpace(region)
		if region != "" {
			set[region] = struct{}{}
		}
	}

	regions := make([]string, 0, len(set))
	for r := range set {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}
