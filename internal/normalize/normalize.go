// Package normalize converts the heterogeneous upstream earthquake payloads
// (USGS GeoJSON features, TMD daily seismic events) into canonical
// models.Earthquake records. Every function here is a pure transformation:
// malformed or missing fields fall back to safe defaults, never errors.
package normalize

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nattawatp/quakewatch/internal/models"
)

// USGSFeature mirrors one feature of a USGS FDSN GeoJSON response.
// Pointer fields distinguish "absent" from zero so defaults apply cleanly.
type USGSFeature struct {
	ID         string         `json:"id"`
	Properties USGSProperties `json:"properties"`
	Geometry   USGSGeometry   `json:"geometry"`
}

type USGSProperties struct {
	Place   string   `json:"place"`
	Time    int64    `json:"time"` // epoch milliseconds
	Mag     *float64 `json:"mag"`
	MagType string   `json:"magType"`
	Status  string   `json:"status"`
	Tsunami int      `json:"tsunami"` // 0 or 1
	Sources string   `json:"sources"` // comma-separated network codes
	URL     string   `json:"url"`
	Felt    *int     `json:"felt"`
	CDI     *float64 `json:"cdi"`
	MMI     *float64 `json:"mmi"`
	Alert   string   `json:"alert"`
}

type USGSGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// USGSResponse is the top-level FDSN query payload.
type USGSResponse struct {
	Features []USGSFeature `json:"features"`
}

// NormalizeUSGS converts a GeoJSON feature into a canonical record.
// Missing fields substitute defaults; the function never fails.
func NormalizeUSGS(f USGSFeature) models.Earthquake {
	eq := models.Earthquake{
		ID:            f.ID,
		Place:         f.Properties.Place,
		Time:          f.Properties.Time,
		MagnitudeType: f.Properties.MagType,
		Status:        f.Properties.Status,
		Tsunami:       f.Properties.Tsunami == 1,
		URL:           f.Properties.URL,
		Felt:          f.Properties.Felt,
		CDI:           f.Properties.CDI,
		MMI:           f.Properties.MMI,
		Alert:         models.AlertLevel(f.Properties.Alert),
		Source:        "USGS",
	}

	if eq.Place == "" {
		eq.Place = "Unknown location"
	}
	if f.Properties.Mag != nil {
		eq.Magnitude = *f.Properties.Mag
	}
	if eq.MagnitudeType == "" {
		eq.MagnitudeType = "Unknown"
	}
	if eq.Status == "" {
		eq.Status = "unknown"
	}
	if f.Properties.Sources != "" {
		eq.Source = strings.Split(f.Properties.Sources, ",")[0]
	}

	coords := f.Geometry.Coordinates
	if len(coords) > 0 {
		eq.Longitude = coords[0]
	}
	if len(coords) > 1 {
		eq.Latitude = coords[1]
	}
	if len(coords) > 2 {
		eq.Depth = coords[2]
	}

	return eq
}

// TMDDepth accepts the two shapes the TMD feed has been observed to use for
// depth: a plain number ("12.3") or an object wrapping the value under a
// text-content key ({"_": "12.3"}). Both decode to the same float.
type TMDDepth struct {
	Value float64
}

func (d *TMDDepth) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		d.Value = 0
		return nil
	}

	if data[0] == '{' {
		var wrapped struct {
			Text json.RawMessage `json:"_"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			d.Value = 0
			return nil
		}
		d.Value = parseFloatToken(wrapped.Text)
		return nil
	}

	d.Value = parseFloatToken(data)
	return nil
}

func (d *TMDDepth) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	var text string
	if err := dec.DecodeElement(&text, &start); err != nil {
		return err
	}
	d.Value = parseFloatOrZero(text)
	return nil
}

// parseFloatToken handles a raw JSON token that may be a number or a
// quoted numeric string.
func parseFloatToken(raw json.RawMessage) float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return parseFloatOrZero(s)
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// TMDRecord mirrors one DailyEarthquakes item from the TMD feed. All numeric
// fields arrive as strings; Depth may additionally be a wrapped object.
type TMDRecord struct {
	OriginThai   string   `json:"OriginThai" xml:"OriginThai"`
	DateTimeUTC  string   `json:"DateTimeUTC" xml:"DateTimeUTC"`
	DateTimeThai string   `json:"DateTimeThai" xml:"DateTimeThai"`
	Depth        TMDDepth `json:"Depth" xml:"Depth"`
	Magnitude    string   `json:"Magnitude" xml:"Magnitude"`
	Latitude     string   `json:"Latitude" xml:"Latitude"`
	Longitude    string   `json:"Longitude" xml:"Longitude"`
	TitleThai    string   `json:"TitleThai" xml:"TitleThai"`
}

// tmdTimeLayout matches the feed's "2023-03-24 17:30:55" UTC timestamps.
const tmdTimeLayout = "2006-01-02 15:04:05"

// NormalizeTMD converts a TMD record into a canonical record. The feed has
// no stable event ID, so one is synthesized from the occurrence triple.
// An unparseable DateTimeUTC leaves Time at 0; filtering skips such records.
func NormalizeTMD(rec TMDRecord) models.Earthquake {
	lat := parseFloatOrZero(rec.Latitude)
	lng := parseFloatOrZero(rec.Longitude)

	var ms int64
	if t, err := time.Parse(tmdTimeLayout, strings.TrimSpace(rec.DateTimeUTC)); err == nil {
		ms = t.UTC().UnixMilli()
	}

	// Unparseable UTC timestamps leave ms at 0; fall back to the raw Thai
	// timestamp so such records still get distinct IDs.
	stamp := strconv.FormatInt(ms, 10)
	if ms == 0 {
		stamp = strings.TrimSpace(rec.DateTimeThai)
	}

	place := strings.TrimSpace(rec.OriginThai)
	if place == "" {
		place = strings.TrimSpace(rec.TitleThai)
	}
	if place == "" {
		place = "Unknown location"
	}

	return models.Earthquake{
		ID:            fmt.Sprintf("tmd_%s_%g_%g", stamp, lat, lng),
		Place:         place,
		Time:          ms,
		Magnitude:     parseFloatOrZero(rec.Magnitude),
		MagnitudeType: "Unknown",
		Status:        "unknown",
		Depth:         rec.Depth.Value,
		Latitude:      lat,
		Longitude:     lng,
		Source:        "tmd",
	}
}
