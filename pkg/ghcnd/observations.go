package ghcnd

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chrissnell/stationdata/pkg/catalog"
	"github.com/chrissnell/stationdata/pkg/obsstats"
)

// Observation is one element value reported by a station for one day.
type Observation struct {
	StationID string    `json:"station_id"`
	Date      time.Time `json:"date"`
	Element   string    `json:"element"`
	Value     float64   `json:"value"`
	MFlag     string    `json:"mflag,omitempty"`
	QFlag     string    `json:"qflag,omitempty"`
	SFlag     string    `json:"sflag,omitempty"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Day       int       `json:"day"`
}

// Elements recorded in tenths of their unit: tenths of mm for precipitation
// and water equivalents, tenths of degrees C for temperatures, tenths of m/s
// for wind speeds, tenths of mm for evaporation.
var tenthsElements = map[string]bool{
	"PRCP": true, "TMAX": true, "TMIN": true, "AWND": true, "EVAP": true,
	"MDEV": true, "MDPR": true, "MDTN": true, "MDTX": true, "MNPN": true,
	"MXPN": true, "TAVG": true, "THIC": true, "TOBS": true, "WESD": true,
	"WESF": true, "WSF1": true, "WSF2": true, "WSF5": true, "WSFG": true,
	"WSFI": true, "WSFM": true,
}

// IsTenths reports whether element values are stored in tenths of their unit.
// Besides the fixed list this covers the soil temperature families SNxy and
// SXxy, where x is the ground cover code and y the depth code.
func IsTenths(element string) bool {
	if tenthsElements[element] {
		return true
	}
	if len(element) == 4 && (element[:2] == "SN" || element[:2] == "SX") {
		return isDigit(element[2]) && isDigit(element[3])
	}
	return false
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

const dateLayout = "20060102"

// ReadYear reads every station's observations for year from
// by_year/<year>.csv.gz. A year with no file yields an empty slice and no
// error. Tenths elements are scaled to whole units.
func (c *Catalog) ReadYear(year int) ([]Observation, error) {
	path := filepath.Join(c.dir, "by_year", fmt.Sprintf("%d.csv.gz", year))

	f, found, err := catalog.OpenOptional(path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	if !found {
		c.logger.Debugf("no GHCN-Daily data for %d (%s)", year, path)
		return []Observation{}, nil
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", path, err)
	}
	defer gz.Close()

	obs, err := parseObservations(gz)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	c.logger.Debugf("read %d GHCN-Daily observations for %d", len(obs), year)
	return obs, nil
}

// parseObservations reads headerless by_year CSV rows. Only the first seven
// fields are used; the trailing observation time is ignored.
func parseObservations(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	obs := make([]Observation, 0)
	lineNo := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, err
		}
		if len(rec) < 7 {
			return nil, fmt.Errorf("line %d: expected at least 7 fields, got %d", lineNo, len(rec))
		}

		date, err := time.Parse(dateLayout, rec[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", lineNo, rec[1], err)
		}
		value, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad value %q: %w", lineNo, rec[3], err)
		}
		if IsTenths(rec[2]) {
			value /= 10.0
		}

		obs = append(obs, Observation{
			StationID: rec[0],
			Date:      date,
			Element:   rec[2],
			Value:     value,
			MFlag:     rec[4],
			QFlag:     rec[5],
			SFlag:     rec[6],
			Year:      date.Year(),
			Month:     int(date.Month()),
			Day:       date.Day(),
		})
	}
	return obs, nil
}

// SummarizeElements groups observations by element and summarizes each
// group's values.
func SummarizeElements(obs []Observation) map[string]obsstats.Summary {
	values := make(map[string][]float64)
	for _, o := range obs {
		values[o.Element] = append(values[o.Element], o.Value)
	}
	return obsstats.Group(values)
}
