// Package nsrdb reads the NOAA National Solar Radiation Database station
// dataset from a local directory: the station metadata table and the hourly
// per-station archives.
package nsrdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chrissnell/stationdata/internal/columns"
	"github.com/chrissnell/stationdata/internal/log"
	"github.com/chrissnell/stationdata/pkg/catalog"
)

const missingMeta = "-999.9"

// Station is one row of NSRDB_StationsMeta.csv.
type Station struct {
	ID             string   `json:"id"`
	Class          string   `json:"class"`
	Measured       bool     `json:"measured"`
	Name           string   `json:"name"`
	State          string   `json:"state"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Elevation      *float64 `json:"elevation_m,omitempty"`
	TimeZoneOffset *float64 `json:"tz_offset,omitempty"`
}

// clone copies s so that callers cannot reach the catalog's pointer fields.
func (s Station) clone() Station {
	s.Latitude = columns.ClonePtr(s.Latitude)
	s.Longitude = columns.ClonePtr(s.Longitude)
	s.Elevation = columns.ClonePtr(s.Elevation)
	s.TimeZoneOffset = columns.ClonePtr(s.TimeZoneOffset)
	return s
}

// Metadata columns are read by position; the header row is skipped.
var stationColumns = columns.Table[Station]{Columns: []columns.Column[Station]{
	columns.Text("id", 0, 0, func(s *Station) *string { return &s.ID }),
	columns.Text("class", 1, 0, func(s *Station) *string { return &s.Class }),
	columns.Bool("solar_flag", 2, 0, func(s *Station) *bool { return &s.Measured }),
	columns.Text("name", 3, 0, func(s *Station) *string { return &s.Name }),
	columns.Text("state", 4, 0, func(s *Station) *string { return &s.State }),
	columns.OptionalFloat("latitude", 5, 0, func(s *Station) **float64 { return &s.Latitude }, missingMeta),
	columns.OptionalFloat("longitude", 6, 0, func(s *Station) **float64 { return &s.Longitude }, missingMeta),
	columns.OptionalFloat("elevation", 7, 0, func(s *Station) **float64 { return &s.Elevation }, missingMeta),
	columns.OptionalFloat("tz_offset", 8, 0, func(s *Station) **float64 { return &s.TimeZoneOffset }, missingMeta),
}}

// Catalog holds the NSRDB station table for one base directory. It is
// read-only after New returns and safe for concurrent use.
type Catalog struct {
	dir      string
	logger   *zap.SugaredLogger
	stations []Station
	byID     map[string]int
}

// New loads documentation/NSRDB_StationsMeta.csv from dir. A nil logger
// disables logging.
func New(dir string, logger *zap.SugaredLogger) (*Catalog, error) {
	if err := catalog.CheckDir(dir, "solar"); err != nil {
		return nil, err
	}

	c := &Catalog{
		dir:    dir,
		logger: log.OrNop(logger),
	}

	var err error
	path := filepath.Join(dir, "documentation", "NSRDB_StationsMeta.csv")
	if c.stations, err = readStations(path); err != nil {
		return nil, fmt.Errorf("error reading stations: %w", err)
	}

	c.byID = make(map[string]int, len(c.stations))
	for i, s := range c.stations {
		c.byID[s.ID] = i
	}

	c.logger.Debugf("loaded NSRDB catalog from %s: %d stations", dir, len(c.stations))
	return c, nil
}

func readStations(path string) ([]Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("%s: reading header: %w", filepath.Base(path), err)
	}

	var stations []Station
	lineNo := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		s, err := stationColumns.ParseRecord(lineNo, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		stations = append(stations, s)
	}
	return stations, nil
}

// FindStations returns the stations whose name contains name (ignoring case),
// whose state matches region (two letters, ignoring case) and, when measured
// is non-nil, whose measured-data flag equals *measured. Empty strings and a
// nil measured do not filter. The result is a copy.
func (c *Catalog) FindStations(name, region string, measured *bool) ([]Station, error) {
	if err := catalog.ValidateRegionCode(region); err != nil {
		return nil, err
	}

	result := make([]Station, 0)
	for _, s := range c.stations {
		if !catalog.MatchRegion(s.State, region) || !catalog.MatchName(s.Name, name) {
			continue
		}
		if measured != nil && s.Measured != *measured {
			continue
		}
		result = append(result, s.clone())
	}
	return result, nil
}

// StationInfo looks up a station by id.
func (c *Catalog) StationInfo(id string) (Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Station{}, false
	}
	return c.stations[i].clone(), true
}

// Stations returns the number of loaded stations.
func (c *Catalog) Stations() int {
	return len(c.stations)
}
