package ghcnd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/stationdata/internal/columns"
)

const (
	countriesFile = "ghcnd-countries.txt"
	statesFile    = "ghcnd-states.txt"
	stationsFile  = "ghcnd-stations.txt"
)

// Station is one row of ghcnd-stations.txt.
type Station struct {
	ID        string   `json:"id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation_m,omitempty"`
	State     string   `json:"state,omitempty"`
	Name      string   `json:"name"`
	GSN       bool     `json:"gsn"`
	HCNCRN    string   `json:"hcn_crn,omitempty"`
	WMOID     *int     `json:"wmo_id,omitempty"`
}

// CountryCode returns the FIPS country code embedded in the station id.
func (s Station) CountryCode() string {
	if len(s.ID) < 2 {
		return ""
	}
	return s.ID[:2]
}

// clone copies s so that callers cannot reach the catalog's pointer fields.
func (s Station) clone() Station {
	s.Elevation = columns.ClonePtr(s.Elevation)
	s.WMOID = columns.ClonePtr(s.WMOID)
	return s
}

var stationColumns = columns.Table[Station]{Columns: []columns.Column[Station]{
	columns.Text("id", 0, 11, func(s *Station) *string { return &s.ID }),
	columns.Float("latitude", 12, 20, func(s *Station) *float64 { return &s.Latitude }),
	columns.Float("longitude", 21, 30, func(s *Station) *float64 { return &s.Longitude }),
	columns.OptionalFloat("elevation", 31, 37, func(s *Station) **float64 { return &s.Elevation }, "-999.9"),
	columns.Text("state", 38, 40, func(s *Station) *string { return &s.State }),
	columns.Text("name", 41, 71, func(s *Station) *string { return &s.Name }),
	columns.Present("gsn_flag", 72, 75, func(s *Station) *bool { return &s.GSN }),
	columns.Text("hcn_crn_flag", 76, 79, func(s *Station) *string { return &s.HCNCRN }),
	columns.LenientInt("wmo_id", 80, 85, func(s *Station) **int { return &s.WMOID }),
}}

type codeName struct {
	Code string
	Name string
}

var codeColumns = columns.Table[codeName]{Columns: []columns.Column[codeName]{
	columns.Text("code", 0, 2, func(c *codeName) *string { return &c.Code }),
	columns.Text("name", 2, 50, func(c *codeName) *string { return &c.Name }),
}}

// readFixedWidth parses every non-blank line of path with table.
func readFixedWidth[T any](path string, table columns.Table[T]) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []T
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := table.ParseLine(lineNo, line)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func readCodes(path string) (map[string]string, error) {
	rows, err := readFixedWidth(path, codeColumns)
	if err != nil {
		return nil, err
	}
	codes := make(map[string]string, len(rows))
	for _, r := range rows {
		codes[r.Code] = r.Name
	}
	return codes, nil
}
