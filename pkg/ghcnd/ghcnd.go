// Package ghcnd reads the NOAA Global Historical Climatology Network daily
// (GHCN-Daily) dataset from a local directory: the country, state and
// station tables, and the per-year observation files under by_year/.
package ghcnd

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chrissnell/stationdata/internal/log"
	"github.com/chrissnell/stationdata/pkg/catalog"
)

// Catalog holds the GHCN-Daily lookup tables for one base directory. It is
// read-only after New returns and safe for concurrent use.
type Catalog struct {
	dir       string
	logger    *zap.SugaredLogger
	countries map[string]string
	states    map[string]string
	stations  []Station
	byID      map[string]int
}

// New loads the country, state and station tables from dir. A nil logger
// disables logging.
func New(dir string, logger *zap.SugaredLogger) (*Catalog, error) {
	if err := catalog.CheckDir(dir, "weather"); err != nil {
		return nil, err
	}

	c := &Catalog{
		dir:    dir,
		logger: log.OrNop(logger),
	}

	var err error
	if c.countries, err = readCodes(filepath.Join(dir, countriesFile)); err != nil {
		return nil, fmt.Errorf("error reading countries: %w", err)
	}
	if c.states, err = readCodes(filepath.Join(dir, statesFile)); err != nil {
		return nil, fmt.Errorf("error reading states: %w", err)
	}
	if c.stations, err = readFixedWidth(filepath.Join(dir, stationsFile), stationColumns); err != nil {
		return nil, fmt.Errorf("error reading stations: %w", err)
	}

	c.byID = make(map[string]int, len(c.stations))
	for i, s := range c.stations {
		c.byID[s.ID] = i
	}

	c.logger.Debugf("loaded GHCN-Daily catalog from %s: %d countries, %d states, %d stations",
		dir, len(c.countries), len(c.states), len(c.stations))
	return c, nil
}

// FindStations returns the stations whose name contains name (ignoring case)
// and whose state matches region (two letters, ignoring case). Empty
// arguments do not filter. The result is a copy.
func (c *Catalog) FindStations(name, region string) ([]Station, error) {
	if err := catalog.ValidateRegionCode(region); err != nil {
		return nil, err
	}

	result := make([]Station, 0)
	for _, s := range c.stations {
		if catalog.MatchRegion(s.State, region) && catalog.MatchName(s.Name, name) {
			result = append(result, s.clone())
		}
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

// Countries returns a copy of the country code table.
func (c *Catalog) Countries() map[string]string {
	return copyCodes(c.countries)
}

// States returns a copy of the state and province code table.
func (c *Catalog) States() map[string]string {
	return copyCodes(c.states)
}

// CountryName returns the display name for a FIPS country code.
func (c *Catalog) CountryName(code string) (string, bool) {
	name, ok := c.countries[code]
	return name, ok
}

// StateName returns the display name for a state or province code.
func (c *Catalog) StateName(code string) (string, bool) {
	name, ok := c.states[code]
	return name, ok
}

func copyCodes(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
