package ghcnd

import (
	"compress/gzip"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/stationdata/pkg/catalog"
)

type fixtureStation struct {
	id, state, name, gsn, hcn, wmo string
	lat, lon, elev                 float64
}

var fixtureStations = []fixtureStation{
	{id: "USW00013897", lat: 36.1189, lon: -86.6892, elev: 182.3, state: "TN", name: "NASHVILLE INTL AP", gsn: "GSN", hcn: "", wmo: "72327"},
	{id: "USC00406371", lat: 36.2669, lon: -86.4217, elev: 161.5, state: "TN", name: "OLD HICKORY", hcn: "HCN"},
	{id: "USW00023174", lat: 33.9381, lon: -118.3889, elev: 29.6, state: "CA", name: "LOS ANGELES INTL AP", gsn: "GSN", wmo: "72295"},
	{id: "ACW00011604", lat: 17.1167, lon: -61.7833, elev: -999.9, name: "ST JOHNS COOLIDGE FLD"},
	{id: "USC00401234", lat: 35.0, lon: -85.0, elev: 200, state: "tn", name: "Nashville Lower", wmo: "N/A"},
}

func stationLine(s fixtureStation) string {
	return fmt.Sprintf("%-11s %8.4f %9.4f %6.1f %-2s %-30s %-3s %-3s %-5s",
		s.id, s.lat, s.lon, s.elev, s.state, s.name, s.gsn, s.hcn, s.wmo)
}

// newFixtureDir writes a minimal GHCN-Daily tree and returns its path.
func newFixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var lines []string
	for _, s := range fixtureStations {
		lines = append(lines, stationLine(s))
	}
	writeFile(t, filepath.Join(dir, stationsFile), strings.Join(lines, "\n")+"\n")
	writeFile(t, filepath.Join(dir, countriesFile), "AC Antigua and Barbuda\nUS United States\n")
	writeFile(t, filepath.Join(dir, statesFile), "CA CALIFORNIA\nTN TENNESSEE\n\n")

	if err := os.Mkdir(filepath.Join(dir, "by_year"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), nil)
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewMalformedStations(t *testing.T) {
	dir := newFixtureDir(t)
	writeFile(t, filepath.Join(dir, stationsFile), "USW00013897  north    -86.6892  182.3 TN NASHVILLE\n")
	if _, err := New(dir, nil); err == nil {
		t.Fatal("expected error for malformed latitude")
	}
}

func TestNewLoadsTables(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.Stations() != len(fixtureStations) {
		t.Errorf("stations = %d, want %d", c.Stations(), len(fixtureStations))
	}
	if name, ok := c.CountryName("AC"); !ok || name != "Antigua and Barbuda" {
		t.Errorf("CountryName(AC) = %q, %v", name, ok)
	}
	if name, ok := c.StateName("TN"); !ok || name != "TENNESSEE" {
		t.Errorf("StateName(TN) = %q, %v", name, ok)
	}
	if len(c.States()) != 2 || len(c.Countries()) != 2 {
		t.Errorf("unexpected code tables: %v %v", c.States(), c.Countries())
	}
}

func TestStationInfo(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	s, ok := c.StationInfo("USW00013897")
	if !ok {
		t.Fatal("expected station to be found")
	}
	if s.ID != "USW00013897" || s.Name != "NASHVILLE INTL AP" || s.State != "TN" {
		t.Errorf("unexpected station: %+v", s)
	}
	if math.Abs(s.Latitude-36.1189) > 1e-9 || math.Abs(s.Longitude+86.6892) > 1e-9 {
		t.Errorf("unexpected coordinates: %v, %v", s.Latitude, s.Longitude)
	}
	if s.Elevation == nil || *s.Elevation != 182.3 {
		t.Errorf("unexpected elevation: %v", s.Elevation)
	}
	if !s.GSN || s.HCNCRN != "" || s.WMOID == nil || *s.WMOID != 72327 {
		t.Errorf("unexpected flags: %+v", s)
	}
	if s.CountryCode() != "US" {
		t.Errorf("country code = %q", s.CountryCode())
	}

	s, ok = c.StationInfo("ACW00011604")
	if !ok || s.Elevation != nil || s.State != "" || s.WMOID != nil {
		t.Errorf("expected missing elevation, state and wmo id: %+v", s)
	}

	s, ok = c.StationInfo("USC00406371")
	if !ok || s.HCNCRN != "HCN" || s.GSN {
		t.Errorf("unexpected flags: %+v", s)
	}

	if s, ok := c.StationInfo("USC00401234"); !ok || s.WMOID != nil {
		t.Errorf("non-numeric wmo id should be coerced to missing: %+v", s)
	}

	if s, ok := c.StationInfo("XXX00000000"); ok || s.ID != "" {
		t.Errorf("expected absent station, got %+v", s)
	}
}

func TestFindStations(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pattern string
		region  string
		wantIDs []string
		wantErr error
	}{
		{
			name:    "no filters returns everything",
			wantIDs: []string{"USW00013897", "USC00406371", "USW00023174", "ACW00011604", "USC00401234"},
		},
		{
			name:    "region upper case",
			region:  "TN",
			wantIDs: []string{"USW00013897", "USC00406371", "USC00401234"},
		},
		{
			name:    "region lower case",
			region:  "tn",
			wantIDs: []string{"USW00013897", "USC00406371", "USC00401234"},
		},
		{
			name:    "name substring ignores case",
			pattern: "intl ap",
			wantIDs: []string{"USW00013897", "USW00023174"},
		},
		{
			name:    "name and region combine",
			pattern: "nashville",
			region:  "Tn",
			wantIDs: []string{"USW00013897", "USC00401234"},
		},
		{
			name:    "no match",
			pattern: "memphis",
			wantIDs: []string{},
		},
		{
			name:    "region too long",
			region:  "xyz",
			wantErr: catalog.ErrValidation,
		},
		{
			name:    "region not letters",
			region:  "1A",
			wantErr: catalog.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.FindStations(tt.pattern, tt.region)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d stations, want %d: %+v", len(got), len(tt.wantIDs), got)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("station %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFindStationsReturnsCopy(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	got, err := c.FindStations("", "")
	if err != nil {
		t.Fatal(err)
	}
	got[0].Name = "CHANGED"

	s, _ := c.StationInfo(got[0].ID)
	if s.Name == "CHANGED" {
		t.Error("mutating a FindStations result changed the catalog")
	}
}

func TestStationPointerFieldsAreCopied(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	s, _ := c.StationInfo("USW00013897")
	*s.Elevation = -1
	*s.WMOID = 0

	found, err := c.FindStations("nashville intl", "TN")
	if err != nil || len(found) != 1 {
		t.Fatalf("unexpected result: %v, %v", found, err)
	}
	*found[0].Elevation = -2

	s, _ = c.StationInfo("USW00013897")
	if *s.Elevation != 182.3 || *s.WMOID != 72327 {
		t.Errorf("mutating a returned station changed the catalog: elevation %v, wmo %v", *s.Elevation, *s.WMOID)
	}
}

func TestFindStationsByOwnName(t *testing.T) {
	c, err := New(newFixtureDir(t), nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, fs := range fixtureStations {
		got, err := c.FindStations(strings.ToLower(fs.name), "")
		if err != nil {
			t.Fatal(err)
		}
		found := false
		for _, s := range got {
			if s.ID == fs.id {
				found = true
			}
		}
		if !found {
			t.Errorf("station %s not found by its own name %q", fs.id, fs.name)
		}
	}
}
