package nsrdb

import (
	"archive/tar"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/stationdata/internal/columns"
	"github.com/chrissnell/stationdata/pkg/catalog"
	"github.com/chrissnell/stationdata/pkg/obsstats"
)

const missingObs = "-9900"

// Observation is one hour of solar data for a station. TimeLST is the local
// standard time as written in the file: hour 1 is the first hour of Date and
// "24:00" is its last hour.
type Observation struct {
	StationID string    `json:"station_id"`
	Date      time.Time `json:"date"`
	TimeLST   string    `json:"time_lst"`

	Zenith  *float64 `json:"zenith_deg,omitempty"`
	Azimuth *float64 `json:"azimuth_deg,omitempty"`
	ETR     *float64 `json:"etr_wpm2,omitempty"`
	ETRN    *float64 `json:"etrn_wpm2,omitempty"`

	GloMod    *float64 `json:"glo_mod_wpm2,omitempty"`
	GloModUnc *float64 `json:"glo_mod_unc_pct,omitempty"`
	GloModSrc *float64 `json:"glo_mod_src,omitempty"`
	DirMod    *float64 `json:"dir_mod_wpm2,omitempty"`
	DirModUnc *float64 `json:"dir_mod_unc_pct,omitempty"`
	DirModSrc *float64 `json:"dir_mod_src,omitempty"`
	DifMod    *float64 `json:"dif_mod_wpm2,omitempty"`
	DifModUnc *float64 `json:"dif_mod_unc_pct,omitempty"`
	DifModSrc *float64 `json:"dif_mod_src,omitempty"`

	MeasGlo        *float64 `json:"meas_glo_wpm2,omitempty"`
	MeasGloQualFlg *int     `json:"meas_glo_qual_flg,omitempty"`
	MeasDir        *float64 `json:"meas_dir_wpm2,omitempty"`
	MeasDirQualFlg *int     `json:"meas_dir_qual_flg,omitempty"`
	MeasDif        *float64 `json:"meas_dif_wpm2,omitempty"`
	MeasDifQualFlg *int     `json:"meas_dif_qual_flg,omitempty"`

	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// hourRow carries the unparsed date column alongside the parsed fields.
type hourRow struct {
	Observation
	rawDate string
}

func floatCol(name string, idx int, field func(*hourRow) **float64) columns.Column[hourRow] {
	return columns.OptionalFloat(name, idx, 0, field, missingObs)
}

func flagCol(name string, idx int, field func(*hourRow) **int) columns.Column[hourRow] {
	return columns.OptionalInt(name, idx, 0, field, missingObs)
}

var hourColumns = columns.Table[hourRow]{Columns: []columns.Column[hourRow]{
	columns.Text("date", 0, 0, func(r *hourRow) *string { return &r.rawDate }),
	columns.Text("time_lst", 1, 0, func(r *hourRow) *string { return &r.TimeLST }),
	floatCol("zenith_deg", 2, func(r *hourRow) **float64 { return &r.Zenith }),
	floatCol("azimuth_deg", 3, func(r *hourRow) **float64 { return &r.Azimuth }),
	floatCol("etr_wpm2", 4, func(r *hourRow) **float64 { return &r.ETR }),
	floatCol("etrn_wpm2", 5, func(r *hourRow) **float64 { return &r.ETRN }),
	floatCol("glo_mod_wpm2", 6, func(r *hourRow) **float64 { return &r.GloMod }),
	floatCol("glo_mod_unc_pct", 7, func(r *hourRow) **float64 { return &r.GloModUnc }),
	floatCol("glo_mod_src", 8, func(r *hourRow) **float64 { return &r.GloModSrc }),
	floatCol("dir_mod_wpm2", 9, func(r *hourRow) **float64 { return &r.DirMod }),
	floatCol("dir_mod_unc_pct", 10, func(r *hourRow) **float64 { return &r.DirModUnc }),
	floatCol("dir_mod_src", 11, func(r *hourRow) **float64 { return &r.DirModSrc }),
	floatCol("dif_mod_wpm2", 12, func(r *hourRow) **float64 { return &r.DifMod }),
	floatCol("dif_mod_unc_pct", 13, func(r *hourRow) **float64 { return &r.DifModUnc }),
	floatCol("dif_mod_src", 14, func(r *hourRow) **float64 { return &r.DifModSrc }),
	floatCol("meas_glo_wpm2", 15, func(r *hourRow) **float64 { return &r.MeasGlo }),
	flagCol("meas_glo_qual_flg", 16, func(r *hourRow) **int { return &r.MeasGloQualFlg }),
	floatCol("meas_dir_wpm2", 17, func(r *hourRow) **float64 { return &r.MeasDir }),
	flagCol("meas_dir_qual_flg", 18, func(r *hourRow) **int { return &r.MeasDirQualFlg }),
	floatCol("meas_dif_wpm2", 19, func(r *hourRow) **float64 { return &r.MeasDif }),
	flagCol("meas_dif_qual_flg", 20, func(r *hourRow) **int { return &r.MeasDifQualFlg }),
}}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "1/2/2006", "20060102"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ArchivePath returns the path of a station's archive under dir.
func ArchivePath(dir, stationID string) string {
	return filepath.Join(dir, stationID+".tar.gz")
}

// MemberName returns the name of the CSV member holding a station's data for
// year inside its archive.
func MemberName(stationID string, year int) string {
	return path.Join("nsrdb_solar", stationID, fmt.Sprintf("%s_%d.csv", stationID, year))
}

// ReadYear reads one station's hourly observations for year from its archive.
// A missing archive means the station id is not valid and returns
// catalog.ErrNotFound. An archive without a member for year yields an empty
// slice and no error.
func (c *Catalog) ReadYear(stationID string, year int) ([]Observation, error) {
	if stationID == "" || strings.ContainsAny(stationID, `/\`) || strings.Contains(stationID, "..") {
		return nil, fmt.Errorf("%w: invalid station id %q", catalog.ErrValidation, stationID)
	}

	archive := ArchivePath(c.dir, stationID)
	f, err := os.Open(archive)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: station archive %s", catalog.ErrNotFound, archive)
		}
		return nil, fmt.Errorf("error opening %s: %w", archive, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("error decompressing %s: %w", archive, err)
	}
	defer gz.Close()

	member := MemberName(stationID, year)
	r, found, err := findMember(tar.NewReader(gz), member)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", archive, err)
	}
	if !found {
		c.logger.Debugf("no NSRDB data for station %s in %d", stationID, year)
		return []Observation{}, nil
	}

	obs, err := parseHours(r, stationID, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", member, err)
	}

	c.logger.Debugf("read %d NSRDB observations for station %s in %d", len(obs), stationID, year)
	return obs, nil
}

// findMember advances tr to the regular file named member.
func findMember(tr *tar.Reader, member string) (io.Reader, bool, error) {
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if strings.TrimPrefix(hdr.Name, "./") == member {
			return tr, true, nil
		}
	}
}

func parseHours(r io.Reader, stationID string, year int) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []Observation{}, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	obs := make([]Observation, 0, 8784)
	lineNo := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNo++
		if err != nil {
			return nil, err
		}
		if len(rec) < len(hourColumns.Columns) {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", lineNo, len(hourColumns.Columns), len(rec))
		}

		row, err := hourColumns.ParseRecord(lineNo, rec)
		if err != nil {
			return nil, err
		}
		date, err := parseDate(row.rawDate)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		o := row.Observation
		o.StationID = stationID
		o.Date = date
		o.Year = year
		o.Month = int(date.Month())
		o.Day = date.Day()
		obs = append(obs, o)
	}
	return obs, nil
}

var numericColumns = map[string]func(*Observation) *float64{
	"zenith_deg":      func(o *Observation) *float64 { return o.Zenith },
	"azimuth_deg":     func(o *Observation) *float64 { return o.Azimuth },
	"etr_wpm2":        func(o *Observation) *float64 { return o.ETR },
	"etrn_wpm2":       func(o *Observation) *float64 { return o.ETRN },
	"glo_mod_wpm2":    func(o *Observation) *float64 { return o.GloMod },
	"glo_mod_unc_pct": func(o *Observation) *float64 { return o.GloModUnc },
	"dir_mod_wpm2":    func(o *Observation) *float64 { return o.DirMod },
	"dir_mod_unc_pct": func(o *Observation) *float64 { return o.DirModUnc },
	"dif_mod_wpm2":    func(o *Observation) *float64 { return o.DifMod },
	"dif_mod_unc_pct": func(o *Observation) *float64 { return o.DifModUnc },
	"meas_glo_wpm2":   func(o *Observation) *float64 { return o.MeasGlo },
	"meas_dir_wpm2":   func(o *Observation) *float64 { return o.MeasDir },
	"meas_dif_wpm2":   func(o *Observation) *float64 { return o.MeasDif },
}

// SummarizeColumn summarizes the non-missing values of a numeric column,
// named as in its JSON tag (e.g. "glo_mod_wpm2").
func SummarizeColumn(obs []Observation, name string) (obsstats.Summary, error) {
	get, ok := numericColumns[name]
	if !ok {
		return obsstats.Summary{}, fmt.Errorf("%w: unknown column %q", catalog.ErrValidation, name)
	}

	values := make([]float64, 0, len(obs))
	for i := range obs {
		if v := get(&obs[i]); v != nil {
			values = append(values, *v)
		}
	}
	return obsstats.Summarize(values), nil
}
