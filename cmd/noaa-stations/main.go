package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrissnell/stationdata/internal/log"
	"github.com/chrissnell/stationdata/pkg/config"
	"github.com/chrissnell/stationdata/pkg/ghcnd"
	"github.com/chrissnell/stationdata/pkg/nsrdb"
	"github.com/chrissnell/stationdata/pkg/responseformat"
)

const usage = `Usage: noaa-stations [flags] <command> [command flags]

Commands:
  weather-find     -name <substring> -state <XX>
  weather-info     <station id>
  weather-year     -year <YYYY> [-station <id>]
  weather-summary  -year <YYYY> [-station <id>]
  solar-find       -name <substring> -state <XX> [-measured true|false]
  solar-info       <station id>
  solar-year       -station <id> -year <YYYY> [-column <name>]
`

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file (optional)")
	envFile := flag.String("env", ".env", "Path to dotenv file (optional)")
	weatherDir := flag.String("weather-dir", "", "GHCN-Daily directory (overrides config)")
	solarDir := flag.String("solar-dir", "", "NSRDB directory (overrides config)")
	format := flag.String("format", "", "Output format: json or msgpack (overrides config)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfgPath, _ := filepath.Abs(*cfgFile)
	cfg, err := config.Load(cfgPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *weatherDir != "" {
		cfg.WeatherDir = *weatherDir
	}
	if *solarDir != "" {
		cfg.SolarDir = *solarDir
	}
	if *format != "" {
		cfg.Format = *format
	}
	cfg.Debug = cfg.Debug || *debug
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	result, err := run(cfg, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		log.Errorf("%s: %v", flag.Arg(0), err)
		log.Sync()
		os.Exit(1)
	}

	if err := responseformat.NewFormatter().Write(os.Stdout, cfg.Format, result); err != nil {
		log.Errorf("error writing output: %v", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.ConfigData, command string, args []string) (any, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "Case-insensitive station name substring")
	state := fs.String("state", "", "Two-letter state or province code")
	measured := fs.String("measured", "", "Solar only: true for measured sites, false for modeled")
	station := fs.String("station", "", "Station id")
	year := fs.Int("year", 0, "Year to read")
	column := fs.String("column", "", "Solar only: summarize this column instead of listing rows")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch command {
	case "weather-find", "weather-info", "weather-year", "weather-summary":
		if cfg.WeatherDir == "" {
			return nil, fmt.Errorf("no weather directory configured")
		}
		c, err := ghcnd.New(cfg.WeatherDir, log.GetSugaredLogger())
		if err != nil {
			return nil, err
		}
		return runWeather(c, command, fs.Args(), *name, *state, *station, *year)

	case "solar-find", "solar-info", "solar-year":
		if cfg.SolarDir == "" {
			return nil, fmt.Errorf("no solar directory configured")
		}
		c, err := nsrdb.New(cfg.SolarDir, log.GetSugaredLogger())
		if err != nil {
			return nil, err
		}
		return runSolar(c, command, fs.Args(), *name, *state, *measured, *station, *year, *column)
	}

	return nil, fmt.Errorf("unknown command %q", command)
}

func runWeather(c *ghcnd.Catalog, command string, args []string, name, state, station string, year int) (any, error) {
	switch command {
	case "weather-find":
		return c.FindStations(name, state)

	case "weather-info":
		return stationInfo(args, c.StationInfo)

	case "weather-year", "weather-summary":
		obs, err := c.ReadYear(year)
		if err != nil {
			return nil, err
		}
		if station != "" {
			filtered := obs[:0]
			for _, o := range obs {
				if o.StationID == station {
					filtered = append(filtered, o)
				}
			}
			obs = filtered
		}
		if command == "weather-summary" {
			return ghcnd.SummarizeElements(obs), nil
		}
		return obs, nil
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

func runSolar(c *nsrdb.Catalog, command string, args []string, name, state, measured, station string, year int, column string) (any, error) {
	switch command {
	case "solar-find":
		return c.FindStations(name, state, parseMeasured(measured))

	case "solar-info":
		return stationInfo(args, c.StationInfo)

	case "solar-year":
		obs, err := c.ReadYear(station, year)
		if err != nil {
			return nil, err
		}
		if column != "" {
			return nsrdb.SummarizeColumn(obs, column)
		}
		return obs, nil
	}
	return nil, fmt.Errorf("unknown command %q", command)
}

// parseMeasured turns the -measured flag into a filter. Anything that is not a
// boolean means no filter.
func parseMeasured(v string) *bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// stationInfo looks up each id in args. Unknown ids map to null.
func stationInfo[S any](args []string, lookup func(string) (S, bool)) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one station id is required")
	}
	out := make(map[string]*S, len(args))
	for _, id := range args {
		if s, ok := lookup(id); ok {
			out[id] = &s
		} else {
			out[id] = nil
			log.Debugf("station %s not found", id)
		}
	}
	return out, nil
}
