package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	_ "github.com/silbinarywolf/preferdiscretegpu"
	"github.com/sudorandom/imprint-map/pkg/mapengine"
	"github.com/sudorandom/imprint-map/pkg/sources"
	"github.com/sudorandom/imprint-map/pkg/utils"
)

type CLI struct {
	Data    string `help:"Places CSV (path or URL)." default:"${places}" env:"IMPRINT_DATA"`
	GeoJSON string `name:"geojson" help:"Country boundaries FeatureCollection (path or URL)." default:"${geojson}" env:"IMPRINT_GEOJSON"`

	Year    int `help:"Year shown at start. Defaults to the first year in the data." env:"IMPRINT_YEAR"`
	MinYear int `help:"Lower bound of the year slider. Defaults to the data's first year." env:"IMPRINT_MIN_YEAR"`
	MaxYear int `help:"Upper bound of the year slider. Defaults to the data's last year." env:"IMPRINT_MAX_YEAR"`

	Width    int  `help:"Internal rendering width." default:"1400" env:"IMPRINT_WIDTH"`
	Height   int  `help:"Internal rendering height." default:"800" env:"IMPRINT_HEIGHT"`
	TPS      int  `name:"tps" help:"Ticks per second (engine updates)." default:"60" env:"IMPRINT_TPS"`
	Headless bool `help:"Run without a local window." env:"IMPRINT_HEADLESS"`

	CacheDir   string        `help:"Directory for the download cache." default:"data/cache" env:"IMPRINT_CACHE_DIR"`
	NoCache    bool          `help:"Always download remote inputs." env:"IMPRINT_NO_CACHE"`
	CacheTTL   time.Duration `name:"cache-ttl" help:"How long downloads stay cached." default:"168h" env:"IMPRINT_CACHE_TTL"`
	CaptureDir string        `help:"Directory for PNG frame captures (P key)." env:"IMPRINT_CAPTURE_DIR"`
}

func main() {
	_ = godotenv.Load(".env")

	var cli CLI
	kong.Parse(&cli,
		kong.Name("imprint-map"),
		kong.Description("Interactive map of imprint places by year."),
		kong.Vars{"places": sources.DefaultPlacesFile, "geojson": sources.EuropeFeaturesURL},
	)

	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	fetcher := &utils.Fetcher{TTL: cli.CacheTTL}
	if !cli.NoCache && (utils.IsRemote(cli.Data) || utils.IsRemote(cli.GeoJSON)) {
		if err := os.MkdirAll(cli.CacheDir, 0o755); err != nil {
			log.Fatalf("Failed to create cache dir: %v", err)
		}
		cache, err := utils.OpenBlobCache(cli.CacheDir)
		if err != nil {
			log.Printf("[cache] Disabled, could not open %s: %v", cli.CacheDir, err)
		} else {
			defer func() {
				if err := cache.Close(); err != nil {
					log.Printf("[cache] Error closing: %v", err)
				}
			}()
			if keys, err := cache.Keys(); err == nil {
				log.Printf("[cache] %d cached downloads in %s", len(keys), cli.CacheDir)
			}
			fetcher.Cache = cache
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	inputs, err := sources.LoadAll(ctx, fetcher, cli.Data, cli.GeoJSON)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load map data: %v", err)
	}

	engine := mapengine.NewEngine(cli.Width, cli.Height)
	engine.CaptureDir = cli.CaptureDir
	if err := engine.LoadData(inputs.Places, inputs.Countries, cli.Year); err != nil {
		log.Fatalf("Failed to initialize engine data: %v", err)
	}

	minYear, maxYear := engine.Controller().YearRange()
	if cli.MinYear != 0 {
		minYear = cli.MinYear
	}
	if cli.MaxYear != 0 {
		maxYear = cli.MaxYear
	}
	engine.SetYearRange(minYear, maxYear)

	ebiten.SetTPS(cli.TPS)
	if cli.Headless {
		log.Println("Running in HEADLESS mode (Rendering active).")
	} else {
		ebiten.SetWindowSize(cli.Width, cli.Height)
		ebiten.SetWindowTitle("Imprint Places of Europe")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if err := ebiten.RunGame(engine); err != nil {
		log.Fatal(err)
	}
}
