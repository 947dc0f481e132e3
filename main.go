package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"geoview/internal/cache"
	"geoview/internal/config"
	"geoview/internal/debug"
	"geoview/internal/geo"
	"geoview/internal/render"
	"geoview/internal/ui"
	"geoview/internal/viewport"

	"github.com/gdamore/tcell/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Parse command line flags; environment values are the defaults
	help := flag.Bool("h", false, "Show help message")
	flag.StringVar(&cfg.CacheDir, "cache", cfg.CacheDir, "Cache directory for map data (default: ~/.geoview/data)")
	flag.StringVar(&cfg.Projection, "p", cfg.Projection, "Projection: mercator or equirectangular")
	flag.Func("lat", "Initial center latitude", config.SetCenterFlag(&cfg.CenterLat))
	flag.Func("lon", "Initial center longitude", config.SetCenterFlag(&cfg.CenterLon))
	flag.Float64Var(&cfg.Level, "z", cfg.Level, "Initial zoom level (default: projection default)")
	flag.Float64Var(&cfg.Aspect, "a", cfg.Aspect, "Character aspect ratio - adjust for font width (1.0-4.0)")
	flag.StringVar(&cfg.PlacesCSV, "places", cfg.PlacesCSV, "CSV file of extra places (name,latitude,longitude[,xoffset,yoffset,color])")
	flag.StringVar(&cfg.DebugLog, "d", cfg.DebugLog, "Debug log file (e.g., debug.log)")
	flag.BoolVar(&cfg.Offline, "offline", cfg.Offline, "Do not download missing map data")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("geoview - Terminal map viewer")
		fmt.Println("\nUsage: geoview [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		fmt.Printf("\nEvery option can also be set with a %s* environment variable.\n", config.EnvPrefix)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up debug logging if requested
	if cfg.DebugLog != "" {
		logFile, err := os.Create(cfg.DebugLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			debug.SetOutput(logFile)
			debug.Logger().Info("geoview debug log started")
			fmt.Printf("Debug logging enabled: %s\n", cfg.DebugLog)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}

	fmt.Println("\nGoodbye!")
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	cacheManager, err := cache.NewManager(cfg.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	if !cfg.Offline {
		fmt.Println("Checking Natural Earth data...")
		if err := cacheManager.EnsureData(ctx, cache.NaturalEarthFiles); err != nil {
			return fmt.Errorf("failed to download map data: %w", err)
		}
	}

	fmt.Println("Loading geographic features...")
	features := geo.NewShapefileLoader(cacheManager.GetCacheDir()).LoadAll()

	var places []geo.Place
	if cfg.PlacesCSV != "" {
		places, err = geo.NewPlaceLoader(cfg.PlacesCSV).Load()
		if err != nil {
			return fmt.Errorf("failed to load places: %w", err)
		}
	}

	projection, err := cfg.ProjectionImpl()
	if err != nil {
		return err
	}

	var opts []viewport.Option
	if center, ok := cfg.Center(); ok {
		opts = append(opts, viewport.WithCenter(center))
	}
	if level, ok := cfg.StartLevel(); ok {
		opts = append(opts, viewport.WithLevel(level))
	}

	v, err := viewport.New(projection, opts...)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	app, err := ui.NewApp(screen, v, render.Grid{Aspect: cfg.Aspect})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Recover panics so the terminal is always restored
	defer func() {
		if rec := recover(); rec != nil {
			screen.Fini()
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	r := app.Renderer()
	for _, ftype := range []geo.FeatureType{geo.FeatureCoastline, geo.FeatureBorder, geo.FeatureRiver} {
		if fs := features[ftype]; len(fs) > 0 {
			r.AddLayer(render.NewLineLayer(ftype, fs))
		}
	}
	for _, f := range features[geo.FeaturePlace] {
		r.AddMarker(render.MarkerFromFeature(f))
	}
	for _, p := range places {
		r.AddMarker(render.MarkerFromPlace(p))
	}

	return app.Run(ctx)
}
