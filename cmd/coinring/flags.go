package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/coinring/pkg/coin"
	"github.com/taigrr/coinring/pkg/remap"
)

// options holds the flags shared by every subcommand.
type options struct {
	bump     string
	width    int
	height   int
	filter   string
	edge     string
	workers  int
	square   bool
	logLevel string

	inner        float64
	outer        float64
	ringHeight   float64
	tessellation int
	mesh         string
	cells        int
}

func (o *options) register(cmd *cobra.Command) {
	def := coin.DefaultConfig()
	f := cmd.PersistentFlags()
	f.StringVar(&o.bump, "bump", "", "normal map of the coin, remapped alongside the image")
	f.IntVar(&o.width, "width", def.Width, "remapped texture width")
	f.IntVar(&o.height, "height", def.Height, "remapped texture height")
	f.StringVar(&o.filter, "filter", def.Filter.String(), "source sampling: nearest or bilinear")
	f.StringVar(&o.edge, "edge", def.Edge.String(), "samples outside the source: clamp or transparent")
	f.IntVar(&o.workers, "workers", 0, "remap goroutines per texture (0 = GOMAXPROCS)")
	f.BoolVar(&o.square, "square", false, "resample non-square images to a square before remapping")
	f.StringVar(&o.logLevel, "log-level", "warn", "debug, info, warn or error")

	f.Float64Var(&o.inner, "inner", def.Ring.InnerDiameter, "ring inner diameter")
	f.Float64Var(&o.outer, "outer", def.Ring.OuterDiameter, "ring outer diameter")
	f.Float64Var(&o.ringHeight, "ring-height", def.Ring.Height, "ring height")
	f.IntVar(&o.tessellation, "tessellation", def.Ring.Tessellation, "segments around the ring")
	f.StringVar(&o.mesh, "mesh", def.Mesh.String(), "ring mesh: analytic or csg")
	f.IntVar(&o.cells, "csg-cells", def.CSGCells, "marching cubes resolution for --mesh csg")
}

// config turns the flags and the image argument into a build config.
func (o *options) config(image string) (coin.Config, error) {
	cfg := coin.DefaultConfig()
	cfg.Diffuse = coin.FileSource(image)
	if o.bump != "" {
		cfg.Bump = coin.FileSource(o.bump)
	}
	cfg.Width, cfg.Height = o.width, o.height
	cfg.Workers = o.workers
	cfg.SquareSource = o.square
	cfg.CSGCells = o.cells

	var err error
	if cfg.Filter, err = remap.ParseFilter(o.filter); err != nil {
		return cfg, err
	}
	if cfg.Edge, err = remap.ParseEdge(o.edge); err != nil {
		return cfg, err
	}
	if cfg.Mesh, err = coin.ParseMeshKind(o.mesh); err != nil {
		return cfg, err
	}

	cfg.Ring.InnerDiameter = o.inner
	cfg.Ring.OuterDiameter = o.outer
	cfg.Ring.Height = o.ringHeight
	cfg.Ring.Tessellation = o.tessellation
	return cfg, cfg.Validate()
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// setupLogging sends pipeline logs to stderr as text.
func (o *options) setupLogging() error {
	level, err := parseLevel(o.logLevel)
	if err != nil {
		return err
	}
	coin.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
