// Command lascad runs the speckle contrast pipeline over a raw frame file
// or a synthetic stream and writes false-color snapshots.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/lasca"
	"github.com/gogpu/lasca/display"
	"github.com/gogpu/lasca/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

// run parses args, drives the pipeline and closes every resource it opened
// before returning.
func run(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("lascad", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		width    = fs.Int("width", 640, "frame width")
		height   = fs.Int("height", 480, "frame height")
		input    = fs.String("input", "", "raw 8-bit frame file (empty for a synthetic stream)")
		frames   = fs.Int("frames", 500, "frames to process (0 runs until interrupted)")
		backend  = fs.String("backend", "", "backend name (empty selects automatically)")
		output   = fs.String("output", ".", "snapshot directory")
		every    = fs.Int("every", 100, "write every Nth mask")
		alpha    = fs.Float64("alpha", lasca.DefaultAlpha, "temporal smoothing factor")
		beta     = fs.Float64("beta", lasca.DefaultBeta, "slow smoothing factor")
		gain     = fs.Float64("gain", lasca.DefaultContrastGain, "contrast gain")
		interior = fs.Bool("interior-temporal", false, "restrict the temporal stage to the interior")
		gray     = fs.Bool("gray", false, "use a grayscale color table")
		verbose  = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	lasca.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	cfg := lasca.DefaultConfig(*width, *height)
	cfg.Alpha = float32(*alpha)
	cfg.Beta = float32(*beta)
	cfg.ContrastGain = float32(*gain)
	cfg.InteriorTemporal = *interior

	var src lasca.FrameSource
	if *input != "" {
		raw, err := source.OpenRaw(*input, *width, *height)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer raw.Close()
		src = raw
	} else {
		src = source.NewSynthetic(source.DefaultSyntheticConfig(*width, *height))
	}

	rec := &display.Recorder{}
	writer := display.NewBMPWriter(*output, *every)

	opts := []lasca.Option{lasca.WithBackendName(*backend)}
	if *gray {
		opts = append(opts, lasca.WithColorTable(lasca.GrayColorTable()))
	}
	p, err := lasca.New(cfg, src, display.Multi{rec, writer}, opts...)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer p.Close()

	start := time.Now()
	err = p.Run(ctx, *frames)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run: %w", err)
	}

	st := p.Stats()
	ms := rec.Stats()
	lasca.Logger().Info("lascad: done",
		"backend", p.BackendName(),
		"ticks", st.Ticks,
		"replays", st.Replays,
		"failures", st.Failures,
		"elapsed", elapsed,
		"snapshots", len(writer.Written()),
		"coverage", ms.Coverage,
		"mean", ms.Mean,
		"stddev", ms.StdDev,
	)
	if st.Ticks > 0 {
		fmt.Fprintf(stderr, "%.1f frames/s\n", float64(st.Ticks)/elapsed.Seconds())
	}
	return nil
}
