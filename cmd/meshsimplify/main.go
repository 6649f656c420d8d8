// Command meshsimplify is the CLI wrapper around the simplify and
// expand packages (§6 CLI surface).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/smiley22/MeshSimplify/expand"
	"github.com/smiley22/MeshSimplify/mesh"
	"github.com/smiley22/MeshSimplify/objio"
	"github.com/smiley22/MeshSimplify/quadric"
	"github.com/smiley22/MeshSimplify/simplify"
)

// version is the CLI's reported --version string.
const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("meshsimplify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	n := fs.Int("n", 0, "target face count (required, >= 1)")
	algo := fs.String("a", "PairContract", "algorithm name")
	dist := fs.Float64("d", 0, "distance threshold for non-edge pair seeding")
	out := fs.String("o", "", "output path (default: input basename + _out + extension)")
	strict := fs.Bool("s", false, "treat a degenerate face as fatal instead of dropping it")
	recordSplits := fs.Bool("p", false, "emit vertex-split records (error if input already has splits)")
	doExpand := fs.Bool("r", false, "expand instead of simplify")
	verbose := fs.Bool("v", false, "verbose diagnostics")
	showVersion := fs.Bool("version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: meshsimplify -n N [flags] input.obj\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *showVersion {
		fmt.Println("meshsimplify", version)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(fs.Output(), "usage error: exactly one input file required")
		fs.Usage()
		return 1
	}
	if *n < 1 {
		fmt.Fprintln(fs.Output(), "usage error: -n is required and must be >= 1")
		return 1
	}
	if *algo != "PairContract" {
		fmt.Fprintf(fs.Output(), "usage error: unknown algorithm %q\n", *algo)
		return 1
	}
	if *recordSplits && *doExpand {
		fmt.Fprintln(fs.Output(), "usage error: -p and -r are mutually exclusive")
		return 1
	}

	input := fs.Arg(0)
	output := *out
	if output == "" {
		ext := filepath.Ext(input)
		base := strings.TrimSuffix(input, ext)
		output = base + "_out" + ext
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := process(log, input, output, processOptions{
		targetFaces:  *n,
		distance:     *dist,
		strict:       *strict,
		recordSplits: *recordSplits,
		expand:       *doExpand,
	}); err != nil {
		log.Error("meshsimplify: failed", "error", err)
		return 1
	}
	return 0
}

type processOptions struct {
	targetFaces  int
	distance     float64
	strict       bool
	recordSplits bool
	expand       bool
}

func process(log *slog.Logger, inputPath, outputPath string, opts processOptions) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("meshsimplify: %w", err)
	}
	defer in.Close()

	m, stats, err := objio.Read(in)
	if err != nil {
		return err
	}
	log.Info("meshsimplify: read", "vertices", stats.Vertices, "faces", stats.Faces, "splits", stats.Splits)

	var result *mesh.Mesh
	ctx := context.Background()
	if opts.expand {
		result, err = expand.Expand(ctx, m, expand.Options{TargetFaces: opts.targetFaces, Logger: log})
	} else {
		if opts.recordSplits && len(m.Splits) > 0 {
			return simplify.ErrIncompatibleOptions
		}
		result, err = simplify.Simplify(ctx, m, simplify.Options{
			TargetFaces:       opts.targetFaces,
			RecordSplits:      opts.recordSplits,
			Strict:            opts.strict,
			DistanceThreshold: opts.distance,
			Logger:            log,
		})
	}
	if err != nil {
		return describeError(err)
	}

	w, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("meshsimplify: %w", err)
	}
	defer w.Close()

	if err := objio.Write(w, result); err != nil {
		return fmt.Errorf("meshsimplify: %w", err)
	}
	log.Info("meshsimplify: wrote", "path", outputPath, "vertices", len(result.Vertices), "faces", len(result.Faces))
	return nil
}

// describeError annotates the sentinel errors of §7 with their reported
// category, without altering the wrapped chain errors.Is walks.
func describeError(err error) error {
	switch {
	case errors.Is(err, quadric.ErrDegenerateFace):
		return fmt.Errorf("degenerate face: %w", err)
	case errors.Is(err, simplify.ErrIncompatibleOptions):
		return fmt.Errorf("incompatible options: %w", err)
	case errors.Is(err, simplify.ErrInvalidTarget):
		return fmt.Errorf("usage error: %w", err)
	default:
		var malformed *objio.ErrMalformed
		if errors.As(err, &malformed) {
			return fmt.Errorf("malformed input: %w", err)
		}
		return err
	}
}
