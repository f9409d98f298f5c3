// pctool is a CLI utility for inspecting colored OBJ point clouds.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/pointcloud-viewer/internal/config"
	"github.com/Faultbox/pointcloud-viewer/internal/ingest"
	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/internal/preview"
	"github.com/Faultbox/pointcloud-viewer/pkg/math"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args, os.Stdout)
	case "chunks":
		err = cmdChunks(args, os.Stdout)
	case "preview":
		err = cmdPreview(args, os.Stdout)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pctool - colored OBJ point cloud utility

Usage:
  pctool <command> [options]

Commands:
  info <file.obj>                          Show counts and bounds
  chunks [-limit N] <file.obj>             List mesh chunks
  preview [-size N] [-supersample N] [-height] <file.obj> <out>
                                           Write a top-down image (.webp, .tga, .png)

Examples:
  pctool info scan.obj
  pctool chunks -limit 10000 scan.obj
  pctool preview -size 2048 -height scan.obj scan.webp`)
}

// load ingests path with the default configuration plus overrides.
func load(path string, configure func(*ingest.Options)) (*pointcloud.PointCloud, error) {
	opts := config.Default().Ingest.Options()
	if configure != nil {
		configure(&opts)
	}

	last := -1
	cloud, err := ingest.Run(context.Background(), path, opts, func(st ingest.Status) {
		if pct := int(st.Progress * 100); pct != last && pct%10 == 0 {
			last = pct
			fmt.Fprintf(os.Stderr, "\r%s %3d%%", st.State, pct)
		}
	})
	fmt.Fprintln(os.Stderr)
	return cloud, err
}

func cmdInfo(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: pctool info <file.obj>")
	}

	cloud, err := load(args[0], nil)
	if err != nil {
		return err
	}

	st := cloud.Stats
	fmt.Fprintf(out, "File:     %s\n", args[0])
	fmt.Fprintf(out, "Name:     %s\n", cloud.Name)
	fmt.Fprintf(out, "Lines:    %d\n", st.Lines)
	fmt.Fprintf(out, "Raw:      %d positions, %d normals, %d uvs\n", st.RawVertices, st.RawNormals, st.RawUVs)
	fmt.Fprintf(out, "Faces:    %d\n", st.Faces)
	fmt.Fprintf(out, "Groups:   %d\n", st.Groups)
	fmt.Fprintf(out, "Vertices: %d\n", st.CompactVertices)
	fmt.Fprintf(out, "Chunks:   %d\n", st.Chunks)
	if !cloud.Bounds.IsEmpty() {
		fmt.Fprintf(out, "Bounds:   %s .. %s\n", formatVec(cloud.Bounds.Min), formatVec(cloud.Bounds.Max))
	}
	return nil
}

func cmdChunks(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("chunks", flag.ContinueOnError)
	limit := fs.Int("limit", pointcloud.DefaultChunkLimit, "Maximum vertices per chunk")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: pctool chunks [-limit N] <file.obj>")
	}

	cloud, err := load(fs.Arg(0), func(o *ingest.Options) { o.ChunkLimit = *limit })
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-20s %6s %8s %8s  %s\n", "GROUP", "INDEX", "START", "SIZE", "BOUNDS")
	for _, c := range cloud.Chunks {
		b := c.Bounds()
		fmt.Fprintf(out, "%-20s %6d %8d %8d  %s .. %s\n", c.Group, c.Index, c.Start, c.Len(), formatVec(b.Min), formatVec(b.Max))
	}
	fmt.Fprintf(out, "\n%d chunks, %d vertices\n", len(cloud.Chunks), cloud.NumVertices())
	return nil
}

func cmdPreview(args []string, out io.Writer) error {
	defaults := config.Default().Preview

	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	size := fs.Int("size", defaults.Size, "Output edge length in pixels")
	supersample := fs.Int("supersample", defaults.Supersample, "Render at size*N, then downscale")
	height := fs.Bool("height", false, "Color points by height")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: pctool preview [-size N] [-supersample N] [-height] <file.obj> <out>")
	}
	input, output := fs.Arg(0), fs.Arg(1)

	format, err := preview.FormatFromPath(output)
	if err != nil {
		return err
	}
	opts := preview.Options{
		Size:        *size,
		Supersample: *supersample,
		Background:  math.ColorFromSlice(defaults.Background[:]),
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	cloud, err := load(input, func(o *ingest.Options) {
		if *height {
			o.ColorMode = ingest.ColorHeight
		}
	})
	if err != nil {
		return err
	}

	img := preview.Render(cloud, opts)

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := preview.Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s (%dx%d, %d points)\n", output, img.Bounds().Dx(), img.Bounds().Dy(), cloud.NumVertices())
	return nil
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
