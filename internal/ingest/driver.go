// Package ingest runs the parse and partition pipeline as a resumable state
// machine, so a host loop can interleave rendering or input handling between
// batches and show progress.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pointcloud-viewer/internal/logger"
	"github.com/Faultbox/pointcloud-viewer/pkg/pointcloud"
)

// Ingest errors.
var (
	ErrIO             = errors.New("io error")
	ErrCanceled       = errors.New("ingest canceled")
	ErrNotDone        = errors.New("ingest not finished")
	ErrAlreadyStarted = errors.New("ingest already started")
)

// State is a stage of the pipeline.
type State int

// Pipeline states, in order. Done and Failed are terminal.
const (
	StateIdle State = iota
	StateParsing
	StatePartitioning
	StateMapping
	StateDone
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StatePartitioning:
		return "partitioning"
	case StateMapping:
		return "mapping"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further Resume can change the state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Share of the progress bar given to each stage. Mapping takes the remainder.
const (
	parseWeight     = 0.70
	partitionWeight = 0.25

	// maxLineBytes bounds a single line; longer lines fail the ingest.
	maxLineBytes = 16 * 1024 * 1024
)

// Status is what Resume reports to the host after each step.
type Status struct {
	State    State
	Progress float32 // 0..1, reaches 1 exactly at StateDone
	Group    string  // group being partitioned, if any
	Err      error   // set in StateFailed
}

// Driver is one ingest run. It owns its file handle, builder and chunks;
// concurrent ingests need separate drivers.
type Driver struct {
	path string
	opts Options
	log  *zap.Logger

	state    State
	progress float32
	group    string
	err      error

	file     *os.File
	scanner  *bufio.Scanner
	size     int64
	consumed int64
	lines    int

	builder  *pointcloud.Builder
	groups   []*pointcloud.Group
	groupIdx int
	part     *pointcloud.Partitioner
	chunks   []*pointcloud.MeshChunk

	result  *pointcloud.PointCloud
	started time.Time
}

// Begin prepares an ingest of path. Nothing is read until the first Resume.
func Begin(path string, opts Options) *Driver {
	return &Driver{
		path: path,
		opts: opts.withDefaults(),
		log:  logger.Named("ingest").With(zap.String("path", path)),
	}
}

// SetChunkSizeLimit changes the per-chunk vertex ceiling. Only allowed before the first Resume.
func (d *Driver) SetChunkSizeLimit(n int) error {
	if d.state != StateIdle {
		return ErrAlreadyStarted
	}
	if n < 1 {
		return fmt.Errorf("%w: got %d", pointcloud.ErrInvalidChunkLimit, n)
	}
	d.opts.ChunkLimit = n
	return nil
}

// State returns the current state.
func (d *Driver) State() State {
	return d.state
}

// Status returns the current state and progress without advancing.
func (d *Driver) Status() Status {
	return Status{
		State:    d.state,
		Progress: d.progress,
		Group:    d.group,
		Err:      d.err,
	}
}

// Resume advances the pipeline to its next yield point and reports where it stopped.
// Calling Resume after Done or Failed returns the final status again.
func (d *Driver) Resume() Status {
	for !d.state.Terminal() {
		var yield bool
		switch d.state {
		case StateIdle:
			d.open()
		case StateParsing:
			yield = d.parseBatch()
		case StatePartitioning:
			yield = d.partitionBatch()
		case StateMapping:
			d.mapResult()
		}
		if yield {
			break
		}
	}
	return d.Status()
}

// Result returns the point cloud once the driver is Done.
// A failed run returns its error and never a partial cloud.
func (d *Driver) Result() (*pointcloud.PointCloud, error) {
	switch d.state {
	case StateDone:
		return d.result, nil
	case StateFailed:
		return nil, d.err
	default:
		return nil, ErrNotDone
	}
}

// Close releases the file handle. A run that has not finished becomes Failed with ErrCanceled.
func (d *Driver) Close() {
	if d.state.Terminal() {
		d.closeFile()
		return
	}
	d.log.Info("ingest canceled", zap.String("state", d.state.String()))
	d.fail(ErrCanceled)
}

func (d *Driver) open() {
	d.started = time.Now()
	d.log.Info("ingest started",
		zap.Int("chunkLimit", d.opts.ChunkLimit),
		zap.Int("batchLines", d.opts.BatchLines),
		zap.String("colorMode", string(d.opts.ColorMode)))

	if err := d.opts.Validate(); err != nil {
		d.fail(err)
		return
	}

	f, err := os.Open(d.path)
	if err != nil {
		d.fail(fmt.Errorf("%w: %w", ErrIO, err))
		return
	}
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		d.size = info.Size()
	}

	d.file = f
	d.scanner = bufio.NewScanner(f)
	d.scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	d.builder = pointcloud.NewBuilder(d.opts.Builder)
	d.transition(StateParsing)
}

// parseBatch consumes up to BatchLines lines. It always yields.
func (d *Driver) parseBatch() bool {
	for n := 0; n < d.opts.BatchLines; n++ {
		if !d.scanner.Scan() {
			d.finishParsing()
			return true
		}
		line := d.scanner.Text()
		d.lines++
		d.consumed += int64(len(line)) + 1

		if err := d.builder.ParseLine(line); err != nil {
			d.fail(fmt.Errorf("%s: line %d: %w", filepath.Base(d.path), d.lines, err))
			return true
		}
	}

	d.setProgress(parseWeight * d.parseFraction())
	d.log.Debug("parse batch", zap.Int("lines", d.lines), zap.Float32("progress", d.progress))
	return true
}

func (d *Driver) parseFraction() float32 {
	var frac float64
	if d.size > 0 {
		frac = float64(d.consumed) / float64(d.size)
	} else {
		frac = float64(d.lines) / float64(d.opts.LineEstimate)
	}
	// Parsing is not complete until EOF, however wrong the estimate.
	return float32(min(frac, 0.999))
}

func (d *Driver) finishParsing() {
	if err := d.scanner.Err(); err != nil {
		d.fail(fmt.Errorf("%w: reading line %d: %w", ErrIO, d.lines+1, err))
		return
	}
	d.closeFile()

	d.builder.Finish()
	d.groups = d.builder.Groups()

	stats := d.builder.Stats()
	d.log.Info("parsing complete",
		zap.Int("lines", stats.Lines),
		zap.Int("vertices", stats.RawVertices),
		zap.Int("faces", stats.Faces),
		zap.Int("groups", stats.Groups),
		zap.Int("compactVertices", stats.CompactVertices))

	d.setProgress(parseWeight)
	d.transition(StatePartitioning)
}

// partitionBatch produces up to ChunksPerYield chunks. It always yields.
func (d *Driver) partitionBatch() bool {
	for produced := 0; produced < d.opts.ChunksPerYield; {
		if d.part == nil {
			if d.groupIdx >= len(d.groups) {
				d.group = ""
				d.setProgress(parseWeight + partitionWeight)
				d.transition(StateMapping)
				return true
			}

			g := d.groups[d.groupIdx]
			d.group = g.Name
			part, err := pointcloud.NewPartitioner(pointcloud.BuildGroupBuffer(g, d.builder.Vertices()), d.opts.ChunkLimit)
			if err != nil {
				d.fail(err)
				return true
			}
			d.part = part
			d.log.Debug("partitioning group", zap.String("group", g.Name), zap.Int("chunks", part.Total()))
		}

		chunk, ok := d.part.Next()
		if !ok {
			d.part = nil
			d.groupIdx++
			continue
		}
		d.chunks = append(d.chunks, chunk)
		produced++
	}

	d.setProgress(parseWeight + partitionWeight*d.partitionFraction())
	return true
}

func (d *Driver) partitionFraction() float32 {
	if len(d.groups) == 0 {
		return 1
	}
	done := float32(d.groupIdx)
	if d.part != nil && d.part.Total() > 0 {
		done += float32(d.part.Produced()) / float32(d.part.Total())
	}
	return done / float32(len(d.groups))
}

func (d *Driver) mapResult() {
	bounds := pointcloud.ComputeBounds(d.chunks)
	if d.opts.ColorMode == ColorHeight {
		pointcloud.ColorByHeight(d.chunks)
	}

	stats := d.builder.Stats()
	stats.Chunks = len(d.chunks)
	for _, c := range d.chunks {
		stats.ChunkVertices += c.Len()
	}

	d.result = &pointcloud.PointCloud{
		Name:   strings.TrimSuffix(filepath.Base(d.path), filepath.Ext(d.path)),
		Chunks: d.chunks,
		Bounds: bounds,
		Stats:  stats,
	}
	d.builder = nil
	d.groups = nil
	d.chunks = nil

	d.progress = 1
	d.transition(StateDone)
	d.log.Info("ingest complete",
		zap.Int("chunks", stats.Chunks),
		zap.Int("points", stats.ChunkVertices),
		zap.Duration("elapsed", time.Since(d.started)))
}

func (d *Driver) fail(err error) {
	d.closeFile()
	d.builder = nil
	d.groups = nil
	d.part = nil
	d.chunks = nil
	d.result = nil
	d.err = err
	d.transition(StateFailed)
	if !errors.Is(err, ErrCanceled) {
		d.log.Error("ingest failed", zap.Error(err))
	}
}

func (d *Driver) closeFile() {
	if d.file != nil {
		_ = d.file.Close()
		d.file = nil
		d.scanner = nil
	}
}

func (d *Driver) transition(next State) {
	d.log.Debug("state transition", zap.String("from", d.state.String()), zap.String("to", next.String()))
	d.state = next
}

// setProgress never lets progress move backwards.
func (d *Driver) setProgress(p float32) {
	if p > d.progress {
		d.progress = p
	}
}
