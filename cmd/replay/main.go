// Package main replays recorded pose frames through the batch analyzer and prints the report.
// Input is JSON lines, one frame per line: {"observations": [{"landmarks": [...], "confidence": 0.9}]}.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/logging"

	log "github.com/sirupsen/logrus"
)

const maxLineBytes = 4 * 1024 * 1024

type options struct {
	exerciseType string
	fps          float64
	maxFrames    int
	withFrames   bool
}

func main() {
	exerciseType := flag.String("exercise", "", "exercise type, e.g. squat, pushup, plank")
	framesPath := flag.String("frames", "-", "JSON lines frames file, - for stdin")
	fps := flag.Float64("fps", batch.DefaultFPS, "frames per second of the recording")
	maxFrames := flag.Int("max-frames", 0, "refuse recordings with more frames (0 = no limit)")
	withFrames := flag.Bool("with-frames", false, "include per-frame records in the output")
	logLevel := flag.String("log-level", "info", "log level [trace | debug | info | warn | error]")
	flag.Parse()

	// stdout carries the report
	log.SetOutput(os.Stderr)
	log.SetLevel(logging.GetLevel(*logLevel))

	in := os.Stdin
	if *framesPath != "-" {
		f, err := os.Open(*framesPath)
		if err != nil {
			log.Fatalf("open frames file: %s", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, options{
		exerciseType: *exerciseType,
		fps:          *fps,
		maxFrames:    *maxFrames,
		withFrames:   *withFrames,
	}, in, os.Stdout)
	if err != nil {
		log.Fatalf("replay: %s", err)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	exType, err := exercise.ParseType(opts.exerciseType)
	if err != nil {
		return err
	}

	frames, err := readFrames(in)
	if err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	log.Infof("replaying %d frames of %s at %.1f fps", len(frames), exType, opts.fps)

	runner := batch.NewRunner(batch.WithMaxFrames(opts.maxFrames))
	report, err := runner.Run(ctx, batch.Params{
		ExerciseType: exType,
		FPS:          opts.fps,
		Frames:       frames,
	}, func(p batch.Progress) {
		log.Debugf("frame %d/%d (%.0f%%), people: %d", p.CurrentFrame, p.TotalFrames, p.ProgressPercent, p.PeopleDetected)
	})
	if err != nil {
		return err
	}

	if !opts.withFrames {
		report.FrameRecords = nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// readFrames parses one frame per line, blank lines are skipped.
func readFrames(r io.Reader) ([]batch.Frame, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var frames []batch.Frame
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var f batch.Frame
		if err := json.Unmarshal([]byte(line), &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, errors.New("no frames")
	}
	return frames, nil
}
