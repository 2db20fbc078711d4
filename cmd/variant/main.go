// cmd/variant/main.go
// Generates the per-student variant artifact consumed by the assignment
// filler and the fixture loader.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/dattu/lab_variants/pkg/config"
	"github.com/dattu/lab_variants/pkg/metrics"
	"github.com/dattu/lab_variants/pkg/storage"
	"github.com/dattu/lab_variants/pkg/variant"
)

const usage = `Usage: variant [flags] <student_id>
Example: variant johndoe123
         variant --roster roster.txt --out-dir variants/
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what a single invocation needs once flags are parsed.
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	history *storage.History
	out     io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("variant", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	cfgPath := fs.String("config", "", "optional YAML config file")
	fs.String("paths-root", ".", "project root the artifact path is relative to")
	fs.String("paths-artifact", storage.DefaultArtifact, "artifact file name")
	fs.String("paths-history", "", "bbolt file recording generations (disabled when empty)")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
	fs.Int("worker-concurrency", 4, "roster generation workers")
	roster := fs.String("roster", "", "file with one student id per line")
	outDir := fs.String("out-dir", "variants", "artifact directory for --roster")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(*cfgPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: config: %v\n", err)
		return 1
	}

	a := &app{cfg: cfg, metrics: metrics.New(), out: stdout}
	if p := cfg.HistoryPath(); p != "" {
		if a.history, err = storage.OpenHistory(p); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer a.history.Close()
	}
	defer a.flushMetrics()

	if *roster != "" {
		if err := a.generateRoster(*roster, *outDir); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if fs.NArg() < 1 {
		fs.Usage()
		return 1
	}
	studentID := strings.TrimSpace(fs.Arg(0))
	if studentID == "" {
		fmt.Fprintln(stderr, "Error: Student ID cannot be empty")
		return 1
	}

	b, err := a.generateOne(studentID, cfg.ArtifactPath())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printSummary(stdout, b)
	return 0
}

func (a *app) flushMetrics() {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		log.Printf("metrics textfile: %v", err)
	}
}

// generateOne derives, saves and records the bundle for studentID.
func (a *app) generateOne(studentID, path string) (*variant.Bundle, error) {
	start := time.Now()
	b, err := variant.Generate(studentID)
	a.metrics.ObserveGenerate(start, err)
	if err != nil {
		return nil, err
	}

	err = storage.Save(b, path)
	a.metrics.ObserveWrite(err)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Variant configuration saved to: %s\n", path)

	if a.history != nil {
		if err := a.record(b, path); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (a *app) record(b *variant.Bundle, path string) error {
	digest, err := storage.ContentDigest(b)
	if err != nil {
		return err
	}
	prev, err := a.history.Record(storage.Record{
		StudentID:   b.StudentID,
		Digest:      digest,
		Path:        path,
		GeneratedAt: *b.GeneratedAt,
	})
	if err != nil {
		return err
	}
	switch {
	case prev == nil:
	case prev.Digest == digest:
		fmt.Fprintf(a.out, "Content unchanged since %s\n", prev.GeneratedAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(a.out, "Content changed since %s\n", prev.GeneratedAt.Format(time.RFC3339))
	}
	return nil
}

func printSummary(w io.Writer, b *variant.Bundle) {
	s := b.Shapes
	fmt.Fprintf(w, "\nGenerated variant for student: %s\n", b.StudentID)
	fmt.Fprintf(w, "Circle radius: %v\n", s.Circle.Radius)
	fmt.Fprintf(w, "Rectangle: %v x %v\n", s.Rectangle.Width, s.Rectangle.Height)
	fmt.Fprintf(w, "Payment amounts: %v\n", b.Payments.Amounts)
	fmt.Fprintf(w, "Event types: %v\n", b.Observer.EventTypes)
}

/* ------------------------------------------------------------------------ */
/* roster mode                                                              */
/* ------------------------------------------------------------------------ */

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// artifactName turns a student id into a file name inside the roster
// output directory.
func artifactName(studentID string) string {
	return unsafeName.ReplaceAllString(studentID, "_") + ".json"
}

func readRoster(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, sc.Err()
}

func (a *app) generateRoster(rosterPath, outDir string) error {
	ids, err := readRoster(rosterPath)
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("roster %s has no student ids", rosterPath)
	}
	if !filepath.IsAbs(outDir) {
		outDir = a.cfg.Resolve(outDir)
	}

	workers := a.cfg.Worker.Concurrency
	if workers < 1 {
		workers = 1
	}
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []string
	)
	// Output lines from workers must not interleave.
	shared := a.out
	a.out = &lockedWriter{w: shared}
	defer func() { a.out = shared }()

	sem := make(chan struct{}, workers)
	for _, id := range ids {
		id := id
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			if _, err := a.generateOne(id, filepath.Join(outDir, artifactName(id))); err != nil {
				log.Printf("[roster] %s: %v", id, err)
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	fmt.Fprintf(shared, "Generated %d/%d variants into %s\n", len(ids)-len(failed), len(ids), outDir)
	if len(failed) > 0 {
		return fmt.Errorf("%d roster entries failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
