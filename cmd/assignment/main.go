// cmd/assignment/main.go
// Fills ASSIGNMENT_TEMPLATE.md with the generated variant and writes the
// personalized ASSIGNMENT.md.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dattu/lab_variants/pkg/assignment"
	"github.com/dattu/lab_variants/pkg/config"
	"github.com/dattu/lab_variants/pkg/metrics"
	"github.com/dattu/lab_variants/pkg/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("assignment", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "optional YAML config file")
	fs.String("paths-root", ".", "project root")
	fs.String("paths-artifact", storage.DefaultArtifact, "variant artifact")
	fs.String("paths-template", "ASSIGNMENT_TEMPLATE.md", "template document")
	fs.String("paths-assignment", "ASSIGNMENT.md", "personalized output")
	fs.String("metrics-textfile", "", "write Prometheus metrics to this file on exit")
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

	m := metrics.New()
	defer func() {
		if cfg.Metrics.Textfile != "" {
			if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				fmt.Fprintf(stderr, "metrics textfile: %v\n", err)
			}
		}
	}()

	out := cfg.AssignmentPath()
	err = assignment.Fill(cfg.ArtifactPath(), cfg.TemplatePath(), out)
	m.ObserveAssignment(err)
	switch {
	case errors.Is(err, storage.ErrMissingArtifact):
		fmt.Fprintln(stdout, "No variant config found. Run the variant generator first.")
		return 0
	case errors.Is(err, assignment.ErrMissingTemplate):
		fmt.Fprintln(stderr, "No assignment template found.")
		return 1
	case err != nil:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Generated personalized assignment: %s\n", out)
	return 0
}
