package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/lambda-rollout/internal/core/domain"
)

// Report output formats.
const (
	ReportFormatText = "text"
	ReportFormatJSON = "json"
	ReportFormatYAML = "yaml"
)

// WriteReport prints the run report in the requested format.
func WriteReport(w io.Writer, report domain.DeploymentReport, format string) error {
	switch strings.ToLower(format) {
	case ReportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case ReportFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case ReportFormatText, "":
		return writeTextReport(w, report)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeTextReport(w io.Writer, report domain.DeploymentReport) error {
	var b strings.Builder

	if report.NothingToDeploy {
		b.WriteString("nothing to deploy\n")
	}
	for _, line := range report.SummaryLines() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if report.DryRun && len(report.Deployed) > 0 {
		b.WriteString("(dry run: no deployments were triggered)\n")
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(&b, "skipped %s: %s\n", s.FunctionID, s.Reason)
	}
	if report.Failed != nil {
		fmt.Fprintf(&b, "failed %s: %s\n", report.Failed.Target.Transition(), report.Failed.Reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
