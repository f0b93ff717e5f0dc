package preflight

import (
	"chapsplit/internal/config"
	"chapsplit/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll evaluates the tool requirements for cfg and, when outputDir is not
// empty, the output directory.
func RunAll(cfg *config.Config, outputDir string) []Result {
	statuses := deps.CheckBinaries(deps.Requirements(cfg))
	results := make([]Result, 0, len(statuses)+2)
	for _, status := range statuses {
		results = append(results, FromStatus(status))
	}

	if outputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", outputDir))
	}
	if cfg != nil && cfg.History.Enabled {
		results = append(results, CheckHistoryPath(cfg.History.Path))
	}
	return results
}

// FromStatus converts a dependency status into a check result.
func FromStatus(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Path}
	}
	return Result{Name: status.Name, Passed: status.Optional, Detail: status.Detail}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
