// Package split runs chapter extraction jobs.
//
// Runner executes prepared ffmpeg commands on a bounded worker pool and
// collects a per-chapter Report. Pipeline drives a whole invocation: probe
// the input, plan one job per chapter, prepare and lock the output
// directory, run the jobs, and record the run in the history journal.
//
// Jobs are independent. A failing chapter never stops the others; the
// Report aggregates every outcome and Report.Err joins the failures.
package split
