// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and record types shared by the
// lutetab commands and packages.
package types

import "time"

// FileStatus is the outcome of processing one discovered file.
type FileStatus string

const (
	StatusConverted FileStatus = "converted"
	StatusCopied    FileStatus = "copied"
	StatusSkipped   FileStatus = "skipped"
	StatusUnchanged FileStatus = "unchanged"
	StatusFailed    FileStatus = "failed"
)

// ErrorClass groups failures for reporting.
type ErrorClass string

const (
	ErrorNone       ErrorClass = ""
	ErrorParse      ErrorClass = "parse"
	ErrorStructural ErrorClass = "structural"
	ErrorIO         ErrorClass = "io"
	ErrorOther      ErrorClass = "other"
)

// ConversionRecord is one target conversion of one source file as kept in
// the ledger.
type ConversionRecord struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	SourcePath   string     `json:"source_path" yaml:"source_path"`
	SourceSHA256 string     `json:"source_sha256" yaml:"source_sha256"`
	Target       string     `json:"target" yaml:"target"`
	OutputPath   string     `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	Status       FileStatus `json:"status" yaml:"status"`
	ErrorClass   ErrorClass `json:"error_class,omitempty" yaml:"error_class,omitempty"`
	Error        string     `json:"error,omitempty" yaml:"error,omitempty"`
	ConvertedAt  time.Time  `json:"converted_at" yaml:"converted_at"`
}

// RunCounts summarizes a batch run.
type RunCounts struct {
	Converted int `json:"converted" yaml:"converted"`
	Copied    int `json:"copied" yaml:"copied"`
	Skipped   int `json:"skipped" yaml:"skipped"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Total returns the number of files accounted for.
func (c RunCounts) Total() int {
	return c.Converted + c.Copied + c.Skipped + c.Unchanged + c.Failed
}

// Run is one recorded batch conversion.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	SourceDir  string    `json:"source_dir" yaml:"source_dir"`
	OutputDir  string    `json:"output_dir" yaml:"output_dir"`
	RunCounts  `yaml:",inline"`
}
