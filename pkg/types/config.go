package types

import "time"

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn or error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects the encoder: console or json (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests (e.g. "lutetab/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ConversionConfig holds settings for the GLT to FLT/ILT batch conversion.
type ConversionConfig struct {
	// SourceDir is the root of the tree searched for *GLT.mei and *CMN.mei files.
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// OutputDir receives the GLT/, FLT/, ILT/ and CMN/ folders.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// FolderPrefix limits discovery to top-level folders whose names start
	// with the prefix (e.g. "Jud_1523-2"). Empty means the whole tree.
	FolderPrefix string `json:"folder_prefix,omitempty" yaml:"folder_prefix,omitempty" mapstructure:"folder_prefix"`

	// LedgerPath is the SQLite conversion ledger (default <OutputDir>/.lutetab.db).
	LedgerPath string `json:"ledger_path,omitempty" yaml:"ledger_path,omitempty" mapstructure:"ledger_path"`

	// Incremental skips sources whose content matches the last successful
	// conversion recorded in the ledger.
	Incremental bool `json:"incremental" yaml:"incremental" mapstructure:"incremental"`
}

// Replacement is one literal text substitution applied by the typo fixer.
type Replacement struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// TypoConfig holds settings for the monogr/title typo fixer.
type TypoConfig struct {
	// Root is the directory searched recursively for *.mei files.
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// Exclude lists directory names that are not descended into
	// (default ["converted"]).
	Exclude []string `json:"exclude" yaml:"exclude" mapstructure:"exclude"`

	// Replacements are applied in order to the first monogr/title.
	Replacements []Replacement `json:"replacements" yaml:"replacements" mapstructure:"replacements"`

	// DryRun reports matches without rewriting files.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`
}

// Person names an individual credited on a repository record.
type Person struct {
	GivenName       string `json:"given_name" yaml:"given_name" mapstructure:"given_name"`
	FamilyName      string `json:"family_name" yaml:"family_name" mapstructure:"family_name"`
	AffiliationID   string `json:"affiliation_id,omitempty" yaml:"affiliation_id,omitempty" mapstructure:"affiliation_id"`
	AffiliationName string `json:"affiliation_name,omitempty" yaml:"affiliation_name,omitempty" mapstructure:"affiliation_name"`
}

// UploadConfig holds settings for the research data repository uploader.
type UploadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIURL is the repository API base, e.g. "https://test.researchdata.tuwien.ac.at/api".
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// SourcesFile is the YAML source table keyed by source id.
	SourcesFile string `json:"sources_file" yaml:"sources_file" mapstructure:"sources_file"`

	// RecordingsFile is the YAML manifest of recordings to describe.
	RecordingsFile string `json:"recordings_file" yaml:"recordings_file" mapstructure:"recordings_file"`

	// Contact is credited as contact person on every record.
	Contact Person `json:"contact" yaml:"contact" mapstructure:"contact"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// DryRun prints the records instead of submitting them.
	DryRun bool `json:"dry_run" yaml:"dry_run" mapstructure:"dry_run"`
}

// PipelineConfig groups all configuration sections of lutetab.yaml.
type PipelineConfig struct {
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
	Conversion ConversionConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Typo       TypoConfig       `json:"typo" yaml:"typo" mapstructure:"typo"`
	Upload     UploadConfig     `json:"upload" yaml:"upload" mapstructure:"upload"`
}
