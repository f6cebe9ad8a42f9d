package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lutetab/internal/rdm"
	"github.com/pdiddy/lutetab/internal/secrets"
	"github.com/pdiddy/lutetab/pkg/types"
)

const defaultAPIURL = "https://test.researchdata.tuwien.ac.at/api"

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create repository drafts describing lute recordings",
	Long: `Upload reads the recordings manifest and the source table, builds an
InvenioRDM record for every recording and creates it as a draft in the
research data repository. The API token is read from the secrets directory
(rdm-api-token) or from ` + secrets.EnvPrefix + `RDM_API_TOKEN.

With --dry-run the records are printed as JSON and nothing is sent.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().String("api-url", defaultAPIURL, "repository API base URL")
	uploadCmd.Flags().String("sources", "sources.yaml", "YAML source table")
	uploadCmd.Flags().String("recordings", "recordings.yaml", "YAML recordings manifest")
	uploadCmd.Flags().Int("max-retries", 0, "retries on HTTP 429/503 (default 5)")
	uploadCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	uploadCmd.Flags().Bool("dry-run", false, "print records instead of creating drafts")

	bindFlag("upload.api_url", uploadCmd.Flags().Lookup("api-url"))
	bindFlag("upload.sources_file", uploadCmd.Flags().Lookup("sources"))
	bindFlag("upload.recordings_file", uploadCmd.Flags().Lookup("recordings"))
	bindFlag("upload.max_retries", uploadCmd.Flags().Lookup("max-retries"))
	bindFlag("upload.timeout", uploadCmd.Flags().Lookup("timeout"))
	bindFlag("upload.dry_run", uploadCmd.Flags().Lookup("dry-run"))

	rootCmd.AddCommand(uploadCmd)
}

func uploadConfig() (types.UploadConfig, error) {
	cfg := types.UploadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("upload.timeout"),
			UserAgent: defaultUserAgent,
		},
		APIURL:         viper.GetString("upload.api_url"),
		SourcesFile:    viper.GetString("upload.sources_file"),
		RecordingsFile: viper.GetString("upload.recordings_file"),
		MaxRetries:     viper.GetInt("upload.max_retries"),
		DryRun:         viper.GetBool("upload.dry_run"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if err := viper.UnmarshalKey("upload.contact", &cfg.Contact); err != nil {
		return cfg, fmt.Errorf("reading upload.contact: %w", err)
	}
	return cfg, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := uploadConfig()
	if err != nil {
		return err
	}

	sources, err := rdm.LoadSources(cfg.SourcesFile)
	if err != nil {
		return err
	}
	recordings, err := rdm.LoadRecordings(cfg.RecordingsFile)
	if err != nil {
		return err
	}

	var drafter rdm.Drafter
	if !cfg.DryRun {
		client, err := rdm.NewClient(cfg, loadedSecrets.Get(rdm.TokenKey), logger)
		if err != nil {
			return err
		}
		drafter = client
	}

	sum, err := rdm.NewUploader(cfg, drafter, logger, os.Stdout).Run(cmd.Context(), recordings, sources)
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d recording(s) failed", sum.Failed)
	}
	return nil
}
