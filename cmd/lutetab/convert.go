package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/convert"
	"github.com/pdiddy/lutetab/internal/ledger"
	"github.com/pdiddy/lutetab/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert every *GLT.mei file under a source tree",
	Long: `Convert walks the source directory and writes, for every *GLT.mei file,
a French (FLT/) and an Italian (ILT/) tablature version under the output
directory, then copies the original into GLT/. *CMN.mei companions are copied
into CMN/ unchanged; other .mei files are skipped.

Each run is recorded in a ledger inside the output directory. With
--incremental, sources whose content has not changed since their last
successful conversion are left alone.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("source-dir", ".", "root of the tree searched for MEI files")
	convertCmd.Flags().String("output-dir", "converted", "directory receiving GLT/, FLT/, ILT/ and CMN/")
	convertCmd.Flags().String("prefix", "", "only search top-level folders starting with this prefix")
	convertCmd.Flags().String("ledger", "", "conversion ledger path (default <output-dir>/"+ledger.DefaultFile+")")
	convertCmd.Flags().Bool("incremental", false, "skip sources unchanged since their last successful conversion")
	convertCmd.Flags().Bool("no-ledger", false, "do not record the run")

	bindFlag("convert.source_dir", convertCmd.Flags().Lookup("source-dir"))
	bindFlag("convert.output_dir", convertCmd.Flags().Lookup("output-dir"))
	bindFlag("convert.folder_prefix", convertCmd.Flags().Lookup("prefix"))
	bindFlag("convert.ledger_path", convertCmd.Flags().Lookup("ledger"))
	bindFlag("convert.incremental", convertCmd.Flags().Lookup("incremental"))

	rootCmd.AddCommand(convertCmd)
}

func conversionConfig() types.ConversionConfig {
	cfg := types.ConversionConfig{
		SourceDir:    viper.GetString("convert.source_dir"),
		OutputDir:    viper.GetString("convert.output_dir"),
		FolderPrefix: viper.GetString("convert.folder_prefix"),
		LedgerPath:   viper.GetString("convert.ledger_path"),
		Incremental:  viper.GetBool("convert.incremental"),
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = filepath.Join(cfg.OutputDir, ledger.DefaultFile)
	}
	return cfg
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := conversionConfig()
	noLedger, _ := cmd.Flags().GetBool("no-ledger")

	var l convert.Ledger
	if !noLedger {
		store, err := ledger.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer store.Close()
		l = store
	} else if cfg.Incremental {
		logger.Warn("incremental mode needs the ledger; converting everything")
	}

	logger.Info("starting conversion",
		zap.String("source_dir", cfg.SourceDir),
		zap.String("output_dir", cfg.OutputDir),
		zap.Bool("incremental", cfg.Incremental))

	result, err := convert.New(cfg, l, logger, os.Stdout).Run(cmd.Context())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
