package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lutetab/internal/typo"
	"github.com/pdiddy/lutetab/pkg/types"
)

var fixTypoCmd = &cobra.Command{
	Use:   "fix-typo",
	Short: "Correct known misspellings in monogr titles",
	Long: `Fix-typo scans every .mei file under --root (skipping the converted
output folder) and corrects known misspellings in the first monogr/title,
rewriting the file in place. Replacements come from typo.replacements in the
config file; by default "kustliche vnerweisung" becomes
"kunstliche vnderweisung".`,
	RunE: runFixTypo,
}

func init() {
	fixTypoCmd.Flags().String("root", ".", "directory searched for .mei files")
	fixTypoCmd.Flags().StringSlice("exclude", nil, "directory names to skip (default converted)")
	fixTypoCmd.Flags().Bool("dry-run", false, "report files that would change without writing them")

	bindFlag("typo.root", fixTypoCmd.Flags().Lookup("root"))
	bindFlag("typo.exclude", fixTypoCmd.Flags().Lookup("exclude"))
	bindFlag("typo.dry_run", fixTypoCmd.Flags().Lookup("dry-run"))

	rootCmd.AddCommand(fixTypoCmd)
}

func runFixTypo(cmd *cobra.Command, args []string) error {
	cfg := types.TypoConfig{
		Root:    viper.GetString("typo.root"),
		Exclude: viper.GetStringSlice("typo.exclude"),
		DryRun:  viper.GetBool("typo.dry_run"),
	}
	if err := viper.UnmarshalKey("typo.replacements", &cfg.Replacements); err != nil {
		return fmt.Errorf("reading typo.replacements: %w", err)
	}

	sum, err := typo.New(cfg, logger, os.Stdout).Run(cmd.Context())
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be processed", sum.Failed)
	}
	return nil
}
