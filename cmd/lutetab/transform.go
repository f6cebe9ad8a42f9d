package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/mei"
	"github.com/pdiddy/lutetab/internal/tablature"
)

var transformCmd = &cobra.Command{
	Use:   "transform <file>",
	Short: "Convert a single German tablature file",
	Long: `Transform converts one German lute tablature MEI file to the target
convention (french/FLT or italian/ILT) and writes the result to --output, or
to standard output when no output path is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringP("target", "t", "french", "target convention: french (FLT) or italian (ILT)")
	transformCmd.Flags().StringP("output", "o", "", "output file (default: standard output)")

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("target")
	target, err := tablature.ParseConvention(name)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	doc, err := mei.Load(args[0])
	if err != nil {
		return err
	}
	out, stats, err := tablature.TransformWithStats(doc, target)
	if err != nil {
		return err
	}
	logger.Debug("transformed",
		zap.String("source", args[0]),
		zap.String("target", target.Abbr()),
		zap.Int("rests_removed", stats.RestsRemoved),
		zap.Int("markers_added", stats.MarkersAdded))

	if output != "" {
		return mei.WriteFile(out, output)
	}
	data, err := mei.Serialize(out)
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout)
	return nil
}
