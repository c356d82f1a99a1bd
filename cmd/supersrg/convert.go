package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jvmmap/supersrg"
)

func newConvertCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert [--format FMT] IN OUT",
		Short: "Converts a mapping file between SRG, CSRG, and binary formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "srg", "output format: binary or srg")
	return cmd
}

func runConvert(inPath, outPath, format string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer in.Close()

	builder := supersrg.NewMappingStoreBuilder()
	switch supersrg.DetectFormat(inPath) {
	case supersrg.FormatBinary:
		snapshot, err := supersrg.DecodeMappings(in)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", inPath, err)
		}
		return writeConverted(outPath, format, snapshot)
	case supersrg.FormatCSRG:
		if err := supersrg.ParseCsrg(in, builder); err != nil {
			return fmt.Errorf("parsing %s: %w", inPath, err)
		}
	default:
		if err := supersrg.ParseSrg(in, builder); err != nil {
			return fmt.Errorf("parsing %s: %w", inPath, err)
		}
	}

	snapshot, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building %s: %w", inPath, err)
	}
	return writeConverted(outPath, format, snapshot)
}

func writeConverted(outPath, format string, snapshot supersrg.MappingSnapshot) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	switch format {
	case "binary":
		return supersrg.EncodeMappings(out, snapshot, "")
	case "srg", "":
		return supersrg.WriteSrg(out, snapshot, supersrg.SrgEncodeOptions{IncludePackages: true})
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
