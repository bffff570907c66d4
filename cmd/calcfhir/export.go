package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehr/calcfhir/internal/config"
	"github.com/ehr/calcfhir/internal/domain/interchange"
	"github.com/ehr/calcfhir/internal/platform/fhir"
)

func exportCmd() *cobra.Command {
	var (
		input  string
		output string
		opts   interchange.Options
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a calculator record (JSON) into a FHIR collection bundle",
		Example: `  calcfhir export --input result.json --output bundle.fhir.json
  cat result.json | calcfhir export --patient-id-system urn:oid:2.16.840.1.113883.4.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			defaults := interchange.Options{
				PatientIDSystem:     cfg.PatientIDSystem,
				ComponentCodeSystem: cfg.ComponentCodeSystem,
			}

			in := cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			if output == "" || output == "-" {
				return exportBundle(in, cmd.OutOrStdout(), defaults.Merge(opts))
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := exportBundle(in, f, defaults.Merge(opts)); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "Input record file (default stdin)")
	flags.StringVarP(&output, "output", "o", "", "Output bundle file (default stdout)")
	flags.StringVar(&opts.ResourceID, "resource-id", "", "Observation id (default generated)")
	flags.StringVar(&opts.PatientIDSystem, "patient-id-system", "", "Patient identifier system URI")
	flags.StringVar(&opts.Category, "category", "", "Observation category code")
	flags.StringVar(&opts.CategoryDisplay, "category-display", "", "Observation category display")
	flags.StringVar(&opts.CodeSystem, "code-system", "", "Observation code system URI")
	flags.StringVar(&opts.ComponentCodeSystem, "component-code-system", "", "Component code system URI")
	return cmd
}

// exportBundle reads one record from r and writes its bundle to w in the
// same serialisation the HTTP download uses.
func exportBundle(r io.Reader, w io.Writer, opts interchange.Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	rec, err := interchange.DecodeRecord(data)
	if err != nil {
		return err
	}
	bundle, err := interchange.BuildBundle(rec, &opts)
	if err != nil {
		return err
	}
	out, err := fhir.Marshal(bundle)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}
