package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syssam/nodetypeobjects/compiler/gen"
	"github.com/syssam/nodetypeobjects/internal/config"
)

func buildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <packages>",
		Short: "Create node type objects for the selected packages",
		Long: "Create node type objects for the selected packages. Packages are\n" +
			"selected by comma separated package keys or glob patterns, e.g. 'Vendor.*'.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			sel, err := selector(args)
			if err != nil {
				return err
			}
			set, err := cmd.Flags().GetString("schema-set")
			if err != nil {
				return err
			}
			p, err := a.pipeline(cmd.Context(), set)
			if err != nil {
				return err
			}
			report, err := p.Build(cmd.Context(), sel)
			if err != nil {
				return err
			}
			printBuild(cmd.OutOrStdout(), report)
			return nil
		},
	}
	addGenerateFlags(cmd)
	return cmd
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema-set", config.DefaultSchemaSet, "Schema set to read node types from")
	cmd.Flags().String("target", "", "Generated language (php, go)")
	cmd.Flags().Int("workers", 0, "Node types generated concurrently")
	cmd.Flags().Bool("strict", false, "Fail on unknown supertypes")
}

// printBuild writes one line per artifact: " - <node type> -> <name>".
func printBuild(w io.Writer, report *gen.Report) {
	for _, e := range report.Entities {
		for _, a := range e.Artifacts {
			fmt.Fprintf(w, " - %s -> %s\n", e.Name, a.Name)
		}
	}
}

// printClean writes one line per removed file.
func printClean(w io.Writer, report *gen.Report) {
	for _, f := range report.Deleted {
		fmt.Fprintf(w, " - %s\n", f)
	}
}

func cleanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <packages>",
		Short: "Remove all node type objects from the NodeTypes folder of the selected packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			sel, err := selector(args)
			if err != nil {
				return err
			}
			p, err := a.pipeline(cmd.Context(), "")
			if err != nil {
				return err
			}
			report, err := p.Clean(cmd.Context(), sel)
			if err != nil {
				return err
			}
			printClean(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().String("target", "", "Generated language (php, go)")
	return cmd
}

func packagesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "packages [selector]",
		Short: "List the packages found below the packages directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			d, err := dialect(a.cfg.Target)
			if err != nil {
				return err
			}
			locator := a.locator()
			pkgs, err := locator.Packages()
			if err != nil {
				return err
			}
			if len(args) > 0 {
				if pkgs, err = locator.Locate(args[0]); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			for _, pkg := range pkgs {
				ns, err := d.RootNamespace(pkg)
				if err != nil {
					ns = "-"
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", pkg.Key, ns, pkg.Path)
			}
			return nil
		},
	}
}
