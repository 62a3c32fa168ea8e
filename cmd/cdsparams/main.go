// cdsparams validates transform-parameter files and optionally dumps the
// parsed parameters.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-cds/cds"
	"github.com/robert-malhotra/go-cds/params"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var includeDir string
	var dump bool

	cmd := &cobra.Command{
		Use:   "cdsparams [flags] file...",
		Short: "Validate transform-parameter files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := false
			for _, path := range args {
				if err := checkFile(cmd, path, includeDir, dump); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed = true
				}
			}
			if failed {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&includeDir, "include-dir", "I", "",
		"directory searched by @include directives (default: each file's directory)")
	cmd.Flags().BoolVar(&dump, "dump", false, "print the parsed parameters")
	return cmd
}

func checkFile(cmd *cobra.Command, path, includeDir string, dump bool) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dir := includeDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	g := cds.NewGroup("check")
	if err := g.ParseTransformParams(string(text), params.DirResolver(dir)); err != nil {
		return err
	}
	keys := g.TransformParamKeys()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d parameters)\n", path, len(keys))
	if dump {
		for _, k := range keys {
			v, _ := g.TransformParam(k[0], k[1])
			fmt.Fprintf(cmd.OutOrStdout(), "  %s:%s = %s\n", k[0], k[1], v)
		}
	}
	return nil
}
