package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/Restioson/blair-mountain/internal/analyze"
	"github.com/Restioson/blair-mountain/internal/spec"
)

// runInspect parses the given spec files and dumps what the parser saw,
// plus the copyability class of every member. No manifest is involved:
// inspect exists for poking at a spec file in isolation.
func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)

	setupLogging(*verbose)

	if fs.NArg() == 0 {
		return fmt.Errorf("inspect needs at least one spec file")
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}

	failed := false

	for _, path := range fs.Args() {
		file, diags := spec.ParseFile(path)

		var reports []analyze.Report

		if file != nil && !diags.HasErrors() {
			diags.Merge(spec.Validate(file))

			if !diags.HasErrors() {
				lint, lintDiags := analyze.CheckFile(file, nil)
				reports = lint

				diags.Merge(lintDiags)
			}
		}

		renderDiagnostics(os.Stderr, &diags)

		if diags.HasErrors() {
			failed = true
			continue
		}

		fmt.Println(titleStyle.Render(path))
		dumper.Dump(file)

		for _, r := range reports {
			line := fmt.Sprintf("%s.%s (%s): %s", r.Union, r.Member, r.Type, r.Class)
			if r.Reason != "" {
				line += " " + dimStyle.Render("("+r.Reason+")")
			}

			fmt.Println(line)
		}
	}

	if failed {
		return errDiagnostics
	}

	return nil
}
