package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/tabstat/internal/logging"
	"github.com/KaramelBytes/tabstat/internal/report"
	"github.com/KaramelBytes/tabstat/internal/utils"
)

var (
	abLoad      loadFlags
	abReport    reportFlags
	abOutputDir string
	abJobs      int
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Profile multiple CSV/TSV/XLSX files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c := effectiveConfig()
		format, err := abReport.outputFormat(cmd.Flags(), c)
		if err != nil {
			return err
		}
		ropt := abReport.options(cmd.Flags(), c)
		if abOutputDir != "" {
			if err := os.MkdirAll(abOutputDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		// each goroutine owns its engine; outputs are emitted afterwards in file order
		bodies := make([][]byte, len(files))
		g, ctx := errgroup.WithContext(cmd.Context())
		jobs := abJobs
		if jobs <= 0 {
			jobs = 1
		}
		g.SetLimit(jobs)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				tab, eng, err := abLoad.loadEngine(ctx, cmd.Flags(), path)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				rep := report.FromTable(tab, eng, abReport.columns, ropt)
				body, err := render(rep, format)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				bodies[i] = body
				logging.Infof("profiled %s (%d rows)", tab.Name, tab.Rows)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, filepath.Base(path))
			}
			if abOutputDir == "" {
				fmt.Fprintln(out, strings.TrimRight(string(bodies[i]), "\n"))
				continue
			}
			outFile, renamed := uniqueOutputPath(abOutputDir, path, abLoad.sheetName, extFor(format))
			if renamed && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(outFile))
			}
			if err := utils.SafeWriteFile(outFile, bodies[i]); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and drops duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniqueOutputPath names the report after the input (and sheet) and appends
// __2, __3 ... when the name is taken.
func uniqueOutputPath(dir, input, sheet, ext string) (string, bool) {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		stem = stem + "__sheet-" + slug(sheet)
	}
	outFile := filepath.Join(dir, stem+".report"+ext)
	if _, err := os.Stat(outFile); err != nil {
		return outFile, false
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.report%s", stem, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand, true
		}
	}
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	ss := strings.Trim(b.String(), "-")
	if ss == "" {
		ss = "sheet"
	}
	return ss
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abLoad.register(analyzeBatchCmd.Flags())
	abReport.register(analyzeBatchCmd.Flags())
	analyzeBatchCmd.Flags().StringVarP(&abOutputDir, "output-dir", "o", "", "write one report per input into this directory instead of stdout")
	analyzeBatchCmd.Flags().IntVarP(&abJobs, "jobs", "j", 4, "files processed concurrently")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
