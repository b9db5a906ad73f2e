package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mathfmt/pkg/datamodel"
	"github.com/matzehuels/mathfmt/pkg/formatter"
)

// formatOptions holds the flags of the format command.
type formatOptions struct {
	renderer    rendererFlags
	format      string
	jobs        int
	warnUnknown bool
}

// formatCommand creates the format command.
func (c *CLI) formatCommand() *cobra.Command {
	opts := formatOptions{}

	cmd := &cobra.Command{
		Use:   "format [tex...]",
		Short: "Format TeX math",
		Long: `Format TeX math in the requested output format.

Each argument is one TeX expression. Without arguments, expressions are read
from stdin, one per line. Outputs are printed in input order, one per line.

Formats: ` + strings.Join(formatter.Known(), ", ") + `
Aliases: plain, wiki, html, html-diff. Unknown formats are rendered as html.`,
		Example: `  mathfmt format '\sin x'
  mathfmt format --format wiki 'E = mc^2'
  mathfmt format --format html-diff --backend local 'x^2'
  cat formulas.txt | mathfmt format --jobs 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := args
			if len(inputs) == 0 {
				var err error
				if inputs, err = readLines(cmd.InOrStdin()); err != nil {
					return err
				}
			}
			return c.runFormat(cmd, opts, inputs)
		},
	}

	opts.renderer.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (default from config, else text/html)")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "number of expressions rendered concurrently")
	cmd.Flags().BoolVar(&opts.warnUnknown, "warn-unknown", false, "warn when the format is not recognized")

	return cmd
}

func (c *CLI) runFormat(cmd *cobra.Command, opts formatOptions, inputs []string) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := opts.renderer.apply(cmd, cfg); err != nil {
		return err
	}

	format := cfg.Formatter.Format
	if opts.format != "" {
		format = opts.format
	}
	warnUnknown := cfg.Formatter.WarnUnknown || opts.warnUnknown

	r, closeCache, err := c.newRenderer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	f := formatter.New(formatter.Canonical(format), r,
		formatter.WithLogger(c.Logger),
		formatter.WithImageURL(cfg.Renderer.ImageURL),
		formatter.WithWarnUnknown(warnUnknown),
	)

	var spinner *Spinner
	if f.Kind().Renders() && isatty.IsTerminal(os.Stderr.Fd()) {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d expression(s)...", len(inputs)))
		spinner.Start()
	}
	prog := newProgress(c.Logger)

	outputs, err := formatAll(ctx, f, inputs, opts.jobs)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, out := range outputs {
		fmt.Fprintln(w, out)
	}
	if f.Kind().Renders() {
		prog.done(fmt.Sprintf("Formatted %d expression(s) as %s", len(outputs), f.Kind()))
	}
	return nil
}

// formatAll formats inputs with at most jobs concurrent calls and returns
// the outputs in input order. The first invalid input aborts the batch.
func formatAll(ctx context.Context, f *formatter.Formatter, inputs []string, jobs int) ([]string, error) {
	outputs := make([]string, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, tex := range inputs {
		g.Go(func() error {
			out, err := f.Format(ctx, datamodel.StringValue(tex))
			if err != nil {
				return fmt.Errorf("input %d: %w", i+1, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
