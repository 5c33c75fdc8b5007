package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"urlextract/internal/config"
	"urlextract/internal/extractor"
	"urlextract/pkg/domain"
	"urlextract/pkg/logger"

	"github.com/go-faster/jx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// maxLineBytes bounds one message read from a file or stdin.
const maxLineBytes = 1 << 20

// printer writes the URLs of every text, as plain lines or as one JSON
// object per text.
type printer struct {
	w      *bufio.Writer
	asJSON bool
}

func (p *printer) print(line int, res *domain.Extraction) error {
	if !p.asJSON {
		for _, u := range res.URLs {
			text := u.Text
			if u.Normalized != "" {
				text = u.Normalized
			}
			if _, err := fmt.Fprintln(p.w, text); err != nil {
				return fmt.Errorf("could not write url: %w", err)
			}
		}

		return nil
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("line")
	e.Int(line)
	e.FieldStart("urls")
	e.ArrStart()
	for _, u := range res.URLs {
		e.ObjStart()
		e.FieldStart("url")
		e.Str(u.Text)
		if u.Normalized != "" {
			e.FieldStart("normalized")
			e.Str(u.Normalized)
		}
		e.FieldStart("start")
		e.Int(u.Start)
		e.FieldStart("end")
		e.Int(u.End)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()

	if _, err := p.w.Write(append(e.Bytes(), '\n')); err != nil {
		return fmt.Errorf("could not write result: %w", err)
	}

	return nil
}

// extractLines extracts every line of r. Lines the extractor refuses are
// logged and skipped.
func extractLines(ctx context.Context, ext extractor.Extractor, r io.Reader, p *printer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++

		res, err := ext.Extract(ctx, scanner.Text())
		if err != nil {
			logger.Warn(ctx, "skipping line", zap.Int("line", line), zap.Error(err))

			continue
		}
		if err := p.print(line, res); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

	return nil
}

func extractFile(ctx context.Context, ext extractor.Extractor, path string, progress io.Writer, p *printer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open input file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("could not stat input file: %w", err)
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("extracting"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	reader := progressbar.NewReader(f, bar)

	if err := extractLines(ctx, ext, &reader, p); err != nil {
		return err
	}

	return bar.Finish()
}

func extractCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Prints the URLs found in texts",
		Long: "Prints the URLs found in the given texts. Without arguments, every line of " +
			"--file or of the standard input is a text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			opts := extractor.NewOptions(cfg)
			if cmd.Flags().Changed("normalize") {
				opts.Normalize, _ = cmd.Flags().GetBool("normalize")
			}
			if cmd.Flags().Changed("dedupe") {
				opts.Dedupe, _ = cmd.Flags().GetBool("dedupe")
			}

			ext, err := extractor.New(opts, extractor.Deps{})
			if err != nil {
				return fmt.Errorf("could not create extractor: %w", err)
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			p := &printer{w: bufio.NewWriter(cmd.OutOrStdout()), asJSON: asJSON}
			defer p.w.Flush()

			file, _ := cmd.Flags().GetString("file")
			switch {
			case len(args) > 0:
				for i, text := range args {
					res, err := ext.Extract(ctx, text)
					if err != nil {
						return fmt.Errorf("argument %d: %w", i+1, err)
					}
					if err := p.print(i+1, res); err != nil {
						return err
					}
				}
			case file != "":
				return extractFile(ctx, ext, file, cmd.ErrOrStderr(), p)
			default:
				return extractLines(ctx, ext, cmd.InOrStdin(), p)
			}

			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Read one text per line from this file")
	cmd.Flags().Bool("json", false, "Print one JSON object per text")
	cmd.Flags().Bool("normalize", cfg.Extractor.Normalize, "Print normalized URLs")
	cmd.Flags().Bool("dedupe", cfg.Extractor.Dedupe, "Print every URL of a text once")

	return cmd
}
