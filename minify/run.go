// Package minify implements "minify" command: it reads stylesheets, drops
// redundant font sources and writes results.
package minify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fontmin/config"
	"fontmin/css"
	"fontmin/fonts"
	"fontmin/resources"
	"fontmin/state"
)

// options controls single minification run.
type options struct {
	Src, Dst     string
	Base         *url.URL // nil means location of each stylesheet
	Media        string
	FontsDir     string
	Manifest     string
	Sniff        bool
	Overwrite    bool
	SharedScope  bool
	NameTemplate string
}

// stylesheet is a parsed input file.
type stylesheet struct {
	path  string // absolute path
	rel   string // path relative to source root
	sheet *css.Stylesheet
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("minify")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		// next to the source
		dst = src
		if fi, err := os.Stat(src); err == nil && !fi.IsDir() {
			dst = filepath.Dir(src)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	cfg := env.Cfg.Minify
	if cmd.IsSet("base") {
		cfg.BaseURL = cmd.String("base")
	}
	base, err := cfg.Base()
	if err != nil {
		return err
	}

	opts := options{
		Src:          src,
		Dst:          dst,
		Base:         base,
		Media:        cfg.Media,
		FontsDir:     env.Cfg.Resources.Fonts,
		Manifest:     env.Cfg.Resources.Manifest,
		Sniff:        env.Cfg.Resources.Sniff,
		Overwrite:    cfg.Overwrite || cmd.Bool("overwrite"),
		SharedScope:  cfg.SharedScope && !cmd.Bool("separate"),
		NameTemplate: cfg.OutputNameTemplate,
	}
	if cmd.IsSet("media") {
		opts.Media = cmd.String("media")
	}
	if cmd.IsSet("fonts") {
		opts.FontsDir = cmd.String("fonts")
	}
	if cmd.IsSet("manifest") {
		opts.Manifest = cmd.String("manifest")
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	stats, err := process(ctx, opts, env.Rpt, log)
	log.Info("Fonts statistics", zap.Object("stats", stats))
	return err
}

// process handles the minification independently of CLI framework.
func process(ctx context.Context, opts options, rpt *config.Report, log *zap.Logger) (fonts.Stats, error) {
	var stats fonts.Stats

	table, err := loadResources(ctx, opts, log)
	if err != nil {
		return stats, err
	}

	sheets, err := readStylesheets(ctx, opts, rpt, log)
	if err != nil {
		return stats, err
	}
	if len(sheets) == 0 {
		log.Warn("No stylesheets found", zap.String("source", opts.Src))
		return stats, nil
	}

	docs := [][]*stylesheet{sheets}
	if !opts.SharedScope {
		docs = make([][]*stylesheet, 0, len(sheets))
		for _, s := range sheets {
			docs = append(docs, []*stylesheet{s})
		}
	}

	minifier := fonts.NewMinifier(log)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		input := make([]fonts.Sheet, 0, len(doc))
		for _, s := range doc {
			input = append(input, fonts.Sheet{Rules: s.sheet.Rules, Media: opts.Media, Base: sheetBase(s.path, opts.Base)})
		}
		catalog := minifier.Prepare(input, table)
		if rpt != nil {
			rpt.StoreData(fmt.Sprintf("catalogs/%d.txt", i), []byte(catalog.String()))
		}
		stats.Add(minifier.Apply(input, catalog))
	}

	for _, s := range sheets {
		if er := ctx.Err(); er != nil {
			return stats, multierr.Append(err, er)
		}
		if er := writeStylesheet(s, opts, rpt, log); er != nil {
			log.Error("Unable to write stylesheet", zap.String("file", s.path), zap.Error(er))
			err = multierr.Append(err, er)
		}
	}
	return stats, err
}

func sheetBase(path string, base *url.URL) *url.URL {
	if base != nil {
		return base
	}
	u, err := resources.DirURL(filepath.Dir(path))
	if err != nil {
		return nil
	}
	return u
}

// loadResources builds table of available fonts from manifest and fonts
// location. Fonts found on disk take precedence.
func loadResources(ctx context.Context, opts options, log *zap.Logger) (*resources.Table, error) {
	table := resources.NewTable()
	if len(opts.FontsDir) > 0 {
		t, err := resources.NewLoader(log, opts.Sniff).Load(ctx, opts.FontsDir, opts.Base)
		if err != nil {
			return nil, err
		}
		table.Merge(t)
	}
	if len(opts.Manifest) > 0 {
		t, err := resources.LoadManifest(opts.Manifest)
		if err != nil {
			return nil, err
		}
		for _, e := range t.Entries() {
			if _, ok := table.Lookup(e.Name); !ok {
				table.Add(e)
			}
		}
	}
	log.Debug("Font resources available", zap.Int("count", table.Len()))
	return table, nil
}

// readStylesheets parses single file or all ".css" files under directory, in
// natural order of their relative paths. Results of previous runs found in
// the directory are skipped.
func readStylesheets(ctx context.Context, opts options, rpt *config.Report, log *zap.Logger) ([]*stylesheet, error) {
	src := opts.Src
	fi, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("input source was not found: %w", err)
	}

	var paths []string
	root := src
	if fi.IsDir() {
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err != nil {
				log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
				return nil
			}
			if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".css") {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to process directory: %w", err)
		}
		sort.Sort(natural.StringSlice(paths))
		paths = skipOutputs(paths, src, opts, log)
	} else {
		root = filepath.Dir(src)
		paths = []string{src}
	}

	parser := css.NewParser(log)
	sheets := make([]*stylesheet, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error("Unable to read stylesheet", zap.String("file", path), zap.Error(err))
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, err
		}
		if err := rpt.StoreCopy("sources/"+filepath.ToSlash(rel), path); err != nil {
			log.Warn("Unable to store stylesheet in report", zap.String("file", path), zap.Error(err))
		}
		sheet := parser.Parse(data, path)
		for _, w := range sheet.Warnings {
			log.Debug("Stylesheet parsing problem", zap.String("file", path), zap.String("problem", w))
		}
		sheets = append(sheets, &stylesheet{path: path, rel: rel, sheet: sheet})
	}
	return sheets, nil
}

// skipOutputs drops files which are outputs of other files in the list, so
// running again with destination inside of source does not minify results.
func skipOutputs(paths []string, root string, opts options, log *zap.Logger) []string {
	outputs := make(map[string]string, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if out, err := buildOutputPath(rel, opts.Dst, opts.NameTemplate); err == nil && out != path {
			outputs[out] = path
		}
	}
	kept := paths[:0:0]
	for _, path := range paths {
		if from, ok := outputs[path]; ok {
			log.Debug("Skipping output of previous run", zap.String("file", path), zap.String("source", from))
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

func writeStylesheet(s *stylesheet, opts options, rpt *config.Report, log *zap.Logger) error {
	out, err := buildOutputPath(s.rel, opts.Dst, opts.NameTemplate)
	if err != nil {
		return err
	}
	if _, err := os.Stat(out); err == nil && !opts.Overwrite {
		return fmt.Errorf("output file already exists: %s", out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	if err := os.WriteFile(out, []byte(s.sheet.String()), 0644); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	rpt.Store("results/"+filepath.ToSlash(s.rel), out)
	log.Debug("Stylesheet written", zap.String("source", s.path), zap.String("output", out))
	return nil
}
