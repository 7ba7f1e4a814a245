package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridkit/internal/cel"
	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/formatter"
	"github.com/oakwood-commons/gridkit/internal/limiter"
	"github.com/oakwood-commons/gridkit/internal/store"
	"github.com/oakwood-commons/gridkit/pkg/grid"
	"github.com/oakwood-commons/gridkit/pkg/loader"
	"github.com/oakwood-commons/gridkit/pkg/logger"
	"github.com/oakwood-commons/gridkit/pkg/settings"
	"github.com/oakwood-commons/gridkit/pkg/tui"
)

// errShowHelp is returned by loadRows when there is neither a file nor piped input.
var errShowHelp = errors.New("no input provided")

const logFileName = "gridkit.log"

var (
	interactive  bool
	output       string
	inputFormat  string
	columnsFile  string
	whereExpr    string
	sortField    string
	sortDesc     bool
	filterArgs   []string
	searchText   string
	pageNumber   int
	pageSize     int
	noPagination bool
	storageKey   string
	noCustomize  bool
	hideColumns  []string
	showColumns  []string
	moveArgs     []string
	noColor      bool
	quiet        bool
	outputWidth  int
	outputHeight int
	rowNumbers   bool
	title        string
	configFile   string
	logLevel     string

	limitRecords  int
	offsetRecords int
	tailRecords   int

	rootCtx = context.Background()
	appCfg  config.Config
	logFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName + " [file]",
	Short: "Page, sort, filter and search tabular data in the terminal",
	Long: `gridkit loads rows from JSON, NDJSON, YAML, TOML or CSV and shows them as a table.

Columns can be shown, hidden and reordered; the choice is saved per storage
key (by default the input file name) and restored on the next run.`,
	Example: "\n  gridkit people.json --sort age --desc\n" +
		"  gridkit people.json --filter city=paris -o csv\n" +
		"  gridkit people.json --where 'row.age >= 30' --hide email\n" +
		"  cat people.ndjson | gridkit --storage-key people -i\n",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		cfg, err := config.Load(resolveConfigPath(configFile))
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		appCfg = cfg

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.StateDir = cfg.StateDir()
		run.NoColor = noColor || os.Getenv("NO_COLOR") != ""
		run.IsQuiet = quiet
		run.Interactive = interactive && !cmd.HasParent()

		var lgr *logr.Logger
		if run.Interactive {
			// the table owns the terminal; log to a file beside the saved configs
			if f, ferr := openLogFile(run.StateDir); ferr == nil {
				logFile = f
				lgr = logger.Init(level, f)
			}
		}
		if lgr == nil {
			lgr = logger.Get(level)
		}
		l := lgr.WithValues("command", cmd.Name())
		rootCtx = settings.IntoContext(logger.WithLogger(context.Background(), &l), run)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logFile != nil {
			logger.Sync()
			_ = logFile.Close()
			logFile = nil
		}
	},
	RunE: runRoot,
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := rootCtx
	run := settings.FromContextOrDefault(ctx)
	lgr := logger.FromContext(ctx)

	lim := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
	if err := lim.Validate(); err != nil {
		return fmt.Errorf("record limiting: %w", err)
	}

	format := appCfg.Output.Format
	if cmd.Flags().Changed("output") {
		format = output
	}
	outFormat, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	rows, err := loadRows(cmd, args)
	if errors.Is(err, errShowHelp) {
		return cmd.Help()
	}
	if err != nil {
		return err
	}
	total := len(rows)
	rows = limiter.Apply(lim, rows)
	lgr.V(1).Info("rows loaded", "total", total, "kept", len(rows))

	ev, err := cel.NewEvaluator()
	if err != nil {
		return err
	}
	reg, err := buildRegistry(ev, rows)
	if err != nil {
		return err
	}

	opts, err := tableOptions(cmd, ev, args)
	if err != nil {
		return err
	}

	var relay *tui.Relay
	var clock *batchClock
	gwOpts := []grid.GatewayOption{grid.WithLogger(*lgr)}
	if run.Interactive {
		relay = tui.NewRelay()
		gwOpts = append(gwOpts,
			grid.WithNotifier(relay),
			grid.WithDebounceDelay(appCfg.Persistence.SaveNoticeDelay))
	} else {
		clock = &batchClock{}
		gwOpts = append(gwOpts,
			grid.WithDebouncer(grid.NewDebouncerWithClock(appCfg.Persistence.SaveNoticeDelay, clock.AfterFunc)))
		if !run.IsQuiet {
			gwOpts = append(gwOpts, grid.WithNotifier(&writerNotifier{w: cmd.ErrOrStderr()}))
		}
	}

	var st grid.Store
	if opts.Customizable {
		fs, err := store.NewFileStore(run.StateDir)
		if err != nil {
			return err
		}
		st = fs
	}
	gw := grid.NewGateway(st, opts.Customizable, gwOpts...)

	tbl, err := grid.New(reg, rows, opts, gw)
	if err != nil {
		return err
	}
	tbl.Mount(ctx)
	if err := applyTableFlags(ctx, cmd, tbl); err != nil {
		tbl.Close()
		return err
	}

	if run.Interactive {
		progOpts, cleanup := getProgramOptions()
		defer cleanup()
		return tui.Run(ctx, tbl, tui.Config{
			Title:   displayTitle(args),
			Theme:   tuiTheme(appCfg.Theme),
			NoColor: run.NoColor,
			Width:   outputWidth,
			Height:  outputHeight,
			Relay:   relay,
		}, progOpts...)
	}

	werr := formatter.Write(cmd.OutOrStdout(), outFormat, tbl.View(), formatter.TableOptions{
		Width:      renderWidth(),
		RowNumbers: rowNumbers,
		Sort:       tbl.State().Sort,
		Styles:     renderStyles(run),
		Title:      displayTitle(args),
	})
	clock.Flush()
	tbl.Close()
	return werr
}

// loadRows reads the file argument, or stdin when it is piped or named "-".
func loadRows(cmd *cobra.Command, args []string) ([]grid.Row, error) {
	f, err := loader.ParseFormat(inputFormat)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 && args[0] != "-" {
		return loader.LoadFile(args[0], f)
	}
	if len(args) == 0 && !stdinIsPiped() {
		return nil, errShowHelp
	}
	rows, err := loader.LoadReader(cmd.InOrStdin(), f)
	if err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	return rows, nil
}

func buildRegistry(ev *cel.Evaluator, rows []grid.Row) (*grid.Registry, error) {
	if columnsFile != "" {
		return columns.LoadFile(columnsFile, ev)
	}
	reg := columns.Infer(rows)
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no columns found in input")
	}
	return reg, nil
}

// tableOptions starts from the config file's table section and applies the
// flags that shape grid.Options.
func tableOptions(cmd *cobra.Command, ev *cel.Evaluator, args []string) (grid.Options, error) {
	opts := appCfg.TableOptions()
	if noPagination {
		opts.Pagination = false
	}
	if cmd.Flags().Changed("page-size") && !slices.Contains(opts.PageSizes, pageSize) {
		opts.PageSizes = append(opts.PageSizes, pageSize)
		slices.Sort(opts.PageSizes)
	}
	opts.StorageKey = storageKey
	if opts.StorageKey == "" {
		opts.StorageKey = defaultStorageKey(args)
	}
	if noCustomize || opts.StorageKey == "" {
		opts.Customizable = false
	}
	if whereExpr != "" {
		pred, err := ev.Predicate(whereExpr)
		if err != nil {
			return opts, fmt.Errorf("--where: %w", err)
		}
		opts.Where = pred
	}
	return opts, opts.Validate()
}

// applyTableFlags replays the command-line edits through the table, the
// same actions the interactive keys dispatch.
func applyTableFlags(ctx context.Context, cmd *cobra.Command, tbl *grid.Table) error {
	for _, f := range hideColumns {
		if slices.Contains(tbl.State().Visible, f) {
			if _, err := tbl.ToggleColumn(ctx, f); err != nil {
				return fmt.Errorf("--hide: %w", err)
			}
		} else if !tbl.Registry().Has(f) {
			return fmt.Errorf("--hide: %w: %q", grid.ErrUnknownColumn, f)
		}
	}
	for _, f := range showColumns {
		if !slices.Contains(tbl.State().Visible, f) {
			if _, err := tbl.ToggleColumn(ctx, f); err != nil {
				return fmt.Errorf("--show: %w", err)
			}
		}
	}
	for _, m := range moveArgs {
		field, target, err := parseAssignment("--move", m)
		if err != nil {
			return err
		}
		if _, err := tbl.MoveColumn(ctx, field, target); err != nil {
			return fmt.Errorf("--move: %w", err)
		}
	}
	if sortField != "" {
		col, ok := tbl.Registry().Lookup(sortField)
		if !ok {
			return fmt.Errorf("--sort: %w: %q", grid.ErrUnknownColumn, sortField)
		}
		if !col.Sortable {
			return fmt.Errorf("--sort: column %q is not sortable", sortField)
		}
		tbl.ClickHeader(ctx, sortField)
		if sortDesc {
			tbl.ClickHeader(ctx, sortField)
		}
	}
	for _, a := range filterArgs {
		field, text, err := parseAssignment("--filter", a)
		if err != nil {
			return err
		}
		if _, err := tbl.SetFilter(ctx, field, text); err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
	}
	if searchText != "" {
		tbl.SetSearch(ctx, searchText)
	}
	if cmd.Flags().Changed("page-size") {
		if _, err := tbl.SetPageSize(ctx, pageSize); err != nil {
			return fmt.Errorf("--page-size: %w", err)
		}
	}
	if pageNumber > 1 {
		tbl.SetPage(ctx, pageNumber)
	}
	return nil
}

func displayTitle(args []string) string {
	if title != "" {
		return title
	}
	if len(args) > 0 && args[0] != "-" {
		return filepath.Base(args[0])
	}
	return settings.CliBinaryName
}

func renderWidth() int {
	switch {
	case outputWidth > 0:
		return outputWidth
	case appCfg.Output.Width > 0:
		return appCfg.Output.Width
	}
	return formatter.TerminalWidth()
}

func renderStyles(run *settings.Run) formatter.Styles {
	if run.NoColor || !stdoutIsTerminal() {
		return formatter.PlainStyles()
	}
	return formatter.NewStyles(appCfg.Theme)
}

func tuiTheme(t config.Theme) tui.Theme {
	return tui.Theme{
		Header:    t.Header,
		Border:    t.Border,
		RowNumber: t.RowNumber,
		Active:    t.Active,
		Muted:     t.Muted,
		Info:      t.Info,
		Success:   t.Success,
		Warning:   t.Warning,
		Error:     t.Error,
	}
}

func ctxLogger(ctx context.Context) logr.Logger {
	return *logger.FromContext(ctx)
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	f := rootCmd.Flags()
	f.BoolVarP(&interactive, "interactive", "i", false, "open the interactive table")
	f.StringVarP(&output, "output", "o", "table", "output format: table|csv|json|yaml|markdown|html")
	f.StringVar(&inputFormat, "input-format", "", "input format: json|ndjson|yaml|toml|csv (default: from extension, then detected)")
	f.StringVar(&columnsFile, "columns", "", "column definitions file (YAML column list or JSON Schema); default infers columns from the rows")
	f.StringVar(&whereExpr, "where", "", "CEL predicate over 'row' that rows must satisfy, e.g. 'row.age >= 30'")
	f.StringVar(&sortField, "sort", "", "sort by this column")
	f.BoolVar(&sortDesc, "desc", false, "sort descending (with --sort)")
	f.StringArrayVar(&filterArgs, "filter", nil, "column filter as field=text (case-insensitive contains); repeatable")
	f.StringVar(&searchText, "search", "", "search every field of each row (case-insensitive contains)")
	f.IntVar(&pageNumber, "page", 1, "page to show")
	f.IntVar(&pageSize, "page-size", 0, "rows per page")
	f.BoolVar(&noPagination, "no-pagination", false, "show every row on one page")
	f.StringVar(&storageKey, "storage-key", "", "key the column settings are saved under (default: input file name)")
	f.BoolVar(&noCustomize, "no-customize", false, "do not load or save column settings")
	f.StringArrayVar(&hideColumns, "hide", nil, "hide a column; saved with the column settings; repeatable")
	f.StringArrayVar(&showColumns, "show", nil, "show a hidden column; saved with the column settings; repeatable")
	f.StringArrayVar(&moveArgs, "move", nil, "move a column to another's position as field=target; repeatable")
	f.BoolVar(&rowNumbers, "row-numbers", false, "number the rows in table output")
	f.StringVar(&title, "title", "", "title for the interactive table and HTML output")
	f.IntVar(&outputWidth, "width", 0, "output width in columns (default: terminal width)")
	f.IntVar(&outputHeight, "height", 0, "interactive height in rows (default: terminal height)")
	f.IntVar(&limitRecords, "limit", 0, "keep only the first N input rows")
	f.IntVar(&offsetRecords, "offset", 0, "skip the first N input rows")
	f.IntVar(&tailRecords, "tail", 0, "keep only the last N input rows (exclusive with --limit and --offset)")

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "suppress save and reset notices")
	pf.StringVar(&configFile, "config-file", "", "path to a YAML config file (default: $XDG_CONFIG_HOME/gridkit/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error or a number")

	rootCmd.AddCommand(versionCmd, configCmd, columnsCmd, functionsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
