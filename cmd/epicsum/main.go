package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"epicsum/internal/output"
	"epicsum/internal/progress"
	"epicsum/internal/render"
	"epicsum/pkg/analyzer/epic"
	"epicsum/pkg/config"
	"epicsum/pkg/ingest"
	"epicsum/pkg/models"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "epicsum",
		Usage:   "Aggregate test automation results by JIRA Epic",
		Version: version,
		Description: `Epicsum ingests a CSV export of test results tagged with an
Epic/Feature/Story hierarchy, aggregates outcomes per Epic, classifies each
Epic's health from its pass rate, and writes a rendered table image plus an
xlsx workbook for dashboard consumption.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"EPICSUM_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write terminal output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Commands: []*cli.Command{
			reportCmd(),
			summaryCmd(),
			validateCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func schemaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "include-unknown",
			Usage: "Track the UNKNOWN outcome column (older export generations)",
		},
		&cli.BoolFlag{
			Name:  "no-fallback",
			Usage: "Collapse story-only records into the untagged group",
		},
	}
}

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Aliases:   []string{"run"},
		Usage:     "Generate the table image and xlsx workbook from a CSV export",
		ArgsUsage: "<results.csv>",
		Flags: append(schemaFlags(),
			&cli.StringFlag{
				Name:  "image",
				Usage: "Table image path (default: date-stamped name)",
			},
			&cli.StringFlag{
				Name:  "excel",
				Usage: "Workbook path (default: date-stamped name)",
			},
			&cli.StringFlag{
				Name:  "publish",
				Usage: "Fixed-name workbook copy for the dashboard to poll",
			},
			&cli.BoolFlag{
				Name:  "no-image",
				Usage: "Skip the table image artifact",
			},
			&cli.BoolFlag{
				Name:  "no-excel",
				Usage: "Skip the workbook artifact",
			},
		),
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	table, err := loadAndAggregate(c, cfg)
	if err != nil {
		return err
	}

	display, err := render.BuildDisplay(table)
	if err != nil {
		return err
	}

	now := time.Now()
	if !c.Bool("no-image") {
		imagePath := firstNonEmpty(c.String("image"), cfg.Artifacts.Image, render.DefaultImagePath(now))
		if err := render.WriteImage(display, imagePath); err != nil {
			return err
		}
		color.Green("Table image written to %s", imagePath)
	}

	if !c.Bool("no-excel") {
		excelPath := firstNonEmpty(c.String("excel"), cfg.Artifacts.Excel, render.DefaultExcelPath(now))
		publishPath := firstNonEmpty(c.String("publish"), cfg.Artifacts.Publish, "")
		if err := render.WriteExcel(display, excelPath, publishPath, cfg.Artifacts.Sheet); err != nil {
			return err
		}
		color.Green("Workbook written to %s", excelPath)
		if publishPath != "" {
			color.Green("Workbook published to %s", publishPath)
		}
	}

	return nil
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Aliases:   []string{"sum"},
		Usage:     "Print the aggregated Epic summary to the terminal",
		ArgsUsage: "<results.csv>",
		Flags:     schemaFlags(),
		Action:    runSummaryCmd,
	}
}

func runSummaryCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	table, err := loadAndAggregate(c, cfg)
	if err != nil {
		return err
	}

	display, err := render.BuildDisplay(table)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	// The last display row is the TOTAL line; it becomes the footer.
	dataRows := display.Rows[:len(display.Rows)-1]
	rows := make([][]string, len(dataRows))
	statusCol := len(display.Labels) - 1
	for i, row := range dataRows {
		rows[i] = row
		if formatter.Format() == output.FormatText {
			colored := make([]string, len(row))
			copy(colored, row)
			colored[statusCol] = output.StatusColor(table.Rows[i].Status, row[statusCol])
			rows[i] = colored
		}
	}

	return formatter.Output(&output.Table{
		Title:   "Epic Summary",
		Headers: display.Labels,
		Rows:    rows,
		Footer:  display.Rows[len(display.Rows)-1],
		Data:    table,
	})
}

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check that a CSV export has the required columns and clean rows",
		ArgsUsage: "<results.csv>",
		Flags:     schemaFlags(),
		Action:    runValidateCmd,
	}
}

func runValidateCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	records, err := loadRecords(c, cfg)
	if err != nil {
		return err
	}

	color.Green("%s: %d records, header OK", c.Args().First(), len(records))
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// includeUnknown resolves the schema toggle from flag and config.
func includeUnknown(c *cli.Context, cfg *config.Config) bool {
	return c.Bool("include-unknown") || cfg.Schema.IncludeUnknown
}

func loadRecords(c *cli.Context, cfg *config.Config) ([]models.TestRecord, error) {
	path := c.Args().First()
	if path == "" {
		return nil, fmt.Errorf("input CSV path required")
	}

	loader := ingest.New(
		ingest.WithColumns(ingestColumns(cfg.Columns)),
		ingest.WithUnknown(includeUnknown(c, cfg)),
	)

	spinner := progress.NewSpinner("Reading export...")
	records, err := loader.Load(path)
	if err != nil {
		spinner.FinishError(err)
		return nil, err
	}
	spinner.FinishSuccess()

	if c.Bool("verbose") {
		fmt.Fprintf(os.Stderr, "Loaded %d records from %s\n", len(records), path)
	}
	return records, nil
}

func loadAndAggregate(c *cli.Context, cfg *config.Config) (*models.Table, error) {
	records, err := loadRecords(c, cfg)
	if err != nil {
		return nil, err
	}

	fallback := cfg.Schema.GroupingFallback && !c.Bool("no-fallback")
	analyzer := epic.New(
		epic.WithUnknown(includeUnknown(c, cfg)),
		epic.WithGroupingFallback(fallback),
	)
	return analyzer.Analyze(records), nil
}

func ingestColumns(c config.ColumnsConfig) ingest.Columns {
	return ingest.Columns{
		Epic:    c.Epic,
		Feature: c.Feature,
		Story:   c.Story,
		Passed:  c.Passed,
		Failed:  c.Failed,
		Broken:  c.Broken,
		Skipped: c.Skipped,
		Unknown: c.Unknown,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
