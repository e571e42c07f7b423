package main

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/minitcraft/minit/internal/config"
	"github.com/minitcraft/minit/internal/errors"
	"github.com/minitcraft/minit/internal/ops"
	"github.com/minitcraft/minit/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "minit",
		Usage:   "Meeting minutes store with carry-forward to the next meeting",
		Version: Version,
		Commands: []*cli.Command{
			newCmd(db, cfg),
			storeCmd(db, cfg),
			fetchCmd(db),
			updateCmd(db, cfg),
			deleteCmd(db),
			listCmd(db),
			latestCmd(db),
			purgeCmd(db),
			nextCmd(db, cfg),
			renderCmd(db, cfg),
			exportCmd(db, cfg),
			attendanceCmd(db, cfg),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addressFlags select a meeting by siri when no id argument is given.
func addressFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "siri", Aliases: []string{"s"}, Usage: "Meeting serial, e.g. 4/2024"},
		&cli.StringFlag{Name: "jenis", Aliases: []string{"j"}, Usage: "Meeting type: agm|exco"},
	}
}

// address returns id, siri and jenis from the positional argument and flags.
func address(c *cli.Context) (id, siri, jenis string) {
	if c.NArg() > 0 {
		id = c.Args().First()
	}
	return id, c.String("siri"), c.String("jenis")
}

// headerFlags edit header fields. Serial and type use the set- prefix so
// they do not clash with the addressing flags.
func headerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Association name"},
		&cli.StringFlag{Name: "tarikh", Usage: "Meeting date"},
		&cli.StringFlag{Name: "masa", Usage: "Meeting time"},
		&cli.StringFlag{Name: "tempat", Usage: "Venue"},
		&cli.StringFlag{Name: "set-siri", Usage: "Serial to set"},
		&cli.StringFlag{Name: "set-jenis", Usage: "Meeting type to set: agm|exco"},
	}
}

// headerPatch collects the header flags that were given.
func headerPatch(c *cli.Context) ops.HeaderPatch {
	get := func(name string) *string {
		if !c.IsSet(name) {
			return nil
		}
		v := c.String(name)
		return &v
	}
	return ops.HeaderPatch{
		Title:  get("title"),
		Siri:   get("set-siri"),
		Tarikh: get("tarikh"),
		Masa:   get("masa"),
		Tempat: get("tempat"),
		Jenis:  get("set-jenis"),
	}
}

// newCmd creates the new command.
func newCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Create a meeting from the default minutes record",
		Flags: headerFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.New(c.Context, db, cfg, ops.NewInput{Header: headerPatch(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// storeCmd creates the store command.
func storeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Store a minutes record as a new meeting (reads JSON from stdin)",
		Action: func(c *cli.Context) error {
			// Require stdin input
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("record must be piped via stdin"))
			}

			data, err := readStdin(cfg.RecordMaxBytes)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Store(c.Context, db, cfg, ops.StoreInput{RecordJSON: data})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a meeting by ID or siri",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted meetings"},
		),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			output, err := ops.Fetch(c.Context, db, ops.FetchInput{
				ID:             id,
				Siri:           siri,
				Jenis:          jenis,
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// updateCmd creates the update command.
func updateCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a meeting (optionally reads a replacement record from stdin)",
		ArgsUsage: "[id]",
		Flags:     append(addressFlags(), headerFlags()...),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			input := ops.UpdateInput{
				ID:     id,
				Siri:   siri,
				Jenis:  jenis,
				Header: headerPatch(c),
			}

			// Read a replacement record from stdin if piped
			if stdinHasData() {
				data, err := readStdin(cfg.RecordMaxBytes)
				if err != nil {
					return outputError(err)
				}
				if len(data) > 0 {
					input.RecordJSON = data
				}
			}

			output, err := ops.Update(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a meeting",
		ArgsUsage: "[id]",
		Flags:     addressFlags(),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			output, err := ops.Delete(c.Context, db, ops.DeleteInput{ID: id, Siri: siri, Jenis: jenis})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List meetings, most recently updated first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "jenis", Aliases: []string{"j"}, Usage: "Filter by type: agm|exco"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted meetings"},
			&cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Jenis:          c.String("jenis"),
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("table") {
				writeListTable(os.Stdout, output)
				return nil
			}
			return outputJSON(output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the most recently updated meeting",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "jenis", Aliases: []string{"j"}, Usage: "Filter by type: agm|exco"},
			&cli.BoolFlag{Name: "include-record", Usage: "Include the minutes record in output"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted meetings"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Latest(c.Context, db, ops.LatestInput{
				Jenis:          c.String("jenis"),
				IncludeRecord:  c.Bool("include-record"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted meetings",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// nextCmd creates the next command.
func nextCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "next",
		Usage:     "Derive the next meeting's draft from previous minutes",
		ArgsUsage: "[id]",
		Description: "The source is a stored meeting (id, --siri or --latest), a file (--path) or\n" +
			"a document piped on stdin (--stdin). Any historical layout is accepted.",
		Flags: append(addressFlags(),
			&cli.BoolFlag{Name: "latest", Usage: "Use the most recently updated meeting (of --jenis, if given)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Previous minutes file (.json, .yaml, .yml)"},
			&cli.BoolFlag{Name: "stdin", Usage: "Read the previous minutes from stdin"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Format of the stdin document: json|yaml"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the draft without storing it"},
		),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			input := ops.NextInput{
				ID:             id,
				Siri:           siri,
				Jenis:          jenis,
				Latest:         c.Bool("latest"),
				Path:           c.String("path"),
				DocumentFormat: c.String("format"),
				DryRun:         c.Bool("dry-run"),
			}

			if c.Bool("stdin") {
				data, err := readStdin(cfg.RecordMaxBytes)
				if err != nil {
					return outputError(err)
				}
				if len(data) == 0 {
					return outputError(errors.NewInvalidRequest("previous minutes must be piped via stdin"))
				}
				input.Document = data
			}

			output, err := ops.Next(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// renderCmd creates the render command.
func renderCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a meeting as a Markdown or HTML minutes document",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Output format: md|html (default from --path, else md)"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.minit/exports/<siri>-<jenis>.<ext>)"},
		),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			output, err := ops.Render(c.Context, db, cfg, ops.RenderInput{
				ID:     id,
				Siri:   siri,
				Jenis:  jenis,
				Format: c.String("format"),
				Path:   c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			if err := outputJSON(output); err != nil {
				return err
			}
			if output.Status != ops.RenderOK {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a meeting's record to a JSON or YAML file",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.minit/exports/<siri>-<jenis>.json)"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted meetings"},
		),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				ID:             id,
				Siri:           siri,
				Jenis:          jenis,
				Path:           c.String("path"),
				IncludeDeleted: c.Bool("include-deleted"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// attendanceCmd creates the attendance command.
func attendanceCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "attendance",
		Usage:     "Add attendees from a CSV (columns: nama, siri, jawatan, singkatan, hadir, sebab)",
		ArgsUsage: "[id]",
		Flags: append(addressFlags(),
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "CSV file path"},
			&cli.BoolFlag{Name: "stdin", Usage: "Read the CSV from stdin"},
			&cli.BoolFlag{Name: "replace", Usage: "Replace both attendance lists instead of appending"},
		),
		Action: func(c *cli.Context) error {
			id, siri, jenis := address(c)
			input := ops.AttendanceImportInput{
				ID:      id,
				Siri:    siri,
				Jenis:   jenis,
				Path:    c.String("path"),
				Replace: c.Bool("replace"),
			}

			if c.Bool("stdin") {
				data, err := readStdin(cfg.RecordMaxBytes)
				if err != nil {
					return outputError(err)
				}
				input.CSV = data
			}

			output, err := ops.ImportAttendance(c.Context, db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the read-only web preview",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8177, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			baseDir, err := config.BaseDir()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			lock, err := web.AcquireLock(baseDir)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = lock.Unlock() }()

			srv, err := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return cli.Exit("[CANCELLED] interrupted", 1)
	}
	var minitErr *errors.MinitError
	if stderrors.As(err, &minitErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", minitErr.Code, minitErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin, failing past maxBytes when it is
// positive.
func readStdin(maxBytes int) ([]byte, error) {
	var r io.Reader = os.Stdin
	if maxBytes > 0 {
		r = io.LimitReader(os.Stdin, int64(maxBytes)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return nil, errors.NewRecordTooLarge(maxBytes, len(data))
	}
	return []byte(strings.TrimSpace(string(data))), nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
