package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/drallgood/abs-cli/internal/api/audiobookshelf"
	"github.com/drallgood/abs-cli/internal/catalog"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/drallgood/abs-cli/internal/reconcile"
	"github.com/drallgood/abs-cli/internal/sources"
	"github.com/drallgood/abs-cli/internal/sources/audible"
	"github.com/drallgood/abs-cli/internal/sources/libation"
	"github.com/drallgood/abs-cli/internal/ui"
)

func progressCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Inspect listening progress and sync finished books",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List listening progress",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "finished", Usage: "Only finished items"},
					&cli.BoolFlag{Name: "in-progress", Usage: "Only items not finished yet"},
				},
				Action: rt.progressList,
			},
			{
				Name:  "sync",
				Usage: "Mark books finished elsewhere as finished (dry-run unless --apply)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from-libation", Usage: "Libation SQLite database `FILE`"},
					&cli.StringFlag{Name: "from-audible-export", Usage: "audible-cli export `FILE` (.json, .tsv or .csv)"},
					&cli.BoolFlag{Name: "from-hardcover", Usage: "Books marked as read on Hardcover"},
					&cli.BoolFlag{Name: "apply", Usage: "Actually write the changes"},
					&cli.BoolFlag{Name: "suggest", Usage: "Suggest the closest server title for unmatched books"},
				},
				Action: rt.progressSync,
			},
		},
	}
}

func (rt *runtime) progressList(c *cli.Context) error {
	onlyFinished, onlyInProgress := c.Bool("finished"), c.Bool("in-progress")
	if onlyFinished && onlyInProgress {
		return usageError("--finished and --in-progress are mutually exclusive")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		progress, err := client.GetMediaProgress(ctx)
		if err != nil {
			return err
		}

		// filter first so an empty result skips the title lookup
		var kept []models.MediaProgress
		for _, p := range progress {
			switch {
			case onlyFinished && !p.Done():
			case onlyInProgress && p.Done():
			default:
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			out.Warn("No items found.")
			return nil
		}

		titles, err := catalog.BuildTitleIndex(ctx, client)
		if err != nil {
			return err
		}

		items := make([]models.ProgressItem, 0, len(kept))
		for _, p := range kept {
			title := titles[p.LibraryItemID]
			if title == "" {
				title = p.LibraryItemID
			}
			items = append(items, models.ProgressItem{MediaProgress: p, Title: title})
		}
		sortProgress(items)

		out.Table(progressTable(items, out.Styles()))
		return nil
	})
}

// progressTable renders items with finished rows highlighted
func progressTable(items []models.ProgressItem, styles ui.Styles) *ui.Table {
	tbl := ui.NewTable("Listening progress", "Title", "Progress", "Position", "Duration", "Last update")
	for _, it := range items {
		tbl.AddRow(
			it.Title,
			ui.Percent(it.Progress),
			ui.Clock(it.CurrentTime),
			ui.Clock(it.Duration),
			ui.Timestamp(it.LastUpdate),
		)
	}
	tbl.StyleRows(progressRowStyle(items, styles))
	return tbl
}

// progressRowStyle styles rows by position, so items sharing a title keep their own state
func progressRowStyle(items []models.ProgressItem, styles ui.Styles) ui.RowStyle {
	return func(index int, _ []string) lipgloss.Style {
		if index >= 0 && index < len(items) && items[index].Done() {
			return styles.SuccessText
		}
		return styles.Text
	}
}

// sortProgress puts unfinished items first, each group newest first
func sortProgress(items []models.ProgressItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsFinished != items[j].IsFinished {
			return !items[i].IsFinished
		}
		return items[i].LastUpdate.After(items[j].LastUpdate)
	})
}

func (rt *runtime) progressSync(c *cli.Context) error {
	libationPath := c.String("from-libation")
	exportPath := c.String("from-audible-export")
	fromHardcover := c.Bool("from-hardcover")
	apply := c.Bool("apply")

	if libationPath == "" && exportPath == "" && !fromHardcover {
		return usageError("at least one source is required: --from-libation, --from-audible-export or --from-hardcover")
	}
	for _, src := range []struct{ flag, path string }{
		{"--from-libation", libationPath},
		{"--from-audible-export", exportPath},
	} {
		if src.path == "" {
			continue
		}
		if _, err := os.Stat(src.path); errors.Is(err, fs.ErrNotExist) {
			return usageError("%s: file %s does not exist", src.flag, src.path)
		}
	}

	out := printer(c)
	ctx := c.Context

	if !apply {
		out.Warn("DRY RUN: no changes will be made. Pass --apply to write them.")
		out.Println()
	}

	var records []sources.FinishedRecord
	if libationPath != "" {
		out.Println("Reading Libation database...")
		found, err := libation.NewReader().Read(ctx, libationPath)
		if err != nil {
			return err
		}
		out.Printf("%d finished books found in Libation.\n", len(found))
		records = append(records, found...)
	}
	if exportPath != "" {
		out.Println("Reading audible-cli export...")
		found, err := audible.ReadFile(ctx, exportPath)
		if err != nil {
			return err
		}
		out.Printf("%d finished books found in the audible-cli export.\n", len(found))
		records = append(records, found...)
	}
	if fromHardcover {
		out.Println("Reading Hardcover...")
		found, err := rt.readHardcover(ctx)
		if err != nil {
			return err
		}
		out.Printf("%d read books found on Hardcover.\n", len(found))
		records = append(records, found...)
	}

	if len(records) == 0 {
		out.Println()
		out.Warn("No finished books found.")
		return nil
	}
	out.Printf("\n%d books total from %d source(s).\n\n", len(records), sources.Count(records))

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out.Println("Loading the Audiobookshelf catalog...")
		index, err := catalog.BuildIndex(ctx, client)
		if err != nil {
			return err
		}
		out.Printf("%d items with ASIN found on the server.\n\n", len(index))

		engine := reconcile.NewEngine(client, reconcile.WithSuggestions(c.Bool("suggest")))
		report, err := engine.Reconcile(ctx, records, index, apply)
		if report != nil && len(report.Results) > 0 {
			out.Table(syncTable(report, out.Styles()))
		}
		if err != nil {
			return err
		}

		t := report.Tallies
		out.Printf("\nResult: %d to sync, %d already finished, %d not found on the server.\n",
			t.ToSync(), t.AlreadyFinished, t.NotFound)
		if !apply && t.WouldSync > 0 {
			out.Info("Run again with --apply to mark %d item(s) as finished.", t.WouldSync)
		}
		return nil
	})
}

func syncTable(report *reconcile.Report, styles ui.Styles) *ui.Table {
	tbl := ui.NewTable("Sync result", "Title", "Source", "ASIN", "ABS Match", "ABS Title", "Action")
	for _, res := range report.Results {
		match, serverTitle, action := "no", ui.Dash, ui.Dash
		if res.Item != nil {
			match, serverTitle, action = "yes", ui.OrDash(res.Item.Title), res.Outcome.String()
		} else if res.Suggestion != "" {
			serverTitle = fmt.Sprintf("did you mean %q?", res.Suggestion)
		}
		tbl.AddRow(res.Record.Title, res.Record.Source, res.Record.CatalogID, match, serverTitle, action)
	}

	tbl.StyleRows(func(_ int, row []string) lipgloss.Style {
		switch row[5] {
		case reconcile.Synced.String():
			return styles.SuccessText
		case reconcile.WouldSync.String():
			return styles.WarningText
		case reconcile.AlreadyFinished.String():
			return styles.MutedText
		}
		if row[3] == "no" {
			return styles.DangerText
		}
		return styles.Text
	})
	return tbl
}
