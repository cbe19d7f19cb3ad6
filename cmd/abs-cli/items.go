package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/urfave/cli/v2"

	"github.com/drallgood/abs-cli/internal/api/audiobookshelf"
	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/drallgood/abs-cli/internal/ui"
	"github.com/drallgood/abs-cli/internal/util"
)

func itemsCommand(rt *runtime) *cli.Command {
	libraryFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "library",
			Aliases: []string{"l"},
			Usage:   "Library `ID`",
		}
	}

	return &cli.Command{
		Name:  "items",
		Usage: "List, inspect, match and delete library items",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the items of a library",
				Flags: []cli.Flag{
					libraryFlag(),
					&cli.BoolFlag{Name: "missing", Usage: "Only items whose files are missing"},
					&cli.BoolFlag{Name: "unmatched", Usage: "Only items without an ASIN"},
					&cli.BoolFlag{Name: "listened", Usage: "Only finished items"},
					&cli.BoolFlag{Name: "not-listened", Usage: "Only unfinished items"},
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Only items whose title fuzzily matches `QUERY`"},
				},
				Action: rt.itemsList,
			},
			{
				Name:      "show",
				Usage:     "Show the details of an item",
				ArgsUsage: "ITEM_ID",
				Action:    rt.itemsShow,
			},
			{
				Name:      "match",
				Usage:     "Match item metadata against a provider",
				ArgsUsage: "[ITEM_ID]",
				Flags: []cli.Flag{
					libraryFlag(),
					&cli.BoolFlag{Name: "all", Usage: "Match every item of --library"},
					&cli.StringFlag{Name: "provider", Value: "audible", Usage: "Metadata provider"},
				},
				Action: rt.itemsMatch,
			},
			{
				Name:      "delete",
				Usage:     "Delete an item (dry-run unless --apply)",
				ArgsUsage: "ITEM_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "apply", Usage: "Actually delete the item"},
					&cli.BoolFlag{Name: "hard", Usage: "Also delete the files from disk"},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
				},
				Action: rt.itemsDelete,
			},
			{
				Name:      "search",
				Usage:     "Search a library",
				ArgsUsage: "QUERY",
				Flags:     []cli.Flag{libraryFlag()},
				Action:    rt.itemsSearch,
			},
		},
	}
}

// itemFilter holds the combinable filters of items list
type itemFilter struct {
	missing     bool
	unmatched   bool
	listened    bool
	notListened bool
	title       string
}

func (f itemFilter) keep(item models.LibraryItem) bool {
	switch {
	case f.missing && !item.IsMissing:
		return false
	case f.unmatched && item.ASIN != "":
		return false
	case f.listened && !item.IsFinished:
		return false
	case f.notListened && item.IsFinished:
		return false
	case f.title != "" && !fuzzy.MatchNormalizedFold(f.title, item.Title):
		return false
	}
	return true
}

func (rt *runtime) itemsList(c *cli.Context) error {
	libraryID := c.String("library")
	if libraryID == "" {
		return usageError("--library is required")
	}
	filter := itemFilter{
		missing:     c.Bool("missing"),
		unmatched:   c.Bool("unmatched"),
		listened:    c.Bool("listened"),
		notListened: c.Bool("not-listened"),
		title:       strings.TrimSpace(c.String("title")),
	}
	if filter.listened && filter.notListened {
		return usageError("--listened and --not-listened are mutually exclusive")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		items, err := client.GetAllLibraryItems(ctx, libraryID)
		if err != nil {
			return err
		}
		progress, err := client.GetMediaProgress(ctx)
		if err != nil {
			return err
		}
		byItem := make(map[string]models.MediaProgress, len(progress))
		for _, p := range progress {
			byItem[p.LibraryItemID] = p
		}

		var kept []models.LibraryItem
		for _, item := range items {
			if p, ok := byItem[item.ID]; ok {
				item.ApplyProgress(p)
			}
			if filter.keep(item) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			out.Warn("No items found.")
			return nil
		}

		tbl := ui.NewTable(fmt.Sprintf("Items (%d)", len(kept)), "ID", "Title", "Author", "Duration", "Status", "ASIN", "Missing")
		for _, item := range kept {
			tbl.AddRow(
				item.ID,
				ui.OrDash(item.Title),
				ui.OrDash(item.Author),
				ui.Duration(item.Duration),
				ui.Status(item.Progress, item.IsFinished),
				ui.YesNo(item.ASIN != ""),
				ui.YesNo(item.IsMissing),
			)
		}
		styles := out.Styles()
		tbl.StyleRows(func(_ int, row []string) lipgloss.Style {
			if row[6] == "yes" {
				return styles.DangerText
			}
			if row[4] == "finished" {
				return styles.SuccessText
			}
			return styles.Text
		})
		out.Table(tbl)
		return nil
	})
}

func (rt *runtime) itemsShow(c *cli.Context) error {
	itemID := c.Args().First()
	if itemID == "" {
		return usageError("ITEM_ID is required")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		detail, err := client.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		printer(c).Panel(detailPanel(detail))
		return nil
	})
}

func detailPanel(d *models.ItemDetail) *ui.Panel {
	p := &ui.Panel{Title: d.DisplayTitle(), Body: d.Description}
	p.Add("Title", d.Title)
	p.Add("Subtitle", d.Subtitle)
	p.Add("Author", d.Author)
	p.Add("Narrator", d.Narrator)
	if d.SeriesName != "" {
		series := d.SeriesName
		if d.SeriesSequence != "" {
			series += " #" + d.SeriesSequence
		}
		p.Add("Series", series)
	}
	p.Add("Duration", ui.Duration(d.Duration))
	p.Add("ASIN", d.ASIN)
	p.Add("ISBN", d.ISBN)
	p.Add("Publisher", d.Publisher)
	p.Add("Year", d.PublishedYear)
	p.Add("Language", d.Language)
	p.Add("Genres", strings.Join(d.Genres, ", "))
	p.Add("Tracks", strconv.Itoa(d.NumTracks))
	p.Add("Size", ui.Size(d.Size))
	p.Add("Missing", ui.YesNo(d.IsMissing))
	return p
}

func (rt *runtime) itemsMatch(c *cli.Context) error {
	itemID := c.Args().First()
	all := c.Bool("all")
	libraryID := c.String("library")
	provider := c.String("provider")

	switch {
	case all && itemID != "":
		return usageError("pass either ITEM_ID or --all, not both")
	case all && libraryID == "":
		return usageError("--all requires --library")
	case !all && itemID == "":
		return usageError("ITEM_ID or --all --library ID is required")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		if !all {
			result, err := client.MatchItem(ctx, itemID, provider)
			if err != nil {
				return err
			}
			if result.Updated {
				out.Success("Item was updated.")
			} else {
				out.Warn("No changes found.")
			}
			return nil
		}

		items, err := client.GetAllLibraryItems(ctx, libraryID)
		if err != nil {
			return err
		}
		out.Printf("Matching %d items with provider %s...\n", len(items), provider)

		log := logger.FromContext(ctx).With(map[string]interface{}{
			"component": "match",
			"provider":  provider,
		})
		limiter := util.NewRateLimiter(util.DefaultRate, util.DefaultBurst, log)

		succeeded, failed := 0, 0
		for _, item := range items {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			result, err := matchWithRetry(ctx, client, limiter, item.ID, provider)
			if err != nil {
				failed++
				out.Error("  %s: error - %v", item.DisplayTitle(), err)
				continue
			}
			succeeded++
			status := "no change"
			if result.Updated {
				status = "updated"
			}
			out.Printf("  %s: %s\n", item.DisplayTitle(), status)
		}

		out.Printf("\nDone: %d succeeded, %d errors\n", succeeded, failed)
		return nil
	})
}

// matchWithRetry matches one item, waiting out a single rate limit response
func matchWithRetry(ctx context.Context, client audiobookshelf.ClientInterface, limiter *util.RateLimiter, itemID, provider string) (*models.MatchResult, error) {
	result, err := client.MatchItem(ctx, itemID, provider)
	var apiErr *audiobookshelf.APIError
	if err == nil || !errors.As(err, &apiErr) || !apiErr.IsRateLimited() {
		return result, err
	}

	if err := util.Sleep(ctx, limiter.OnRateLimit(apiErr.RetryAfter)); err != nil {
		return nil, err
	}
	return client.MatchItem(ctx, itemID, provider)
}

func (rt *runtime) itemsDelete(c *cli.Context) error {
	itemID := c.Args().First()
	if itemID == "" {
		return usageError("ITEM_ID is required")
	}
	apply, hard, yes := c.Bool("apply"), c.Bool("hard"), c.Bool("yes")
	if apply && !yes && !rt.isTTY() {
		return usageError("refusing to delete without confirmation: stdin is not a terminal, pass --yes")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		detail, err := client.GetItem(ctx, itemID)
		if err != nil {
			return err
		}

		panel := &ui.Panel{Title: "Item to delete"}
		panel.Add("Title", detail.Title)
		panel.Add("Author", detail.Author)
		panel.Add("Tracks", strconv.Itoa(detail.NumTracks))
		panel.Add("Size", ui.Size(detail.Size))
		if hard {
			panel.Add("Files", "will be removed from disk")
		}
		out.Panel(panel)

		if !apply {
			out.Warn("Dry run: nothing was deleted. Pass --apply to delete.")
			return nil
		}

		if !yes {
			out.Printf("Really delete %q? [y/N]: ", detail.DisplayTitle())
			if !confirmed(rt.stdin) {
				out.Warn("Aborted.")
				return nil
			}
		}

		if err := client.DeleteItem(ctx, itemID, hard); err != nil {
			return err
		}
		out.Success("Item %q was deleted.", detail.DisplayTitle())
		return nil
	})
}

// confirmed reads one answer line and accepts y or yes
func confirmed(in io.Reader) bool {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (rt *runtime) itemsSearch(c *cli.Context) error {
	query := strings.TrimSpace(c.Args().First())
	libraryID := c.String("library")
	switch {
	case query == "":
		return usageError("QUERY is required")
	case libraryID == "":
		return usageError("--library is required")
	}

	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		results, err := client.Search(ctx, libraryID, query)
		if err != nil {
			return err
		}
		if results.Empty() {
			out.Warn("No results found.")
			return nil
		}

		if len(results.Books) > 0 {
			tbl := ui.NewTable("Books", "ID", "Title", "Author", "Duration")
			for _, b := range results.Books {
				tbl.AddRow(b.ID, ui.OrDash(b.Title), ui.OrDash(b.Author), ui.Duration(b.Duration))
			}
			out.Table(tbl)
		}
		for _, group := range []struct {
			title  string
			header string
			hits   []models.NamedCount
		}{
			{"Authors", "Name", results.Authors},
			{"Series", "Name", results.Series},
			{"Narrators", "Name", results.Narrators},
		} {
			if len(group.hits) == 0 {
				continue
			}
			tbl := ui.NewTable(group.title, group.header, "Books")
			for _, hit := range group.hits {
				tbl.AddRow(hit.Name, strconv.Itoa(hit.NumBooks))
			}
			out.Table(tbl)
		}
		return nil
	})
}
