package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/drallgood/abs-cli/internal/api/audiobookshelf"
	"github.com/drallgood/abs-cli/internal/models"
	"github.com/drallgood/abs-cli/internal/ui"
)

func libraryCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "List, scan and inspect libraries",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all libraries",
				Action: rt.libraryList,
			},
			{
				Name:      "scan",
				Usage:     "Start a scan of one library, or of all libraries",
				ArgsUsage: "[LIBRARY_ID]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Force a full rescan",
					},
				},
				Action: rt.libraryScan,
			},
			{
				Name:      "stats",
				Usage:     "Show statistics for one library, or for all libraries",
				ArgsUsage: "[LIBRARY_ID]",
				Action:    rt.libraryStats,
			},
		},
	}
}

func (rt *runtime) libraryList(c *cli.Context) error {
	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		libraries, err := client.GetLibraries(ctx)
		if err != nil {
			return err
		}
		if len(libraries) == 0 {
			out.Warn("No libraries found.")
			return nil
		}

		tbl := ui.NewTable("Libraries", "ID", "Name", "Type", "Folders")
		for _, lib := range libraries {
			tbl.AddRow(lib.ID, lib.Name, lib.MediaType, strconv.Itoa(len(lib.Folders)))
		}
		out.Table(tbl)
		return nil
	})
}

// selectLibraries returns the library named by id, or every library when id is empty
func selectLibraries(ctx context.Context, client audiobookshelf.ClientInterface, id string) ([]models.Library, error) {
	if id != "" {
		return []models.Library{{ID: id, Name: id}}, nil
	}
	return client.GetLibraries(ctx)
}

func (rt *runtime) libraryScan(c *cli.Context) error {
	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		libraries, err := selectLibraries(ctx, client, c.Args().First())
		if err != nil {
			return err
		}
		if len(libraries) == 0 {
			out.Warn("No libraries found.")
			return nil
		}

		for _, lib := range libraries {
			if err := client.ScanLibrary(ctx, lib.ID, c.Bool("force")); err != nil {
				return fmt.Errorf("failed to scan library %s: %w", lib.Name, err)
			}
			out.Println("Scan started for library " + lib.Name)
		}
		out.Success("%d library(ies) are being scanned.", len(libraries))
		return nil
	})
}

func (rt *runtime) libraryStats(c *cli.Context) error {
	return rt.withClient(c, func(ctx context.Context, client audiobookshelf.ClientInterface) error {
		out := printer(c)

		libraries, err := selectLibraries(ctx, client, c.Args().First())
		if err != nil {
			return err
		}
		if len(libraries) == 0 {
			out.Warn("No libraries found.")
			return nil
		}

		tbl := ui.NewTable("Library statistics", "Library", "Items", "Size", "Duration", "Authors", "Genres")
		for _, lib := range libraries {
			stats, err := client.GetLibraryStats(ctx, lib.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch stats for library %s: %w", lib.Name, err)
			}
			tbl.AddRow(
				lib.Name,
				ui.Count(stats.TotalItems),
				ui.Size(stats.TotalSize),
				ui.Hours(stats.TotalDuration),
				ui.Count(stats.NumAuthors),
				ui.Count(stats.NumGenres),
			)
		}
		out.Table(tbl)
		return nil
	})
}
