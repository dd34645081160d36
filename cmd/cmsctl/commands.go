package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/myproject/website/internal/app"
	"github.com/myproject/website/internal/seeder"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		})
	},
}

var seedOpts struct {
	url      string
	maxDepth int
	maxPages int
	delay    time.Duration
	dryRun   bool
	reindex  bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import pages by crawling an existing site",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := seedOpts.url
		if start == "" {
			start = cfg.Seeder.StartURL
		}
		if start == "" {
			return errors.New("a start url is required (--url or SEEDER_STARTURL)")
		}

		flags := cmd.Flags()
		crawlCfg := seeder.Config{
			StartURL: start,
			MaxDepth: cfg.Seeder.MaxDepth,
			MaxPages: cfg.Seeder.MaxPages,
			Delay:    cfg.Seeder.Delay,
			DryRun:   seedOpts.dryRun,
		}
		if flags.Changed("max-depth") {
			crawlCfg.MaxDepth = seedOpts.maxDepth
		}
		if flags.Changed("max-pages") {
			crawlCfg.MaxPages = seedOpts.maxPages
		}
		if flags.Changed("delay") {
			crawlCfg.Delay = seedOpts.delay
		}

		return withApp(func(a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}

			res, err := seeder.NewCrawler(crawlCfg, a.Repos.Page, logger).Crawl(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested %d, parsed %d, imported %d, failed %d\n",
				res.Requested, res.Parsed, res.Imported, res.Failed)

			if seedOpts.reindex && !seedOpts.dryRun {
				n, err := a.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d pages\n", n)
			}
			return nil
		})
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the page store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			n, err := a.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d pages with the %s backend\n", n, a.Engine.Name)
			return nil
		})
	},
}

var searchOpts struct {
	page   string
	asJSON bool
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Run a search the way the search page does",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			res, err := a.SearchService().Search(cmd.Context(), args[0], searchOpts.page)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if searchOpts.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			if res.Results.TotalCount == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, doc := range res.Results.Items {
				fmt.Fprintf(w, "%d\t%s\t%s\n", doc.ID, doc.Title, doc.URL)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Page %d of %d (%d results)\n", res.Results.Number, res.Results.TotalPages, res.Results.TotalCount)
			return nil
		})
	},
}

var popularOpts struct {
	limit int
	today bool
	reset bool
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most frequent search queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if a.Cache == nil {
				return errors.New("redis is not configured")
			}
			if popularOpts.reset {
				if err := a.Cache.ClearQueryHits(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Query hits cleared")
				return nil
			}

			top := a.Cache.TopQueries
			if popularOpts.today {
				top = a.Cache.TopQueriesToday
			}
			queries, err := top(cmd.Context(), popularOpts.limit)
			if err != nil {
				return err
			}
			if len(queries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No queries recorded")
			}
			for _, q := range queries {
				fmt.Fprintf(cmd.OutOrStdout(), "%6d  %s\n", q.Hits, q.QueryText)
			}
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.url, "url", "", "start url of the site to import")
	seedCmd.Flags().IntVar(&seedOpts.maxDepth, "max-depth", 0, "maximum link depth (0 = unlimited)")
	seedCmd.Flags().IntVar(&seedOpts.maxPages, "max-pages", 0, "maximum pages to request (0 = unlimited)")
	seedCmd.Flags().DurationVar(&seedOpts.delay, "delay", 0, "delay between requests")
	seedCmd.Flags().BoolVar(&seedOpts.dryRun, "dry-run", false, "parse pages without storing them")
	seedCmd.Flags().BoolVar(&seedOpts.reindex, "reindex", true, "rebuild the search index after importing")

	searchCmd.Flags().StringVar(&searchOpts.page, "page", "", "result page")
	searchCmd.Flags().BoolVar(&searchOpts.asJSON, "json", false, "print the result as JSON")

	popularCmd.Flags().IntVar(&popularOpts.limit, "limit", 10, "number of queries")
	popularCmd.Flags().BoolVar(&popularOpts.today, "today", false, "only count queries made today (UTC)")
	popularCmd.Flags().BoolVar(&popularOpts.reset, "reset", false, "remove all recorded query hits")
}
