package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"insightwatch/internal/api"
	"insightwatch/internal/feed"
	"insightwatch/internal/insights"
	"insightwatch/internal/normalize"
)

var (
	rangeDays int
	fetchAll  bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Company-wide analytics overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed("/dashboard/overview"); err != nil {
			return err
		}
		vm := insights.New(client, cfg.TopLimit)
		res, err := vm.Load(cmd.Context(), "", insights.LastNDays(rangeDays))
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Analytics for the selected subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed("/dashboard/insights"); err != nil {
			return err
		}
		vm := insights.New(client, cfg.TopLimit)
		res, err := vm.Load(cmd.Context(), sel.Key(), insights.LastNDays(rangeDays))
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Activity log feed for the selected subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed("/dashboard/logs"); err != nil {
			return err
		}
		return runFeed(cmd.Context(), func(ctx context.Context, q feed.Query, page int) (normalize.ListResult, error) {
			raw, err := client.Logs(ctx, api.RecordQuery{From: q.From, To: q.To, Page: page, Limit: q.Limit, User: q.ScopeKey})
			if err != nil {
				return normalize.EmptyList(), err
			}
			return normalize.List(raw), nil
		}, []string{"ts", "category", "operation", "application", "window_title"})
	},
}

var screenshotsCmd = &cobra.Command{
	Use:   "screenshots",
	Short: "Screenshot feed for the selected subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureAllowed("/dashboard/screenshots"); err != nil {
			return err
		}
		return runFeed(cmd.Context(), func(ctx context.Context, q feed.Query, page int) (normalize.ListResult, error) {
			raw, err := client.Screenshots(ctx, api.RecordQuery{From: q.From, To: q.To, Page: page, Limit: q.Limit, User: q.ScopeKey})
			if err != nil {
				return normalize.EmptyList(), err
			}
			return normalize.List(raw), nil
		}, []string{"ts", "application", "label", "file_path"})
	},
}

func runFeed(ctx context.Context, fetch feed.Fetcher, columns []string) error {
	rng := insights.LastNDays(rangeDays)
	f := feed.New(fetch)

	if err := f.Load(ctx, feed.Query{
		From:     rng.From,
		To:       rng.To,
		ScopeKey: sel.Key(),
		Limit:    cfg.FeedLimit,
	}); err != nil {
		return err
	}
	if fetchAll {
		for f.CanLoadMore() {
			if err := f.LoadMore(ctx); err != nil {
				// Keep what loaded so far; the error is reported below the table.
				break
			}
		}
	}

	st := f.State()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, col)
	}
	fmt.Fprintln(w)
	for _, rec := range st.Items {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell(rec[col]))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nLoaded %d/%d (%s)\n", len(st.Items), st.Total, rng)
	if st.Err != "" {
		fmt.Printf("Error: %s\n", st.Err)
	}
	return nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func printResult(res *insights.Result) {
	fmt.Printf("Range: %s", res.Range)
	if res.Scope != "" {
		fmt.Printf("   Subject: %s", res.Scope)
	}
	fmt.Println()

	if len(res.KPIs) > 0 {
		fmt.Println("\nKPIs:")
		keys := make([]string, 0, len(res.KPIs))
		for k := range res.KPIs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-22s %s\n", k, cell(res.KPIs[k]))
		}
	}

	names := make([]string, 0, len(res.Charts))
	for name := range res.Charts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		chart := res.Charts[name]
		fmt.Printf("\n%s:\n", name)
		switch chart.Kind {
		case normalize.KindSeries:
			for i, label := range chart.Labels {
				if i < len(chart.Series) {
					fmt.Printf("  %-12s %s\n", label, cell(chart.Series[i]))
				}
			}
		case normalize.KindItems:
			for _, item := range chart.Items {
				fmt.Printf("  %-22s %s\n", item.Name, cell(item.Count))
			}
		case normalize.KindHourly:
			hours := make([]string, 0, len(chart.Hourly))
			for h := range chart.Hourly {
				hours = append(hours, h)
			}
			sort.Slice(hours, func(i, j int) bool {
				a, _ := strconv.Atoi(hours[i])
				b, _ := strconv.Atoi(hours[j])
				return a < b
			})
			for _, h := range hours {
				fmt.Printf("  %2sh %s\n", h, cell(chart.Hourly[h]))
			}
		}
	}

	if res.Err != "" {
		fmt.Printf("\nPartial data, one or more sources failed: %s\n", res.Err)
	}
}

func init() {
	for _, c := range []*cobra.Command{overviewCmd, insightsCmd, logsCmd, screenshotsCmd} {
		c.Flags().IntVar(&rangeDays, "days", 7, "date range in days ending today")
	}
	logsCmd.Flags().BoolVar(&fetchAll, "all", false, "keep paging until the feed is exhausted")
	screenshotsCmd.Flags().BoolVar(&fetchAll, "all", false, "keep paging until the feed is exhausted")

	rootCmd.AddCommand(overviewCmd, insightsCmd, logsCmd, screenshotsCmd)
}
