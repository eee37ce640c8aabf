// reportctl prints report counts, listings and a citizen's rewards straight from
// the report backend.
// Usage: reportctl [-backend URL] [-timeout 15s] stats | list [status] | rewards <email>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"spotnsort/apiclient"
	"spotnsort/config"
	"spotnsort/models"
	"spotnsort/service"
	"text/tabwriter"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/joho/godotenv"
)

var errUsage = errors.New("usage: reportctl [-backend URL] [-timeout 15s] stats | list [status] | rewards <email>")

func main() {
	log.SetHandler(cli.New(os.Stderr))
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	backendURL := flag.String("backend", cfg.Backend.BaseURL, "Report backend base URL.")
	timeout := flag.Duration("timeout", cfg.Backend.Timeout, "Timeout for each backend call.")
	flag.Parse()

	client := apiclient.NewClient(*backendURL, *timeout)
	if err := run(context.Background(), client, flag.Args(), os.Stdout); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, backend service.ReportBackend, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "stats":
		return printStats(ctx, backend, out)
	case "list":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		return printList(ctx, backend, models.ReportStatus(status), out)
	case "rewards":
		if len(args) < 2 {
			return errUsage
		}
		return printRewards(ctx, backend, args[1], out)
	}
	return errUsage
}

func printStats(ctx context.Context, backend service.ReportBackend, out io.Writer) error {
	analytics, err := service.NewAnalyticsService(backend).Compute(ctx)
	if err != nil {
		return err
	}
	c := analytics.Counts
	fmt.Fprintf(out, "total=%d pending=%d in_progress=%d resolved=%d\n", c.Total, c.Pending, c.InProgress, c.Resolved)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROBLEM\tREPORTS")
	for _, p := range analytics.Problems {
		fmt.Fprintf(tw, "%s\t%d\n", p.Name, p.Value)
	}
	return tw.Flush()
}

func printList(ctx context.Context, backend service.ReportBackend, status models.ReportStatus, out io.Writer) error {
	reports, err := backend.ListReports(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tPROBLEM\tSUBTYPE\tAREA")
	for _, r := range reports {
		if status != "" && r.Status != status {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Priority, r.Problem, r.Subtype, r.Area)
	}
	return tw.Flush()
}

func printRewards(ctx context.Context, backend service.ReportBackend, email string, out io.Writer) error {
	rewards, err := service.NewReportService(backend, nil).Rewards(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "points=%d reports=%d/%d\n", rewards.Points, rewards.Progress.Completed, rewards.Progress.Target)
	for _, b := range rewards.Badges {
		fmt.Fprintf(out, "badge: %s\n", b.Title)
	}
	for _, o := range rewards.Offers {
		mark := " "
		if o.Redeemable {
			mark = "x"
		}
		fmt.Fprintf(out, "[%s] %s (%d)\n", mark, o.Title, o.Points)
	}
	return nil
}
