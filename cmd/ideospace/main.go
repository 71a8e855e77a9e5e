// Command ideospace manages parties and voters positioned in ideology space
// and reports party popularity. Storage, snapshot archive and logging are
// configured through IDEOSPACE_* environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"ideospace/internal/archive"
	"ideospace/internal/core"
	"ideospace/internal/platform/config"
	"ideospace/internal/platform/logger"
	"ideospace/pkg/domain"
)

var (
	exitFunc   = os.Exit
	loadConfig = config.Load
)

const usage = `usage: ideospace [-metrics] <command> [args]

commands:
  ideologies                 list reference ideologies
  parties                    list parties with popularity
  voters                     list voters with their cached links
  closest X Y                nearest ideology and party to a point
  add-party NAME X Y         create a party
  add-voter NAME X Y         create a voter
  move-party ID NAME X Y     update a party
  move-voter ID NAME X Y     update a voter
  remove-party ID            delete a party
  remove-voter ID            delete a voter
  export                     write a snapshot to the configured archive
`

func main() {
	exitFunc(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ideospace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { _, _ = io.WriteString(stderr, usage) }
	showMetrics := fs.Bool("metrics", false, "print collected metrics after the command")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	metrics := core.NewPrometheusRecorder(reg)

	gw, err := core.OpenGateway(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("open storage", "error", err)
		return 1
	}
	svc, err := core.NewService(ctx, gw, core.WithLogger(log), core.WithMetrics(metrics), core.WithSeedDefaults(cfg.SeedDefaults))
	if svc == nil {
		_ = gw.Close()
		log.Error("start service", "error", err)
		return 1
	}
	defer func() { _ = svc.Close() }()
	if err != nil {
		log.Warn("seeding incomplete", "error", err)
	}

	var exporter *archive.Exporter
	st, err := archive.Open(ctx, cfg.Archive)
	switch {
	case errors.Is(err, archive.ErrDisabled):
	case err != nil:
		log.Error("open archive", "error", err)
		return 1
	default:
		exporter, err = archive.NewExporter(ctx, st, svc, archive.WithLogger(log), archive.WithMetrics(metrics))
		if err != nil {
			log.Error("start exporter", "error", err)
			return 1
		}
		defer exporter.Close()
	}

	code := dispatch(ctx, svc, exporter, fs.Args(), stdout, stderr)
	if *showMetrics {
		if err := writeMetrics(stdout, reg); err != nil {
			log.Warn("write metrics", "error", err)
		}
	}
	return code
}

func dispatch(ctx context.Context, svc *core.Service, exporter *archive.Exporter, args []string, stdout, stderr io.Writer) int {
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "ideologies":
		err = printIdeologies(stdout, svc.ListIdeologies())
	case "parties":
		err = printParties(stdout, svc.PopularityReport())
	case "voters":
		err = printVoters(stdout, svc.ListVoters())
	case "closest":
		var xy []int
		if xy, err = ints(rest, 2); err == nil {
			_, err = fmt.Fprintf(stdout, "ideology\t%d\nparty\t%d\n", svc.FindClosestIdeologyID(xy[0], xy[1]), svc.FindClosestPartyID(xy[0], xy[1]))
		}
	case "add-party", "add-voter":
		if len(rest) != 3 {
			err = fmt.Errorf("%s expects NAME X Y", cmd)
			break
		}
		var xy []int
		if xy, err = ints(rest[1:], 2); err != nil {
			break
		}
		create := svc.CreateParty
		if cmd == "add-voter" {
			create = svc.CreateVoter
		}
		var id int
		if id, err = create(ctx, rest[0], xy[0], xy[1]); err == nil {
			_, err = fmt.Fprintln(stdout, id)
		}
	case "move-party", "move-voter":
		if len(rest) != 4 {
			err = fmt.Errorf("%s expects ID NAME X Y", cmd)
			break
		}
		var nums []int
		if nums, err = ints([]string{rest[0], rest[2], rest[3]}, 3); err != nil {
			break
		}
		update := svc.UpdateParty
		if cmd == "move-voter" {
			update = svc.UpdateVoter
		}
		err = update(ctx, nums[0], rest[1], nums[1], nums[2])
	case "remove-party", "remove-voter":
		var id []int
		if id, err = ints(rest, 1); err != nil {
			break
		}
		if cmd == "remove-party" {
			err = svc.DeleteParty(ctx, id[0])
		} else {
			err = svc.DeleteVoter(ctx, id[0])
		}
	case "export":
		if exporter == nil {
			err = errors.New("archive disabled; set IDEOSPACE_ARCHIVE_DRIVER")
			break
		}
		var key string
		if key, err = exporter.Export(ctx); err == nil {
			_, err = fmt.Fprintln(stdout, key)
		}
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n%s", cmd, usage)
		return 2
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

func ints(args []string, n int) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d integer arguments, got %d", n, len(args))
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func printIdeologies(w io.Writer, list []domain.Ideology) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tX\tY")
	for _, i := range list {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", i.ID, i.Name, i.X, i.Y)
	}
	return tw.Flush()
}

func printParties(w io.Writer, report []core.PartyPopularity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tIDEOLOGY\tX\tY\tVOTERS\tPOPULARITY")
	for _, p := range report {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%.2f%%\n", p.Party.ID, p.Party.Name, p.Party.IdeologyName, p.Party.X, p.Party.Y, p.Voters, p.Popularity)
	}
	return tw.Flush()
}

func printVoters(w io.Writer, list []domain.Voter) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tIDEOLOGY\tPARTY\tX\tY")
	for _, v := range list {
		party := v.PartyName
		if !v.HasParty() {
			party = "-"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", v.ID, v.Name, v.IdeologyName, party, v.X, v.Y)
	}
	return tw.Flush()
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
