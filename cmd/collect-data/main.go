package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/pbnjay/grate/xls"
	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/collect"
	"finbrook/econfeed/internal/config"
	"finbrook/econfeed/internal/series"
	"finbrook/econfeed/internal/store"
)

func getAwsConfig(ctx context.Context, profile string) (aws.Config, error) {
	if profile == "default" {
		return awsconfig.LoadDefaultConfig(ctx)
	}
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithSharedConfigProfile(profile))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// bondTable maps a bond source to its relational table.
func bondTable(source string) string {
	if source == collect.SourceAJBellCorporate {
		return store.TableCorporateBondPrices
	}
	return store.TableGiltPrices
}

type run struct {
	log      logrus.FieldLogger
	db       *store.Postgres
	s3Client *s3.Client
	s3Path   *store.S3Path
	snapshot string
}

func (r *run) storeBonds(ctx context.Context, collected *collect.CollectedBonds) error {
	log := r.log.WithFields(logrus.Fields{
		"source":   collected.Source,
		"records":  len(collected.Records),
		"failures": len(collected.Failures),
	})

	for _, f := range collected.Failures {
		log.WithError(f.Err).Warn("row rejected")
	}

	if r.db != nil {
		stored, err := r.db.UpsertBonds(ctx, bondTable(collected.Source), collected)
		if err != nil {
			return fmt.Errorf("upsert bonds: %w", err)
		}
		log.WithField("stored", stored).Info("bonds upserted")
	}

	if r.snapshot != "" {
		var (
			outPath string
			err     error
		)
		if r.s3Path != nil {
			outPath, err = store.SnapshotToS3(ctx, collected, r.s3Client, r.s3Path)
		} else {
			outPath, err = store.SnapshotToPath(ctx, collected, r.snapshot)
		}
		if err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.WithField("path", outPath).Info("snapshot written")
	}

	return nil
}

func (r *run) storeObservations(ctx context.Context, source string, obs []series.Observation) error {
	log := r.log.WithFields(logrus.Fields{
		"source":       source,
		"observations": len(obs),
	})

	if r.db == nil {
		log.Info("no database configured, observations discarded")
		return nil
	}

	stored, err := r.db.UpsertObservations(ctx, obs)
	if err != nil {
		return fmt.Errorf("upsert observations: %w", err)
	}
	log.WithField("stored", stored).Info("observations upserted")

	return nil
}

// sortedKeys fixes the execution order so logs and upstream request
// ordering are reproducible between runs.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func selected(names []string, name string) bool {
	for _, n := range names {
		if n == "all" || strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

func main() {
	ctx := context.Background()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	sourcesFlag := flag.String("source", "all", "comma separated source names, or all: dmo, dividenddata, ajbell-gilts, ajbell-corporate, fred, bls, bea, ons, boe, ftse, etf-prices, ssga-nav, fx")
	dateFlag := flag.String("date", "", "settlement date for bond sources (YYYY-MM-DD, default today)")
	sinceFlag := flag.String("since", "", "start of the window for series sources (YYYY-MM-DD)")
	snapshotFlag := flag.String("snapshot", "", "snapshot destination, a directory or s3:// URL (overrides ECONFEED_SNAPSHOT_PATH)")
	profile := flag.String("profile", "default", "the AWS profile to use")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	date, err := parseDate(*dateFlag)
	if err != nil {
		log.WithError(err).Fatal("invalid -date")
	}
	if date.IsZero() {
		date = time.Now()
	}

	since, err := parseDate(*sinceFlag)
	if err != nil {
		log.WithError(err).Fatal("invalid -since")
	}

	snapshot := cfg.SnapshotPath
	if *snapshotFlag != "" {
		snapshot = *snapshotFlag
	}

	r := &run{log: log, snapshot: snapshot}

	if cfg.DatabaseURL != "" {
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		r.db = db
	}

	if s3Path, _ := store.ParseS3(snapshot); s3Path != nil {
		awsCfg, err := getAwsConfig(ctx, *profile)
		if err != nil {
			log.WithError(err).Fatal("failed to load AWS config")
		}
		r.s3Client = s3.NewFromConfig(awsCfg)
		r.s3Path = s3Path
	}

	client := collect.NewClient(collect.ClientConfig{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.HTTPTimeout,
		Retries:           cfg.Retries,
		RetryBackoff:      cfg.RetryBackoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, log)

	bondCollectors := map[string]collect.BondCollector{
		"dmo":              collect.NewDMOCollector(client, log),
		"dividenddata":     collect.NewDividendDataCollector(log),
		"ajbell-gilts":     collect.NewAJBellGiltCollector(log),
		"ajbell-corporate": collect.NewAJBellCorporateCollector(log),
	}

	seriesCollectors := map[string]collect.SeriesCollector{
		"fred":       collect.NewFREDCollector(client, cfg.FREDAPIKey, nil, log),
		"bls":        collect.NewBLSCollector(client, cfg.BLSAPIKey, nil, log),
		"bea":        collect.NewBEACollector(client, cfg.BEAAPIKey, log),
		"ons":        collect.NewONSCollector(client, nil, log),
		"boe":        collect.NewBoECollector(client, log),
		"ftse":       collect.NewFTSECollector(client, log),
		"etf-prices": collect.NewETFPricesCollector(client, nil, log),
		"ssga-nav":   collect.NewSSGACollector(client, log),
		"fx":         collect.NewGBPUSDCollector(client, cfg.AlphaVantageAPIKey, log),
	}

	names := strings.Split(*sourcesFlag, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}

	failed := 0

	for _, name := range sortedKeys(bondCollectors) {
		collector := bondCollectors[name]
		if !selected(names, name) {
			continue
		}
		collected, err := collector.Collect(ctx, date)
		if err != nil {
			log.WithError(err).WithField("source", collector.Source()).Error("collection failed")
			failed++
			continue
		}
		if err := r.storeBonds(ctx, collected); err != nil {
			log.WithError(err).WithField("source", collector.Source()).Error("store failed")
			failed++
		}
	}

	for _, name := range sortedKeys(seriesCollectors) {
		collector := seriesCollectors[name]
		if !selected(names, name) {
			continue
		}
		obs, err := collector.Collect(ctx, since)
		if err != nil {
			log.WithError(err).WithField("source", collector.Source()).Error("collection failed")
			failed++
			continue
		}
		if err := r.storeObservations(ctx, collector.Source(), obs); err != nil {
			log.WithError(err).WithField("source", collector.Source()).Error("store failed")
			failed++
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
