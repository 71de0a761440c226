package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"revscrap/internal/adapters/observability"
	"revscrap/internal/adapters/storefront"
	"revscrap/internal/app"
	"revscrap/internal/formatter"
	"revscrap/internal/shared"
	"revscrap/internal/storage/csvdir"
)

// failureNote keeps error text short enough for the summary table.
func failureNote(err error) string {
	return "error: " + runewidth.Truncate(err.Error(), 48, "...")
}

func main() {
	jobsPath := flag.String("jobs", "jobs.yaml", "path to the YAML jobs file")
	outDir := flag.String("out", "", "output directory (overrides EXPORT_DIR)")
	flag.Parse()

	ctx := context.Background()
	godotenv.Load()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).
		With().Str("run", uuid.NewString()).Logger()

	jf, err := shared.LoadJobs(*jobsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("jobs file load failed")
	}

	dir := cfg.ExportDir
	if *outDir != "" {
		dir = *outDir
	}
	store, err := csvdir.New(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("export dir init failed")
	}

	appstore := storefront.NewAppStore(cfg.AppStoreAPIBase, cfg.AppStoreWebBase, cfg.ClientRPS)
	playstore := storefront.NewPlayStore(cfg.PlayStoreBase, cfg.ClientRPS)
	svc, err := app.NewExportService(appstore, playstore, app.FetchOptions{
		Country:        cfg.Country,
		Lang:           cfg.Lang,
		AppStoreLimit:  cfg.AppStoreLimit,
		PlayStoreLimit: cfg.PlayStoreLimit,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}

	log.Info().
		Str("jobs_file", *jobsPath).
		Int("jobs", len(jf.Jobs)).
		Int("workers", cfg.ExportWorkers).
		Str("out", dir).
		Msg("exporter starting")

	sem := semaphore.NewWeighted(int64(cfg.ExportWorkers))
	var wg sync.WaitGroup

	// each goroutine writes only its own slot
	rows := make([][]string, len(jf.Jobs))

	for i, job := range jf.Jobs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(i int, job shared.Job) {
			defer wg.Done()
			defer sem.Release(int64(1))

			res, err := svc.Export(ctx, job.URL, app.ExportParams{
				Country: job.Country,
				Lang:    job.Lang,
				Limit:   job.Limit,
			})
			if err != nil {
				log.Warn().Str("url", job.URL).Err(err).Msg("export failed")
				rows[i] = []string{job.URL, "-", "-", "-", failureNote(err)}
				return
			}

			path, err := store.Save(res.Filename, res.Data)
			if err != nil {
				log.Warn().Str("url", job.URL).Err(err).Msg("save failed")
				rows[i] = []string{job.URL, string(res.Platform), "-", "-", failureNote(err)}
				return
			}

			log.Info().Str("url", job.URL).Str("file", path).Int("rows", res.Rows).Msg("export ok")
			rows[i] = []string{job.URL, string(res.Platform), strconv.Itoa(res.Rows), path, "ok"}
		}(i, job)
	}

	wg.Wait()

	ok := 0
	for _, row := range rows {
		if row[4] == "ok" {
			ok++
		}
	}
	log.Info().Int("ok", ok).Int("failed", len(rows)-ok).Msg("export run completed")

	fmt.Print(formatter.Table([]string{"URL", "PLATFORM", "REVIEWS", "FILE", "STATUS"}, rows))
}
