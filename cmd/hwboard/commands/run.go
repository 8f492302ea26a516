package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"hwboard-backend/lib/jsonstore"
	"hwboard-backend/lib/runstore"
	"hwboard-backend/lib/runstore/db"
	"hwboard-backend/lib/scrapers/classroom"
	"hwboard-backend/lib/scrapers/jupiter"
	"hwboard-backend/lib/telemetry"
	"hwboard-backend/lib/timezone"
	"hwboard-backend/services/consolidation"
	"hwboard-backend/services/digest"

	"github.com/mazen160/go-random"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extracts assignments from every configured source and rebuilds the dashboard payload.",
	Run: func(cmd *cobra.Command, args []string) {
		err := runOnce(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}

func runOnce(ctx context.Context) error {
	config, err := readConfig()
	if err != nil {
		return fmt.Errorf("read %s: %w", configName, err)
	}

	telemetry.InstrumentPerfStats(ctx)

	runId, err := random.String(8)
	if err != nil {
		runId = "unknown"
	}
	slog.Info("starting run", "run_id", runId)

	diag, closeLog := newRunDiagnostics(config.LogFile, runId)
	defer closeLog()

	sources := buildSources(config, diag)
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured in %s", configName)
	}

	service := consolidation.NewService(consolidation.Options{
		ColorsFile: config.ColorsFile,
	})
	payload := service.Consolidate(ctx, diag, sources)

	// everything past extraction degrades to a diagnostic, the run
	// still exits zero with whatever it managed to produce
	if config.OutputFile != "" {
		err = jsonstore.Save(config.OutputFile, payload)
		if err != nil {
			diag.Errorf("failed to write payload: %v", err)
		} else {
			diag.Infof("payload written: %s", config.OutputFile)
		}
	}
	if config.HtmlFile != "" {
		err = consolidation.EmbedPayload(config.HtmlFile, payload)
		if err != nil {
			diag.Errorf("failed to embed payload in %s: %v", config.HtmlFile, err)
		} else {
			diag.Infof("payload embedded: %s", config.HtmlFile)
		}
	}
	if config.HistoryDb != "" {
		err = recordRun(ctx, config.HistoryDb, payload)
		if err != nil {
			diag.Errorf("failed to record run history: %v", err)
		}
	}
	if config.Digest != nil {
		digestService := digest.NewService(digest.Options{
			Smtp: digest.SmtpConfig{
				Server:       config.Digest.Server,
				Port:         config.Digest.Port,
				EmailAddress: config.Digest.EmailAddress,
				Password:     config.Digest.Password,
			},
			To: config.Digest.To,
		})
		err = digestService.Send(ctx, payload)
		if err != nil {
			diag.Errorf("failed to send digest email: %v", err)
		}
	}

	slog.Info(
		"run complete",
		"run_id", runId,
		"assigned", len(payload.Assigned),
		"missing", len(payload.Missing),
		"errors", len(payload.Errors),
	)
	return nil
}

// newRunDiagnostics builds the run's diagnostics, appending to the log
// file at logPath when one is configured. The run id leads the log so
// the lines of successive runs in the shared file stay attributable.
func newRunDiagnostics(logPath string, runId string) (*consolidation.Diagnostics, func()) {
	diag := consolidation.NewDiagnostics()
	closeLog := func() {}

	if logPath != "" {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Warn("could not open run log file", "path", logPath, "err", err)
		} else {
			diag = consolidation.NewDiagnosticsWithLog(logFile)
			closeLog = func() { logFile.Close() }
		}
	}

	diag.Infof("run %s starting", runId)
	return diag, closeLog
}

func buildSources(config Config, diag *consolidation.Diagnostics) []consolidation.Source {
	var sources []consolidation.Source

	if config.Classroom != nil {
		for _, account := range config.Classroom.Accounts {
			source, err := classroom.NewSource(classroom.Options{
				BaseUrl:      config.Classroom.BaseUrl,
				Account:      account.Name,
				CookiesFile:  account.CookiesFile,
				HttpDebugDir: config.HttpDebugDir,
			}, diag)
			if err != nil {
				diag.Errorf("error extracting %s assignments: %v", account.Name, err)
				continue
			}
			sources = append(sources, source)
		}
	}

	if config.Jupiter != nil {
		source, err := jupiter.NewSource(jupiter.Options{
			BaseUrl:      config.Jupiter.BaseUrl,
			Student:      config.Jupiter.Student,
			Password:     config.Jupiter.Password,
			Classes:      config.Jupiter.Classes,
			HttpDebugDir: config.HttpDebugDir,
		}, diag)
		if err != nil {
			diag.Errorf("error extracting jupiter assignments: %v", err)
		} else {
			sources = append(sources, source)
		}
	}

	return sources
}

func recordRun(ctx context.Context, path string, payload consolidation.Payload) error {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer database.Close()

	_, err = database.ExecContext(ctx, db.Schema)
	if err != nil {
		return err
	}

	store := runstore.NewStore(database)
	return store.Push(ctx, runstore.Run{
		Time:       timezone.Now(),
		ErrorCount: int64(len(payload.Errors)),
		Sources:    sourceCounts(payload),
	})
}

func sourceCounts(payload consolidation.Payload) []runstore.SourceCounts {
	counts := make(map[string]*runstore.SourceCounts)
	tally := func(records []consolidation.Assignment, missing bool) {
		for _, record := range records {
			entry, ok := counts[record.Account]
			if !ok {
				entry = &runstore.SourceCounts{Source: record.Account}
				counts[record.Account] = entry
			}
			if missing {
				entry.Missing++
			} else {
				entry.Assigned++
			}
		}
	}
	tally(payload.Assigned, false)
	tally(payload.Missing, true)

	var out []runstore.SourceCounts
	for _, entry := range counts {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Source < out[j].Source
	})
	return out
}
