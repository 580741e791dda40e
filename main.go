package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pivolan/ecommerce_analyzer/config"
	"github.com/pivolan/ecommerce_analyzer/domain/models"
	"github.com/pivolan/ecommerce_analyzer/history"
	"github.com/pivolan/ecommerce_analyzer/ingest"
	"github.com/pivolan/ecommerce_analyzer/pipeline"
	"github.com/pivolan/ecommerce_analyzer/report"
	"github.com/pivolan/ecommerce_analyzer/schema"
	"github.com/pivolan/ecommerce_analyzer/session"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ecommerce_analyzer",
		Short:        "E-commerce order CSV analyzer",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), inspectCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the web upload form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.csv>",
		Short: "Load one CSV file and print the parse report, verdict and overview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			aliases, err := loadAliases(cfg)
			if err != nil {
				return err
			}
			return inspect(cmd.Context(), cmd.OutOrStdout(), args[0], pipeline.New(logger, aliases))
		},
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl
	return zc.Build()
}

func loadAliases(cfg *config.Config) (schema.Aliases, error) {
	if cfg.AliasesFile == "" {
		return schema.DefaultAliases(), nil
	}
	return schema.LoadAliases(cfg.AliasesFile)
}

func inspect(ctx context.Context, out io.Writer, path string, p *pipeline.Pipeline) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var size int64 = -1
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	bar := progressbar.DefaultBytes(size, "reading "+filepath.Base(path))
	src := ingest.UploadSource{FileName: filepath.Base(path), Reader: io.TeeReader(f, bar)}

	res, err := p.Run(ctx, src)
	_ = bar.Finish()
	fmt.Fprintln(out)
	if err != nil {
		var vf *pipeline.ValidationFailed
		if errors.As(err, &vf) && vf.Report != nil {
			fmt.Fprintln(out, parseSummary(vf.Report))
		}
		fmt.Fprintln(out, pipeline.UserMessage(err))
		return err
	}

	fmt.Fprintln(out, parseSummary(res.Report))
	fmt.Fprintln(out, res.Verdict.Message)
	fmt.Fprintln(out, report.InfoTable(res.Frame, *res.Report))
	fmt.Fprintln(out, report.OverviewTable(res.Metrics))
	return nil
}

func parseSummary(r *models.ParseReport) string {
	s := fmt.Sprintf("encoding %s (attempt %d), delimiter %q, %d rows, %d skipped",
		r.Strategy, r.Attempt, r.Delimiter, r.Rows, r.SkippedRows)
	if r.Permissive {
		s += ", invalid bytes dropped"
	}
	return s
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	aliases, err := loadAliases(cfg)
	if err != nil {
		return err
	}

	var recorder history.Recorder = history.Nop{}
	if cfg.DbDsn != "" {
		gr, err := history.Open(cfg.DbDsn)
		if err != nil {
			return fmt.Errorf("history db: %w", err)
		}
		recorder = gr
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TgToken)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	logger.Info("bot authorized", zap.String("account", bot.Self.UserName))

	p := pipeline.New(logger, aliases)
	app := &App{
		cfg:    cfg,
		bot:    bot,
		logger: logger,
		client: http.DefaultClient,
		sessions: session.NewRegistry(cfg.SessionTTL, func(key string) *session.Store {
			return session.NewStore(key, p, recorder, logger.With(zap.String("session", key)))
		}),
		links: session.NewLinks(cfg.SessionTTL),
		remote: ingest.RemoteSource{
			Resolver:  ingest.CacheResolver{Root: cfg.BundleRoot, Logger: logger},
			DatasetID: cfg.DatasetID,
			Logger:    logger,
		},
	}

	go session.RunSweeper(ctx, time.Minute, func() { app.sweep(time.Now()) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.routes()}
	go func() {
		logger.Info("listen", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		return fmt.Errorf("telegram updates: %w", err)
	}
	app.consume(ctx, updates)
	bot.StopReceivingUpdates()
	return nil
}

// consume dispatches updates until ctx is done or the channel is closed.
func (a *App) consume(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				a.logger.Warn("telegram updates channel closed")
				return
			}
			go a.handleUpdate(ctx, update)
		}
	}
}

// sweep drops idle sessions, expired upload links and upload files older than twice the session ttl.
func (a *App) sweep(now time.Time) {
	for _, key := range a.sessions.Sweep() {
		a.logger.Info("session expired", zap.String("session", key))
	}
	if n := a.links.Sweep(); n > 0 {
		a.logger.Debug("upload links expired", zap.Int("count", n))
	}
	if err := removeOldFiles(a.cfg.UploadDir, now.Add(-2*a.cfg.SessionTTL), a.logger); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("cleanup uploads", zap.Error(err))
	}
}

func removeOldFiles(dirPath string, maxAge time.Time, logger *zap.Logger) error {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return err
	}

	for _, file := range files {
		filePath := filepath.Join(dirPath, file.Name())

		if file.IsDir() {
			if err := removeOldFiles(filePath, maxAge, logger); err != nil {
				return err
			}
			// пустые каталоги токенов тоже удаляем
			if rest, err := os.ReadDir(filePath); err == nil && len(rest) == 0 {
				_ = os.Remove(filePath)
			}
			continue
		}

		fileStat, err := os.Stat(filePath)
		if err != nil {
			return err
		}
		if fileStat.ModTime().Before(maxAge) {
			if err := os.Remove(filePath); err != nil {
				return err
			}
			logger.Debug("removed file", zap.String("path", filePath))
		}
	}

	return nil
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
