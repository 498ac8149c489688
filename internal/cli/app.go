package cli

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/tierscope/internal/llm"
	"github.com/ppiankov/tierscope/internal/logging"
	"github.com/ppiankov/tierscope/internal/model"
	"github.com/ppiankov/tierscope/internal/pipeline"
	"github.com/ppiankov/tierscope/internal/scrape"
	"github.com/ppiankov/tierscope/internal/sites"
)

// app holds the wiring shared by commands
type app struct {
	cfg      *model.Config
	log      *zap.Logger
	store    sites.Store
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

// newApp loads config, logging and the site store. withLLM also builds the
// provider and the pipeline.
func newApp(cmd *cobra.Command, withLLM bool) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := sites.Open(cfg.Sites, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		renderer: pipeline.NewRenderer(cmd.OutOrStdout(), cfg.Output.IncludeFooter, cfg.Output.Color && !color.NoColor),
	}

	if withLLM {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg))
		if err != nil {
			return nil, eris.Wrap(err, "configure LLM provider")
		}
		log.Debug("llm provider ready", zap.String("provider", provider.Name()), zap.String("model", cfg.LLM.Model))

		registry := scrape.NewDefaultRegistry(cfg, log)
		a.pipeline = pipeline.New(cfg, store, registry, provider, log)
	}
	return a, nil
}

// close flushes the logger and releases the store
func (a *app) close() {
	if closer, ok := a.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	_ = a.log.Sync()
}

// resolveSite accepts a stored site name or an absolute URL
func (a *app) resolveSite(ctx context.Context, arg string) (model.Site, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		parsed, err := url.Parse(arg)
		if err != nil {
			return model.Site{}, eris.Wrapf(err, "parse URL %q", arg)
		}
		return model.Site{Name: parsed.Host, URL: arg}, nil
	}
	return a.store.Find(ctx, arg)
}

// signalContext is cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
