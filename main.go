package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/restaurant-voice-agent/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
	llmx "github.com/tanpawarit/restaurant-voice-agent/agent/llm"
	metricsx "github.com/tanpawarit/restaurant-voice-agent/agent/metrics"
	notifyx "github.com/tanpawarit/restaurant-voice-agent/agent/notify"
	transcribex "github.com/tanpawarit/restaurant-voice-agent/agent/transcribe"
	configx "github.com/tanpawarit/restaurant-voice-agent/pkg/config"
	_ "github.com/tanpawarit/restaurant-voice-agent/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/restaurant-voice-agent/pkg/qstash"
)

type AppConfig struct {
	Menu             string        `envconfig:"MENU" default:"Phở: 35k, Bún bò Huế: 40k, Bánh mì: 25k, Cơm tấm: 35k, Gỏi cuốn: 30k, Cà phê sữa đá: 20k"`
	InventoryBackend string        `envconfig:"INVENTORY_BACKEND" default:"file"`
	InventoryPath    string        `envconfig:"INVENTORY_PATH" default:"inventory.json"`
	HistoryMaxItems  int           `envconfig:"HISTORY_MAX_ITEMS" default:"40"`
	MaxCarryItems    int           `envconfig:"MAX_CARRY_ITEMS" default:"6"`
	MaxToolSteps     int           `envconfig:"MAX_TOOL_STEPS" default:"5"`
	NotifySink       string        `envconfig:"NOTIFY_SINK" default:"none"`
	NotifyTimeout    time.Duration `envconfig:"NOTIFY_TIMEOUT" default:"10s"`
	MetricsAddr      string        `envconfig:"METRICS_ADDR" default:":9090"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metricsx.NewRecorder(reg)
	metricsSrv := serveMetrics(appCfg.MetricsAddr, reg)

	repo, closeRepo := openRepository(ctx, appCfg)
	defer closeRepo()
	store := inventoryx.Open(ctx, repo, inventoryx.WithRecorder(rec))
	if !store.Available() {
		log.Warn().Str("backend", appCfg.InventoryBackend).Msg("inventory is empty, every order will be refused")
	}

	sinkName, sink, closeSink := openNotifier(appCfg)
	defer closeSink()
	dispatcher := notifyx.NewDispatcher(sinkName, sink, appCfg.NotifyTimeout, rec)

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	models, err := llmx.NewModels(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build chat models")
	}

	whisperCfg := configx.MustNew[transcribex.Config]("WHISPER")
	transcriber := transcribex.NewFailover()
	if o := transcribex.NewOpenAI(*whisperCfg); o != nil {
		transcriber = transcribex.NewFailover(o)
	}

	call, err := orchestratorx.New(store, models, dispatcher, orchestratorx.Config{
		Menu:            appCfg.Menu,
		MaxCarry:        appCfg.MaxCarryItems,
		HistoryMaxItems: appCfg.HistoryMaxItems,
		MaxToolSteps:    appCfg.MaxToolSteps,
	}, orchestratorx.WithRecorder(rec))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up call")
	}

	if err := runConsole(ctx, call, transcriber); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("console session failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := call.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close call")
	}
	dispatcher.Wait()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

// runConsole drives one call from stdin. A line starting with @ names an
// audio file to transcribe; anything else is taken as the caller's words.
func runConsole(ctx context.Context, call *orchestratorx.Call, transcriber contractx.Transcriber) error {
	greeting, err := call.Start(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("agent> %s\n", greeting)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("you> ")
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}

		utt, err := readUtterance(ctx, line, transcriber)
		if err != nil {
			log.Error().Err(err).Msg("failed to read utterance")
			continue
		}
		reply, err := call.HandleUtterance(ctx, utt)
		if err != nil {
			log.Error().Err(err).Str("call_id", call.ID()).Msg("turn failed")
			continue
		}
		fmt.Printf("agent[%s]> %s\n", call.ActiveRole(), reply)
	}
}

func readUtterance(ctx context.Context, line string, transcriber contractx.Transcriber) (contractx.Utterance, error) {
	path, isAudio := strings.CutPrefix(line, "@")
	if !isAudio {
		return contractx.Utterance{Text: line}, nil
	}
	f, err := os.Open(strings.TrimSpace(path))
	if err != nil {
		return contractx.Utterance{}, err
	}
	defer f.Close()

	utt, err := transcriber.Transcribe(ctx, f)
	if err != nil {
		return contractx.Utterance{}, err
	}
	fmt.Printf("heard[%s]> %s\n", utt.Language, utt.Text)
	return utt, nil
}

func openRepository(ctx context.Context, cfg *AppConfig) (inventoryx.Repository, func()) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.InventoryBackend)) {
	case "redis", "upstash":
		upstashCfg := configx.MustNew[inventoryx.UpstashConfig]("UPSTASH")
		repo, err := inventoryx.NewUpstashRepository(*upstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure upstash inventory")
		}
		return repo, noop
	case "postgres":
		pgCfg := configx.MustNew[inventoryx.PostgresConfig]("POSTGRES")
		repo, err := inventoryx.NewPostgresRepository(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure postgres inventory")
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Error().Err(err).Msg("failed to ensure inventory schema")
		}
		return repo, func() { _ = repo.Close() }
	default:
		repo, err := inventoryx.NewFileRepository(cfg.InventoryPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure file inventory")
		}
		return repo, noop
	}
}

func openNotifier(cfg *AppConfig) (string, contractx.Notifier, func()) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.NotifySink)) {
	case "qstash":
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		return "qstash", notifyx.NewQStash(qstashx.MustNew(*qstashCfg)), noop
	case "amqp", "rabbitmq":
		amqpCfg := configx.MustNew[notifyx.AMQPConfig]("AMQP")
		sink, err := notifyx.NewAMQP(*amqpCfg)
		if err != nil {
			log.Error().Err(err).Msg("amqp sink unavailable, notifications will be dropped")
			return "none", nil, noop
		}
		return "amqp", sink, func() { _ = sink.Close() }
	default:
		return "none", nil, noop
	}
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
