package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	booruapi "image_bot/api/booru"
	novelaiapi "image_bot/api/novelai"
	"image_bot/booru"
	"image_bot/databases/sqlite"
	"image_bot/discord_bot"
	"image_bot/discord_bot/handlers"
	"image_bot/queue"
	"image_bot/queue/novelai"
	"image_bot/queue/rule34"
	"image_bot/repositories/default_settings"
	"image_bot/repositories/image_generations"
	"image_bot/repositories/settings"
	"image_bot/repositories/tag_cache"
)

// Bot parameters
var (
	guildID            = flag.String("guild", "", "Guild ID. If not passed - bot registers commands globally")
	botToken           = flag.String("token", "", "Bot access token")
	novelAIToken       = flag.String("novelai", "", "NovelAI API token. /novelai commands are disabled without it")
	ownerID            = flag.String("owner", "", "Discord user ID of the bot owner")
	dbPath             = flag.String("db", sqlite.DefaultPath, "Path to the sqlite database")
	metricsAddr        = flag.String("metrics", "", "Address to serve Prometheus metrics on, e.g. :9090")
	removeCommandsFlag = flag.Bool("remove", false, "Delete all commands when bot exits")
	devModeFlag        = flag.Bool("dev", false, "Start in development mode, using \"dev_\" prefixed commands instead")
	logLevel           = flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	logPretty          = flag.Bool("log-pretty", false, "Human readable console logs instead of JSON")
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	} else {
		log.Printf(".env file loaded successfully")
	}
}

// envFallback fills every flag not set on the command line from the environment.
func envFallback() {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	env := map[string]string{
		"guild":      "GUILD_ID",
		"token":      "BOT_TOKEN",
		"novelai":    "NOVELAI_TOKEN",
		"owner":      "OWNER_ID",
		"db":         "DB_PATH",
		"metrics":    "METRICS_ADDR",
		"remove":     "REMOVE_COMMANDS",
		"dev":        "DEV_MODE",
		"log-level":  "LOG_LEVEL",
		"log-pretty": "LOG_PRETTY",
	}
	for name, key := range env {
		if set[name] {
			continue
		}
		if value := os.Getenv(key); value != "" {
			if err := flag.Set(name, value); err != nil {
				log.Fatal().Err(err).Str("env", key).Msg("Invalid environment value")
			}
		}
	}
}

func setupLogging() {
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if *logPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
	}
}

func main() {
	flag.Parse()
	envFallback()
	setupLogging()

	if *botToken == "" {
		log.Fatal().Msg("Bot token flag is required")
	}
	if *botToken == "YOUR_BOT_TOKEN_HERE" {
		log.Fatal().Msg("Invalid bot token. Did you edit the .env or run the program with -token ?")
	}
	handlers.Token = botToken

	if *devModeFlag {
		log.Printf("Starting in development mode.. all commands prefixed with \"dev_\"")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqliteDB, err := sqlite.New(ctx, *dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create sqlite database")
	}
	defer sqliteDB.Close()

	generationRepo, err := image_generations.NewRepository(&image_generations.Config{DB: sqliteDB})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image generation repository")
	}
	defaultSettingsRepo, err := default_settings.NewRepository(&default_settings.Config{DB: sqliteDB})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create default settings repository")
	}
	settingsRepo, err := settings.NewRepository(&settings.Config{DB: sqliteDB})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create settings repository")
	}
	tagCacheRepo, err := tag_cache.NewRepository(&tag_cache.Config{DB: sqliteDB})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create tag cache repository")
	}

	booruClient := booruapi.New()
	tags := booru.NewTagCache(booruClient, tagCacheRepo)
	if err := tags.Load(ctx); err != nil {
		log.Error().Err(err).Msg("Starting with an empty tag cache")
	}
	search := rule34.New(rule34.Config{
		Picker:  booru.NewPicker(booruClient, booru.NewHistory[string, int64](booru.HistoryConfig{})),
		Tags:    tags,
		OwnerID: *ownerID,
	})

	naiConfig := novelai.Config{
		Generations: generationRepo,
		Settings:    settingsRepo,
		Defaults:    defaultSettingsRepo,
		OwnerID:     *ownerID,
	}
	if *novelAIToken != "" {
		naiConfig.Client = novelaiapi.NewNovelAIClient(*novelAIToken)
	} else {
		log.Warn().Msg("NOVELAI_TOKEN not set, /novelai commands will reply with a setup message")
	}
	if bot, err := settingsRepo.Bot(ctx); err == nil {
		naiConfig.LoadingEmoji = bot.LoadingEmoji
	} else {
		log.Error().Err(err).Msg("Failed to read bot settings")
	}
	naiQueue := novelai.New(naiConfig)

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	bot, err := discord_bot.New(&discord_bot.Config{
		DevelopmentMode: *devModeFlag,
		BotToken:        *botToken,
		GuildID:         *guildID,
		Modules:         []queue.Module{search, naiQueue},
		RemoveCommands:  *removeCommandsFlag,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating Discord bot")
	}

	if err := bot.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Error tearing down bot")
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := naiQueue.Stop(shutdown); err != nil {
		log.Error().Err(err).Msg("Generation queue did not drain before shutdown")
	}

	log.Printf("Gracefully shutting down.")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Serving metrics on %s", addr)
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server stopped")
	}
}
