package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/jhartmann/clubplan/bot"
	"github.com/jhartmann/clubplan/cliparse"
	"github.com/jhartmann/clubplan/db"
	"github.com/jhartmann/clubplan/discord"
)

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Open the SQLite store
	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		slog.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		slog.Error("session creation failed", "error", err)
		os.Exit(1)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildScheduledEvents |
		discordgo.IntentsGuildMessages

	ctx, err := bot.New(cfg, dbConn, discord.NewClient(session))
	if err != nil {
		slog.Error("wiring failed", "error", err)
		os.Exit(1)
	}

	if err := ctx.RegisterJobs(); err != nil {
		slog.Error("job registration failed", "error", err)
		os.Exit(1)
	}

	// Restore reminder jobs that were pending before the last shutdown.
	if err := ctx.Events.RescheduleAll(); err != nil {
		slog.Error("reminder restore failed", "error", err)
		os.Exit(1)
	}

	discord.RegisterHandlers(session, ctx)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		for _, g := range r.Guilds {
			if err := discord.SyncScheduledEvents(s, ctx, g.ID); err != nil {
				slog.Error("event sync failed", "guild_id", g.ID, "error", err)
			}
		}
	})

	ctx.Sched.Start()
	defer ctx.Sched.Stop()

	if err := session.Open(); err != nil {
		slog.Error("gateway connection failed", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	slog.Info("Connected", "db", cfg.DBPath)

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	<-ctrlc

	slog.Info("Shutting down")
}
