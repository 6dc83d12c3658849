package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/stampcard/internal/application"
	"github.com/example/stampcard/internal/attendance"
	"github.com/example/stampcard/internal/calendar"
	"github.com/example/stampcard/internal/config"
	httptransport "github.com/example/stampcard/internal/http"
	"github.com/example/stampcard/internal/logging"
	"github.com/example/stampcard/internal/persistence/sqlite"
	"github.com/example/stampcard/internal/voicechat"
)

func main() {
	if err := run(); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, logCloser := logging.New(cfg.LogLevel, cfg.LogFile)
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	gateway := voicechat.NewClient(cfg.PlatformBaseURL, cfg.PlatformToken)
	renderer := calendar.NewRenderer(cfg.ArtworkDir)

	clubService := application.NewClubService(storage, cfg.GuildID, uuid.NewString, time.Now, logger)
	statsService := application.NewStatsService(storage, gateway, renderer, cfg.GuildID, cfg.Location(), time.Now, logger)

	if cfg.ClubsFile != "" {
		seeds, err := config.LoadClubSeeds(cfg.ClubsFile)
		if err != nil {
			return fmt.Errorf("load club seeds: %w", err)
		}
		if err := clubService.SeedClubs(ctx, seeds); err != nil {
			return fmt.Errorf("seed clubs: %w", err)
		}
	}

	awarder := attendance.NewAwarder(storage, &awardNotifier{gateway: gateway, logger: logger}, time.Now, logger)
	monitor := attendance.NewMonitor(attendance.MonitorConfig{
		Clubs:        clubService,
		Roster:       &rosterAdapter{gateway: gateway},
		Awarder:      awarder,
		Location:     cfg.Location(),
		PollInterval: cfg.PollInterval,
		Now:          time.Now,
		Logger:       logger,
	})

	events := make(chan attendance.VoiceEvent, 64)
	go forwardVoiceEvents(ctx, gateway, cfg.GuildID, events, logger)
	go monitor.Run(ctx, events)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Clubs:      httptransport.NewClubHandler(clubService, logger),
		Stats:      httptransport.NewStatsHandler(clubService, statsService, logger),
		Admin:      httptransport.RequireAdmin(cfg.AdminTokenHash, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("stampcard API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// forwardVoiceEvents long-polls the relay and feeds state changes to the
// monitor. Poll failures back off briefly so a relay outage does not spin.
func forwardVoiceEvents(ctx context.Context, gateway *voicechat.Client, guildID string, events chan<- attendance.VoiceEvent, logger *slog.Logger) {
	defer close(events)

	for {
		if ctx.Err() != nil {
			return
		}

		states, err := gateway.PollVoiceStates(ctx, guildID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("voice event poll failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, state := range states {
			event := attendance.VoiceEvent{
				MemberID:      state.MemberID,
				FromChannelID: state.PrevChannelID,
				ToChannelID:   state.NewChannelID,
			}
			select {
			case <-ctx.Done():
				return
			case events <- event:
			}
		}
	}
}

// rosterAdapter narrows the platform client to the monitor's roster query.
type rosterAdapter struct {
	gateway voicechat.Gateway
}

func (a *rosterAdapter) ChannelMembers(ctx context.Context, channelID string) ([]attendance.ChannelMember, error) {
	members, err := a.gateway.ChannelMembers(ctx, channelID)
	if err != nil {
		return nil, err
	}
	out := make([]attendance.ChannelMember, 0, len(members))
	for _, member := range members {
		out = append(out, attendance.ChannelMember{ID: member.ID, Bot: member.Bot})
	}
	return out, nil
}

// awardNotifier announces fresh stamps in the club's text channel.
type awardNotifier struct {
	gateway voicechat.Gateway
	logger  *slog.Logger
}

func (n *awardNotifier) StampAwarded(ctx context.Context, club attendance.Club, memberID string) {
	if club.NotifyChannelID == "" {
		return
	}
	message := voicechat.StampMessage(club.Name, memberID, club.NotifyRoleID)
	if err := n.gateway.SendMessage(ctx, club.NotifyChannelID, message); err != nil {
		n.logger.Warn("stamp notification failed",
			"club_id", club.ID, "member_id", memberID, "error", err)
	}
}
