// Command meet is a headless participant: it joins a room on the
// signaling server, negotiates a session with every peer it meets, and
// logs roster and chat activity. Usage: meet <room> [name]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Jaguar1-alt/MV-meet/internal/adapters/relay"
	"github.com/Jaguar1-alt/MV-meet/internal/adapters/rtc"
	"github.com/Jaguar1-alt/MV-meet/internal/app"
	"github.com/Jaguar1-alt/MV-meet/internal/config"
	"github.com/Jaguar1-alt/MV-meet/internal/core"
	"github.com/Jaguar1-alt/MV-meet/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	if len(os.Args) < 2 {
		log.Fatal().Msg("usage: meet <room> [name]")
	}
	room := domain.RoomKey(os.Args[1])
	name := cfg.Username
	if len(os.Args) > 2 {
		name = os.Args[2]
	}

	media := app.NewLocalMediaState(rtc.NewStaticSource())
	if err := media.Acquire(app.DefaultConstraintLadder()); err != nil {
		log.Fatal().Err(err).Msg("media acquisition failed")
	}

	client, err := relay.Dial(ctx, cfg.ServerURL)
	if err != nil {
		log.Fatal().Err(err).Msg("relay dial failed")
	}
	defer client.Close()

	rtcCfg := rtc.Configuration(cfg.STUNServers)
	manager := app.NewManager(client, func(peer domain.MemberID) (core.MediaConnection, error) {
		return rtc.NewPeerLink(rtcCfg, peer)
	}, media)

	manager.OnRemoteTrack(func(peer domain.MemberID, name string, track *webrtc.TrackRemote) {
		log.Info().Str("peer", string(peer)).Str("name", name).Str("kind", track.Kind().String()).Msg("receiving media")
	})
	manager.OnPeerGone(func(peer domain.MemberID) {
		log.Info().Str("peer", string(peer)).Msg("peer gone")
	})
	manager.OnChat(func(sender, message string) {
		log.Info().Str("from", sender).Str("message", message).Msg("chat")
	})

	if err := client.JoinRoom(room, name); err != nil {
		log.Fatal().Err(err).Msg("join failed")
	}
	log.Info().Str("room", string(room)).Str("name", name).Str("id", string(client.Self())).Msg("joined room")

	manager.Run(ctx, client.Events())
	log.Info().Msg("meet exited")
}
