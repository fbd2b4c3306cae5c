package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/seatrix/modem-tools/pkg/config"
	"github.com/seatrix/modem-tools/pkg/link"
	"github.com/seatrix/modem-tools/pkg/link/tcp"
	"github.com/seatrix/modem-tools/pkg/link/udp"
	"github.com/seatrix/modem-tools/pkg/observability"
	"github.com/seatrix/modem-tools/pkg/packer"
	"github.com/seatrix/modem-tools/pkg/protocol"
	"github.com/seatrix/modem-tools/pkg/stats"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("modem-node started", zap.String("app", cfg.AppName))
	zap.L().Info("effective configuration", zap.Any("config", cfg))

	reg := protocol.NewRegistry()
	if err := packer.RegisterGeneralBindings(reg, cfg.GeneralOutgoing); err != nil {
		zap.L().Error("invalid general_outgoing binding", zap.Error(err))
		return 1
	}
	if err := packer.RegisterGeneralBindings(reg, cfg.GeneralIncoming); err != nil {
		zap.L().Error("invalid general_incoming binding", zap.Error(err))
		return 1
	}

	lk, err := buildLink(cfg.Links)
	if err != nil {
		zap.L().Error("failed to start modem link", zap.Error(err))
		return 1
	}
	defer func() { _ = lk.Close() }()

	st := stats.NewStore()
	pk := packer.New(reg, lk, consumers(cfg, logger), packer.Options{
		TargetAddress:  cfg.Modem.TargetAddress,
		MaxEnvelopeLen: cfg.Modem.MaxEnvelopeBytes,
		RequiringAck:   cfg.Modem.RequiringAck,
		Stats:          st,
		Logger:         logger,
	})
	pk.Attach()

	zap.L().Info("node is running; press Ctrl+C to exit",
		zap.String("link", lk.Kind().String()), zap.Uint8("target", cfg.Modem.TargetAddress))
	// Block until process is killed; placeholder run loop.
	select {}
}

// buildLink brings up the first configured link. A node speaks to one
// modem at a time.
func buildLink(links []config.LinkConfig) (link.Link, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("no links configured")
	}
	lc := links[0]
	switch lc.Kind {
	case "udp":
		peers := make(map[uint8]string, len(lc.Peers))
		for _, p := range lc.Peers {
			peers[p.Address] = p.Endpoint
		}
		return udp.New(udp.Options{Listen: lc.Listen, LocalAddress: lc.LocalAddress, Peers: peers})
	case "tcp":
		return tcp.Dial(tcp.Options{Endpoint: lc.Endpoint, LocalAddress: lc.LocalAddress})
	default:
		return nil, fmt.Errorf("unsupported link kind %q", lc.Kind)
	}
}

// consumers wires the decoded-message sinks. The standalone node logs
// what arrives; an embedding application replaces these with real
// publishers.
func consumers(cfg *config.Config, logger *zap.Logger) packer.Consumers {
	general := make(map[string]func([]byte), len(cfg.GeneralIncoming))
	for _, gm := range cfg.GeneralIncoming {
		topic := gm.Topic
		general[topic] = func(payload []byte) {
			logger.Info("general payload", zap.String("topic", topic), zap.Int("length", len(payload)))
		}
	}
	return packer.Consumers{
		Nav: func(n protocol.NavFix) {
			logger.Info("nav fix",
				zap.Float64("lat", n.Latitude), zap.Float64("lon", n.Longitude),
				zap.Float32("depth", n.Depth))
		},
		Position: func(p protocol.PoseTarget) {
			logger.Info("position request", zap.Float32("x", p.X), zap.Float32("y", p.Y), zap.Float32("z", p.Z))
		},
		Body: func(p protocol.PoseTarget) {
			logger.Info("body request", zap.Float32("x", p.X), zap.Float32("y", p.Y), zap.Float32("z", p.Z))
		},
		Blob: func(b []byte) {
			logger.Info("blob payload", zap.Int("length", len(b)))
		},
		General: general,
	}
}
