package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	hookrpc "flowrpg/internal/modules/hook/adapter/out/rpc"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const notifyFileEnv = "FLOWRPG_NOTIFY_FILE"

type server struct {
	logger hclog.Logger
	path   string
}

func (s *server) GetMetadata(_ context.Context, _ *hookrpc.Empty) (*hookrpc.Metadata, error) {
	return &hookrpc.Metadata{
		Name:    "notify",
		Version: "1.0.0",
		Events:  []string{"level_up", "boss_defeated", "boss_spawned", "achievement_unlocked", "break_budget_exhausted"},
	}, nil
}

func (s *server) HandleEvent(_ context.Context, in *hookrpc.EventRequest) (*hookrpc.EventResponse, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		message = in.Kind
	}
	s.logger.Info("event", "kind", in.Kind, "level", in.Level, "message", message)
	if s.path == "" {
		return &hookrpc.EventResponse{Accepted: true}, nil
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &hookrpc.EventResponse{Accepted: false, Note: err.Error()}, nil
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s\t%s\t%d\t%s\n", in.At, in.Kind, in.Level, message); err != nil {
		return &hookrpc.EventResponse{Accepted: false, Note: err.Error()}, nil
	}
	return &hookrpc.EventResponse{Accepted: true, Note: "appended"}, nil
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "notify",
		Level:      hclog.Info,
		Output:     os.Stderr,
		JSONFormat: true,
	})
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: hookrpc.HandshakeConfig,
		Plugins:         hookrpc.PluginMap(&server{logger: logger, path: os.Getenv(notifyFileEnv)}),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}
