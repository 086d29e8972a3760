package out

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	hookrpc "flowrpg/internal/modules/hook/adapter/out/rpc"
	"flowrpg/internal/modules/hook/domain"
	hookout "flowrpg/internal/modules/hook/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 2 * time.Second
)

type GRPCHost struct {
	logger       hclog.Logger
	startTimeout time.Duration
	callTimeout  time.Duration
}

// NewGRPCHost starts hooks on demand. Hook stderr and hclog output are
// forwarded to logger; a nil logger discards them. callTimeout <= 0 uses
// the default.
func NewGRPCHost(logger hclog.Logger, callTimeout time.Duration) hookout.Host {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &GRPCHost{logger: logger.Named("hook"), startTimeout: defaultStartTimeout, callTimeout: callTimeout}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Events: meta.Events}, nil
}

func (h *GRPCHost) HandleEvent(ctx context.Context, manifest domain.Manifest, event domain.Event) (domain.Ack, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Ack{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx)
	defer cancel()
	response, err := client.HandleEvent(callCtx, &hookrpc.EventRequest{
		ID:          event.ID,
		Kind:        event.Kind,
		At:          event.At.UTC().Format(time.RFC3339),
		Level:       int32(event.Level),
		Message:     event.Message,
		PayloadJSON: event.PayloadJSON,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return domain.Ack{}, fmt.Errorf("%w: %s", domain.ErrHookTimeout, manifest.Name)
		}
		return domain.Ack{}, fmt.Errorf("handle event: %w", err)
	}
	return domain.Ack{Accepted: response.Accepted, Note: response.Note}, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (hookrpc.HookClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  hookrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          hookrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     h.startTimeout,
		Logger:           h.logger.With("hook", manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start hook client: %w", err)
	}
	raw, err := rpcClient.Dispense(hookrpc.HookMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense hook: %w", err)
	}
	typed, ok := raw.(hookrpc.HookClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("hook rpc client type mismatch")
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, h.callTimeout)
}
