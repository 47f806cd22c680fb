package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mateusmacedo/go-ticket-booking/pkg/application"
	"github.com/mateusmacedo/go-ticket-booking/pkg/domain"
)

// ErrNoHandler is returned when a bus has nothing registered under a name.
var ErrNoHandler = errors.New("no handler registered")

type simpleCommandBus[C domain.Command[D], D any] struct {
	handlers map[string]application.CommandHandler[C, D]
	mu       sync.RWMutex
	logger   application.AppLogger
}

// NewSimpleCommandBus returns an in-process bus that runs handlers synchronously.
func NewSimpleCommandBus[C domain.Command[D], D any](logger application.AppLogger) application.CommandBus[C, D] {
	return &simpleCommandBus[C, D]{
		handlers: make(map[string]application.CommandHandler[C, D]),
		logger:   logger,
	}
}

func (bus *simpleCommandBus[C, D]) RegisterHandler(commandName string, handler application.CommandHandler[C, D]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.handlers[commandName] = handler
}

func (bus *simpleCommandBus[C, D]) Dispatch(ctx context.Context, command C) error {
	bus.mu.RLock()
	handler, found := bus.handlers[command.CommandName()]
	bus.mu.RUnlock()

	if !found {
		application.LogError(ctx, bus.logger, "command not routed", ErrNoHandler, map[string]interface{}{
			"command_name": command.CommandName(),
		})
		return fmt.Errorf("command %s: %w", command.CommandName(), ErrNoHandler)
	}

	application.LogDebug(ctx, bus.logger, "dispatching command", map[string]interface{}{
		"command_name": command.CommandName(),
	})
	return handler.Handle(ctx, command)
}
