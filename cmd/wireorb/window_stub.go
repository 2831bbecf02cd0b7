//go:build !cgo

package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/taigrr/wireorb/internal/config"
)

func runWindow(_ context.Context, _ *config.Config, _ *zap.Logger) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
