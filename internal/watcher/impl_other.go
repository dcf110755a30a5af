//go:build !linux

package watcher

import (
	"context"
	"errors"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
)

type nopWatcher struct{}

func newWatcher(*zap.Logger) DeviceWatcher { return nopWatcher{} }

func (nopWatcher) Start(context.Context) (<-chan model.DeviceChange, error) {
	return nil, errors.ErrUnsupported
}

func (nopWatcher) Stop() {}
