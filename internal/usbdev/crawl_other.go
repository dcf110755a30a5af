//go:build !linux

package usbdev

import (
	"context"
	"errors"

	"github.com/Hara602/devSentry/internal/model"
)

func udevCrawl(ctx context.Context, filter model.DeviceFilter) ([]string, error) {
	return nil, errors.ErrUnsupported
}
