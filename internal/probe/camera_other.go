//go:build !linux

package probe

import "errors"

func openCapture(path string) (func() error, error) {
	return nil, errors.ErrUnsupported
}
