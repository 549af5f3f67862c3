package cubism

import "errors"

var (
	// ErrNoDevice is returned when a renderer is created without a device.
	ErrNoDevice = errors.New("cubism: device is not set")

	// ErrNoModel is returned by operations that need an initialized model.
	ErrNoModel = errors.New("cubism: model is not initialized")

	// ErrShaderSource is wrapped around shader loader failures.
	ErrShaderSource = errors.New("cubism: shader source unavailable")
)
