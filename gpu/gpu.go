//go:build !nogpu

// Package gpu registers the wgpu compute backend.
//
// Import this package to let lasca.New run both stages as WGSL compute
// shaders. The backend opens its own Vulkan device on first use; if that
// fails, lasca.New falls back to the software backend and logs a warning.
//
// Usage:
//
//	import _ "github.com/gogpu/lasca/gpu" // enable GPU compute
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/lasca"
	gpuimpl "github.com/gogpu/lasca/internal/gpu"
)

func init() {
	lasca.RegisterBackend(lasca.BackendWGPU, func() (lasca.Backend, error) {
		b, err := gpuimpl.NewBackend()
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// WithDeviceProvider makes the pipeline run on the GPU device of an external
// provider (e.g., a gogpu window) instead of opening its own. The provider
// must also expose HalDevice() and HalQueue(). The shared device is not
// destroyed when the pipeline closes.
func WithDeviceProvider(provider gpucontext.DeviceProvider) lasca.Option {
	return lasca.WithBackendFactory(func() (lasca.Backend, error) {
		b, err := gpuimpl.NewBackendFromProvider(provider)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}
