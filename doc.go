// Package lasca computes Laser Speckle Contrast Analysis images from a
// stream of raw 8-bit grayscale frames.
//
// Every frame passes two compute stages. The temporal stage folds the frame
// into two cascaded exponential moving averages of intensity and squared
// intensity. The spatial stage takes a 3×3 box mean of the slow averages and
// turns variance/mean² into an 8-bit contrast value per pixel, masked to 0
// where the mean is too dark or saturated. The slow and blurred buffers
// swap roles after every frame, so the blur feeds the next frame's
// recursion.
//
// # Quick Start
//
//	src, _ := source.OpenRaw("speckle.raw", 1440, 1080)
//	p, err := lasca.New(lasca.DefaultConfig(1440, 1080), src, display.Discard{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//	for {
//	    if _, err := p.Tick(ctx); err != nil {
//	        break
//	    }
//	}
//
// # Backends
//
// The software backend runs on the CPU and is always available. The GPU
// backend is registered by importing the gpu package:
//
//	import _ "github.com/gogpu/lasca/gpu"
//
// New prefers the GPU backend and falls back to software when no device can
// be opened.
//
// # End of stream
//
// When the source reports ErrEndOfStream the pipeline rewinds it, zeroes all
// accumulators and carries on with the first frame of the replay.
//
// # Logging
//
// lasca is silent by default. Call SetLogger to enable structured logging.
package lasca
