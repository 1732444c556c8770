// Package source provides lasca.FrameSource implementations: raw frame
// files, a synthetic speckle generator and a constant frame.
//
// Frames returned by Next share a buffer owned by the source and are valid
// until the next call.
package source
