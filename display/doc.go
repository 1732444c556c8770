// Package display provides lasca.DisplayConsumer implementations: false
// color BMP snapshots, an in-memory recorder and fan-out.
package display
