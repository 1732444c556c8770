// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

// pkgLogger receives device, pipeline and fence diagnostics. It discards
// everything until lasca.SetLogger reaches an open Backend.
var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	pkgLogger.Store(slog.New(slog.DiscardHandler))
}

func slogger() *slog.Logger { return pkgLogger.Load() }

// setLogger installs l; nil restores the discarding logger.
func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	pkgLogger.Store(l)
}
