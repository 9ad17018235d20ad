// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package touch

import "errors"

var (
	// ErrTransport wraps any failure of the underlying bus exchange.
	// It is fatal to the current read; the caller decides whether to poll again.
	ErrTransport = errors.New("touch: transport failure")

	// ErrCalibration is returned when a profile has min >= max on either axis.
	ErrCalibration = errors.New("touch: invalid calibration profile")

	// ErrConfig is returned by Config.Validate and New for unusable options.
	ErrConfig = errors.New("touch: invalid configuration")

	// ErrUnreliableSample marks a batch whose spread exceeded the variance limit.
	ErrUnreliableSample = errors.New("touch: sample batch too noisy")

	// ErrJumpRejected marks a point too far away from the previous one.
	ErrJumpRejected = errors.New("touch: implausible jump")
)
