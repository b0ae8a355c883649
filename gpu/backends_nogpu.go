// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package gpu

import "github.com/gogpu/gputypes"

// Hardware backends are compiled out; only the noop backend remains.
var hardwareBackends []gputypes.Backend
