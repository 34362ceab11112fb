// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters and histograms for requests,
// answer writes, view recomputation, layout fallbacks and synthesis calls.
package metrics
