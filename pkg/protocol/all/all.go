// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package all registers every bundled protocol with the default registry.
// Import it for side effects.
package all
