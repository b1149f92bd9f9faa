// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"fmt"
	"strings"
	"time"
)

// FormatAge returns a short user friendly string for the time elapsed
// between [t] and [now], as "2d 3h ago". Only the largest unit and the one below it are shown
func FormatAge(t time.Time, now time.Time) string {
	d := now.Sub(t)
	if d < time.Second {
		return "just now"
	}
	units := []struct {
		suffix string
		size   time.Duration
	}{
		{"d", 24 * time.Hour},
		{"h", time.Hour},
		{"m", time.Minute},
		{"s", time.Second},
	}
	parts := []string{}
	for i, unit := range units {
		n := d / unit.size
		if n == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d%s", n, unit.suffix))
		if i+1 < len(units) {
			next := units[i+1]
			if m := (d - n*unit.size) / next.size; m > 0 {
				parts = append(parts, fmt.Sprintf("%d%s", m, next.suffix))
			}
		}
		break
	}
	return strings.Join(parts, " ") + " ago"
}
