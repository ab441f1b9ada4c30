// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package update

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"v1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.2.0", "1.10.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"1.0", "1.0.0", 0},
		{"1.0", "1.0.1", -1},
		{"1.0.0-rc1", "1.0.0", 0},
		{"", "0.1.0", -1},
		{"garbage", "0.0.1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
		})
	}
}

type fakeSource struct {
	release Release
	err     error
}

func (f *fakeSource) LatestRelease(ctx context.Context) (Release, error) {
	return f.release, f.err
}

func TestBannerShowsOnNewerRelease(t *testing.T) {
	b := NewBanner("1.2.0")
	src := &fakeSource{release: Release{Version: "1.3.0", URL: "https://example.com/dl"}}

	msg := Check(src, nil)()
	b.Apply(msg)

	require.True(t, b.Visible())
	assert.Equal(t, "1.3.0", b.Release().Version)
}

func TestBannerHiddenWhenCurrent(t *testing.T) {
	b := NewBanner("1.3.0")
	b.Apply(CheckedMsg{Release: Release{Version: "1.3.0"}})
	assert.False(t, b.Visible())

	// Running a dev build newer than the latest release.
	b = NewBanner("1.4.0")
	b.Apply(CheckedMsg{Release: Release{Version: "1.3.0"}})
	assert.False(t, b.Visible())
}

func TestBannerDismiss(t *testing.T) {
	b := NewBanner("1.0.0")
	b.Apply(CheckedMsg{Release: Release{Version: "2.0.0"}})
	require.True(t, b.Visible())

	b.Dismiss()
	assert.False(t, b.Visible())

	// A later identical check does not resurrect a dismissed banner.
	b.Apply(CheckedMsg{Release: Release{Version: "2.0.0"}})
	assert.False(t, b.Visible())
}

func TestBannerIgnoresFailedCheck(t *testing.T) {
	b := NewBanner("1.0.0")
	src := &fakeSource{err: errors.New("offline")}

	b.Apply(Check(src, nil)())
	assert.False(t, b.Visible())
}
