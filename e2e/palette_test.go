//go:build e2e && unix

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startPalette(t *testing.T, options ...ConfigOption) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")
	configPath, err := tf.WriteConfig(options...)
	require.NoError(t, err)

	require.NoError(t, tf.StartApp("--config", configPath))
	require.True(t, tf.Ready(), "Should receive ready signal")
	return tf
}

func TestOpenAndClosePalette(t *testing.T) {
	t.Parallel()
	tf := startPalette(t)
	defer tf.Cleanup()

	tf.OpenPalette()
	require.True(t, tf.SeePlain("Settings"), "Palette should list the items")
	require.True(t, tf.SeePlain("Search..."), "Input should show the placeholder")

	done := make(chan error, 1)
	go func() { done <- tf.cmd.Wait() }()

	// 'q' only quits once escape closed the palette
	tf.ClosePalette()
	time.Sleep(100 * time.Millisecond)
	tf.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		tf.DumpTailOnFail(t, "close-failure", 4096)
		t.Fatal("palette did not close on escape")
	}
}

func TestFilterAndSelect(t *testing.T) {
	t.Parallel()
	tf := startPalette(t)
	defer tf.Cleanup()

	tf.OpenPalette()
	require.True(t, tf.SeePlain("Settings"))
	time.Sleep(50 * time.Millisecond)

	tf.Type("setting")
	tf.Enter()

	require.True(t, tf.SeePlain("Opened https://app.example.com/settings"), "Enter should navigate to the resolved URL")
}

func TestPointerHoverWithoutButton(t *testing.T) {
	t.Parallel()
	tf := startPalette(t)
	defer tf.Cleanup()

	require.True(t, tf.OutputContains("\x1b[?1003h", 2*time.Second), "Any-event mouse tracking should be enabled")

	tf.OpenPalette()
	require.True(t, tf.SeePlain("Settings"))
	time.Sleep(50 * time.Millisecond)

	// 120x40 terminal: the list starts at row 10, column 27 (1-based).
	// Button code 35 is motion with no button held.
	tf.SendKeys("\x1b[<35;31;11M")
	time.Sleep(50 * time.Millisecond)
	tf.Enter()

	require.True(t, tf.SeePlain("Opened https://app.example.com/settings"), "Hovering the second row should select it")
}

func TestArrowNavigationAndNewTab(t *testing.T) {
	t.Parallel()
	tf := startPalette(t)
	defer tf.Cleanup()

	tf.OpenPalette()
	require.True(t, tf.SeePlain("Settings"))
	time.Sleep(50 * time.Millisecond)

	tf.Down()
	time.Sleep(20 * time.Millisecond)
	tf.SendKeys(KeyAltEnter)

	require.True(t, tf.SeePlain("Opened in new tab https://app.example.com/settings"))
}

func TestRecentItemsSurviveRestart(t *testing.T) {
	t.Parallel()
	tf := startPalette(t)
	defer tf.Cleanup()

	tf.OpenPalette()
	require.True(t, tf.SeePlain("Contact Us"))
	time.Sleep(50 * time.Millisecond)
	tf.Type("contact")
	tf.Enter()
	require.True(t, tf.SeePlain("Opened mailto:contact@example.com"))

	// restart in the same workspace; the recent store lives under XDG_CACHE_HOME
	workspace := tf.workspace
	done := make(chan error, 1)
	go func() { done <- tf.cmd.Wait() }()
	tf.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not exit after quit")
	}

	tf2 := NewTUITest(t)
	tf2.workspace = workspace
	defer tf2.Cleanup()
	require.NoError(t, tf2.StartApp("--config", workspace+"/cmdpalette.toml"))
	require.True(t, tf2.Ready())

	tf2.OpenPalette()
	require.NoError(t, tf2.WaitForE(func(s string) bool {
		plain := ansiRe.ReplaceAllString(s, "")
		contact := strings.LastIndex(plain, "Contact Us")
		home := strings.LastIndex(plain, "Home")
		return contact >= 0 && home > contact
	}, 3*time.Second, "recent item should be listed before the others"))
}
