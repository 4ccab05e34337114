package ui

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// openURLFn is replaced by StubPlatformActions in tests.
var openURLFn = openURLImpl

// OpenURL opens an annotation link in the default browser. Only http and
// https links are opened.
func OpenURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: only http and https links are opened", link)
	}
	return openURLFn(u.String())
}

// StubPlatformActions records opened links instead of starting a browser
// and returns a restore function.
func StubPlatformActions(opened *[]string) (restore func()) {
	orig := openURLFn
	openURLFn = func(link string) error {
		if opened != nil {
			*opened = append(*opened, link)
		}
		return nil
	}
	return func() { openURLFn = orig }
}

// openURLImpl starts the platform opener. The child outlives the caller,
// so it gets a detached context.
func openURLImpl(link string) error {
	ctx := context.Background()

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", link)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("xdg-open not found (install xdg-utils)")
		}
		cmd = exec.CommandContext(ctx, "xdg-open", link)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
