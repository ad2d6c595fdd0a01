// Package browser opens URLs in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the platform's default browser at url.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "linux":
		// Different distros ship different openers.
		for _, opener := range []string{"xdg-open", "x-www-browser", "www-browser"} {
			if _, err := exec.LookPath(opener); err == nil {
				return exec.Command(opener, url).Start()
			}
		}
		return fmt.Errorf("could not find a browser to open, please visit the URL manually")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
