//go:build !linux && !darwin && !windows

package cta

func openCommand(url string) (string, []string) {
	return "xdg-open", []string{url}
}
