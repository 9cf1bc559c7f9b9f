//go:build linux

package cta

import "os/exec"

var linuxOpeners = []string{"xdg-open", "gio", "sensible-browser"}

func openCommand(url string) (string, []string) {
	for _, name := range linuxOpeners {
		if _, err := exec.LookPath(name); err == nil {
			if name == "gio" {
				return name, []string{"open", url}
			}
			return name, []string{url}
		}
	}
	return "xdg-open", []string{url}
}
