//go:build darwin

package cta

func openCommand(url string) (string, []string) {
	return "open", []string{url}
}
