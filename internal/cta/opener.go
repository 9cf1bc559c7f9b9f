package cta

import (
	"context"
	"fmt"
	"os/exec"
)

// OpenURL returns a Handler that opens url with the platform opener.
func OpenURL(url string) Handler {
	return func(ctx context.Context) error {
		name, args := openCommand(url)
		cmd := exec.CommandContext(ctx, name, args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("open %s: %w", url, err)
		}
		// The opener detaches; reap it in the background.
		go cmd.Wait()
		return nil
	}
}
