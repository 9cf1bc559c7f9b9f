package cli

import (
	"errors"
	"fmt"

	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/logging"
	"github.com/sadopc/tminus/internal/store"
	"github.com/sadopc/tminus/internal/tui"
)

// defaultPresetName holds the countdown built from the config file, so presses
// made without a preset are still logged.
const defaultPresetName = "default"

// resolveCountdown picks the countdown to show. An explicit preset wins, then
// the default_countdown setting, then the config file. Flag overrides apply on
// top of whichever was chosen. With persist set, a config-file countdown is
// saved as the "default" preset.
func resolveCountdown(s *store.Store, name string, overrides config.Options, persist bool) (config.Countdown, *store.Countdown, error) {
	explicit := name != ""
	if !explicit {
		if v, err := s.GetSetting("default_countdown"); err == nil {
			name = v
		}
	}

	if name != "" {
		p, err := s.GetCountdownByName(name)
		switch {
		case err == nil:
			cd, err := tui.PresetOptions(*p).Merge(overrides).Resolve()
			if err != nil {
				return config.Countdown{}, nil, fmt.Errorf("preset %s: %w", name, err)
			}
			return cd, p, nil
		case explicit && errors.Is(err, store.ErrNotFound):
			return config.Countdown{}, nil, fmt.Errorf("preset %q not found", name)
		case explicit:
			return config.Countdown{}, nil, err
		default:
			logging.Logger.Warn("default countdown unavailable, using config", "name", name, "err", err)
		}
	}

	cd, err := cfg.Countdown.Merge(overrides).Resolve()
	if err != nil {
		return config.Countdown{}, nil, fmt.Errorf("config: %w", err)
	}
	if !persist {
		return cd, nil, nil
	}
	p, err := upsertDefault(s, cd)
	if err != nil {
		return config.Countdown{}, nil, err
	}
	return cd, p, nil
}

func upsertDefault(s *store.Store, cd config.Countdown) (*store.Countdown, error) {
	c := tui.PresetFromCountdown(defaultPresetName, cd)
	existing, err := s.GetCountdownByName(defaultPresetName)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.CreateCountdown(c)
	case err != nil:
		return nil, err
	}
	c.ID = existing.ID
	if err := s.UpdateCountdown(c); err != nil {
		return nil, err
	}
	return s.GetCountdown(c.ID)
}
