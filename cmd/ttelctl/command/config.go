package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/scriptlab/ttel"
)

// loadConfigOverlay reads a JSON object from path and decodes it onto
// cfg with mapstructure: a plain map[string]interface{} unmarshaled
// once, then mapped onto a concrete struct with a decode hook for the
// fields JSON can't name directly (time.Duration as a string like
// "30s").
func loadConfigOverlay(path string, cfg *ttel.Config) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config overlay: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("parsing config overlay: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return fmt.Errorf("building config decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("applying config overlay: %w", err)
	}
	return nil
}
