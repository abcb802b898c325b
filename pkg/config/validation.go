package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags first, then the rules spanning several
// fields: unique shard keys and centro ids, driver settings per shard and
// telemetry endpoint and a single admin credential.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}

	keys := make(map[string]bool, len(cfg.Shards))
	ids := make(map[int64]string, len(cfg.Shards))
	for i := range cfg.Shards {
		s := &cfg.Shards[i]
		if err := s.Validate(); err != nil {
			return err
		}
		if keys[s.Key] {
			return fmt.Errorf("duplicate shard key %q", s.Key)
		}
		keys[s.Key] = true
		if other, ok := ids[s.CentroID]; ok {
			return fmt.Errorf("shards %q and %q share centro_id %d", other, s.Key, s.CentroID)
		}
		ids[s.CentroID] = s.Key
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry endpoint is required when telemetry is enabled")
	}
	if cfg.Admin.Password != "" && cfg.Admin.PasswordHash != "" {
		return fmt.Errorf("admin: set either password or password_hash, not both")
	}
	return nil
}
