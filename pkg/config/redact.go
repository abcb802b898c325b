package config

import "github.com/marmos91/centromed/pkg/shard"

const redacted = "********"

// Redacted returns a copy of cfg with the JWT secret, admin credentials
// and shard passwords masked, for display.
func (cfg *Config) Redacted() *Config {
	out := *cfg
	out.Shards = make([]shard.Config, len(cfg.Shards))
	copy(out.Shards, cfg.Shards)

	mask(&out.API.JWT.Secret)
	mask(&out.Admin.Password)
	mask(&out.Admin.PasswordHash)
	for i := range out.Shards {
		mask(&out.Shards[i].Database.MySQL.Password)
		mask(&out.Shards[i].Database.Postgres.Password)
	}
	return &out
}

func mask(s *string) {
	if *s != "" {
		*s = redacted
	}
}
