package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/marmos91/centromed/internal/logger"
	"github.com/marmos91/centromed/pkg/fanout"
	"github.com/marmos91/centromed/pkg/hospital/models"
	"github.com/marmos91/centromed/pkg/shard"
)

// Account is a usuario together with the shard storing it.
type Account struct {
	Usuario models.Usuario
	Shard   *shard.Shard
}

// Authenticate looks username up on every shard and checks password. The
// first shard in registry order holding a matching active account wins.
// Accounts on shards that did not answer cannot log in until they do.
func (c *Catalog) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	shards := c.deps.Resolver.Registry().List()
	res, err := fanout.Query(ctx, c.deps.Executor, "usuarios.login", shards,
		func(_ context.Context, db *gorm.DB) ([]models.Usuario, error) {
			var rows []models.Usuario
			err := db.Where("username = ?", username).Limit(1).Find(&rows).Error
			return rows, err
		})
	if err != nil {
		return nil, err
	}

	for _, p := range res.Parts {
		for _, u := range p.Rows {
			if !u.Active() || !models.VerifyPassword(password, u.PasswordHash) {
				continue
			}
			c.touch(ctx, p.Shard, u.ID)
			return &Account{Usuario: u, Shard: p.Shard}, nil
		}
	}

	if res.Failed() > 0 {
		logger.WarnCtx(ctx, "Login failed with shards unavailable",
			logger.KeyUsername, username, logger.KeyFailed, res.FailedKeys())
	}
	return nil, models.ErrInvalidCredentials
}

// Lookup returns the active account named username stored on key.
func (c *Catalog) Lookup(ctx context.Context, key, username string) (*Account, error) {
	s, err := c.deps.Resolver.Registry().Get(key)
	if err != nil {
		return nil, err
	}
	var u models.Usuario
	if err := s.DB().WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, convertNotFoundError(err)
	}
	if !u.Active() {
		return nil, ErrNotFound
	}
	return &Account{Usuario: u, Shard: s}, nil
}

// touch records the login time on the account's own shard.
func (c *Catalog) touch(ctx context.Context, s *shard.Shard, id int64) {
	now := time.Now().UTC()
	err := s.DB().WithContext(ctx).Model(&models.Usuario{}).
		Where("id = ?", id).
		UpdateColumn("ultimo_acceso", now).Error
	if err != nil {
		logger.WarnCtx(ctx, "Failed to record login time", logger.KeyShard, s.Key, logger.KeyError, err.Error())
	}
}
