package services

import (
	"context"

	"github.com/jabenlo/pstep-bank-store/pkg/pg"
	"github.com/jabenlo/pstep-bank-store/pkg/redis"
)

// HealthService verifies the database and session store are reachable.
type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, adapter redis.RedisAdapter) *HealthService {
	return &HealthService{
		db:    db,
		redis: adapter,
	}
}

func (s *HealthService) Get() error {
	var one int
	if err := s.db.Read(context.Background()).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return err
	}
	if _, err := s.redis.Exist("health"); err != nil {
		return err
	}
	return nil
}
