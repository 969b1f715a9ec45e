package state

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisStoreTestSuite struct {
	storeSuite
	container testcontainers.Container
	cfg       RedisConfig
	db        int
}

func (s *RedisStoreTestSuite) SetupSuite() {
	ctx := context.Background()
	rc, err := tcredis.Run(ctx, "redis:7")
	s.Require().NoError(err)
	s.container = rc

	host, err := rc.Host(ctx)
	s.Require().NoError(err)
	port, err := rc.MappedPort(ctx, "6379")
	s.Require().NoError(err)
	s.cfg = RedisConfig{Host: fmt.Sprintf("%s:%s", host, port.Port())}

	s.newStore = func() KVStore {
		// each test gets a fresh namespace on the shared container
		s.db++
		cfg := s.cfg
		cfg.Namespace = fmt.Sprintf("test%d:", s.db)
		return NewRedisStore(cfg)
	}
}

func (s *RedisStoreTestSuite) TearDownSuite() {
	s.Require().NoError(s.container.Terminate(context.Background()))
}

func (s *RedisStoreTestSuite) Test_Ping() {
	store := NewRedisStore(s.cfg)
	defer store.Close()
	s.NoError(store.Ping(context.Background()))
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	suite.Run(t, new(RedisStoreTestSuite))
}
