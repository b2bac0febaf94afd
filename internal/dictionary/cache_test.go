package dictionary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"shiritori/internal/dictionary/mocks"
)

type CachedSourceTestSuite struct {
	suite.Suite
	mr       *miniredis.Miniredis
	client   *redis.Client
	mockCtrl *gomock.Controller
	source   *mocks.MockSource
	cache    *CachedSource
	ctx      context.Context
}

func (s *CachedSourceTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.mockCtrl = gomock.NewController(s.T())
	s.source = mocks.NewMockSource(s.mockCtrl)

	cache, err := NewCachedSource(&CacheConfig{
		Source:      s.source,
		RedisClient: s.client,
		TTL:         time.Hour,
	})
	s.Require().NoError(err)
	s.cache = cache
	s.ctx = context.Background()
}

func (s *CachedSourceTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestCachedSourceTestSuite(t *testing.T) {
	suite.Run(t, new(CachedSourceTestSuite))
}

func (s *CachedSourceTestSuite) TestHitSkipsSource() {
	s.source.EXPECT().Check(gomock.Any(), "train").Return(true, nil).Times(1)

	for i := 0; i < 3; i++ {
		ok, err := s.cache.Check(s.ctx, "train")
		s.Require().NoError(err)
		s.True(ok)
	}

	value, err := s.mr.Get("dict:verdict:train")
	s.Require().NoError(err)
	s.Equal("1", value)
	s.Equal(time.Hour, s.mr.TTL("dict:verdict:train"))
}

func (s *CachedSourceTestSuite) TestNegativeVerdictIsCached() {
	s.source.EXPECT().Check(gomock.Any(), "xyzzy").Return(false, nil).Times(1)

	for i := 0; i < 2; i++ {
		ok, err := s.cache.Check(s.ctx, "xyzzy")
		s.Require().NoError(err)
		s.False(ok)
	}
}

func (s *CachedSourceTestSuite) TestSourceErrorIsNotCached() {
	gomock.InOrder(
		s.source.EXPECT().Check(gomock.Any(), "train").Return(false, errors.New("timeout")),
		s.source.EXPECT().Check(gomock.Any(), "train").Return(true, nil),
	)

	_, err := s.cache.Check(s.ctx, "train")
	s.Error(err)
	s.False(s.mr.Exists("dict:verdict:train"))

	ok, err := s.cache.Check(s.ctx, "train")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CachedSourceTestSuite) TestExpiredVerdictAsksAgain() {
	s.source.EXPECT().Check(gomock.Any(), "train").Return(true, nil).Times(2)

	_, err := s.cache.Check(s.ctx, "train")
	s.Require().NoError(err)

	s.mr.FastForward(2 * time.Hour)

	_, err = s.cache.Check(s.ctx, "train")
	s.Require().NoError(err)
}

func (s *CachedSourceTestSuite) TestRedisDownFallsThrough() {
	s.source.EXPECT().Check(gomock.Any(), "train").Return(true, nil)
	s.mr.Close()

	ok, err := s.cache.Check(s.ctx, "train")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *CachedSourceTestSuite) TestNewCachedSourceValidation() {
	_, err := NewCachedSource(nil)
	s.Error(err)

	_, err = NewCachedSource(&CacheConfig{RedisClient: s.client})
	s.Error(err)

	_, err = NewCachedSource(&CacheConfig{Source: s.source})
	s.Error(err)
}
