package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nfvri/ris-simulator/pkg/report"
	"github.com/onosproject/onos-lib-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const reportSuffix = "-RisReport"

// Store persists finished run reports
type Store interface {
	AddReport(ctx context.Context, runId string, r *report.Report) error
	GetReport(ctx context.Context, runId string) (*report.Report, error)
	DeleteReport(ctx context.Context, runId string) (*report.Report, error)
}

// ReportKey returns the redis key of a run
func ReportKey(runId string) string {
	return runId + reportSuffix
}

type RedisStore struct {
	ReportDB *redis.Client
}

// InitClient connects and pings the server, retrying with exponential backoff
func InitClient(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	ping := func() error {
		return client.Ping(ctx).Err()
	}
	notify := func(err error, d time.Duration) {
		log.Warnf("Redis at %s not ready, retrying in %v: %v", addr, d, err)
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.RetryNotify(ping, b, notify); err != nil {
		client.Close()
		return nil, errors.NewUnavailable("redis at %s unavailable: %v", addr, err)
	}
	return client, nil
}

func (s *RedisStore) AddReport(ctx context.Context, runId string, r *report.Report) error {
	reportBytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %v ", err)
	}

	return s.ReportDB.Set(ctx, ReportKey(runId), reportBytes, time.Duration(0)).Err()
}

func (s *RedisStore) GetReport(ctx context.Context, runId string) (*report.Report, error) {
	reportBytes, err := s.ReportDB.Get(ctx, ReportKey(runId)).Bytes()
	if err == redis.Nil || (err == nil && len(reportBytes) == 0) {
		return nil, errors.NewNotFound("report for run id %s does not exist", runId)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching report for run id %s: %v", runId, err)
	}

	r := &report.Report{}
	if err := json.Unmarshal(reportBytes, r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %v ", err)
	}
	return r, nil
}

func (s *RedisStore) DeleteReport(ctx context.Context, runId string) (*report.Report, error) {
	r, err := s.GetReport(ctx, runId)
	if err != nil {
		return nil, err
	}

	err = s.ReportDB.Del(ctx, ReportKey(runId)).Err()
	return r, err
}

// MockedRedisStore keeps reports in memory with the same encoding
type MockedRedisStore struct {
	mu      sync.Mutex
	reports map[string][]byte
}

func (s *MockedRedisStore) AddReport(ctx context.Context, runId string, r *report.Report) error {
	reportBytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %v ", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reports == nil {
		s.reports = make(map[string][]byte)
	}
	s.reports[ReportKey(runId)] = reportBytes
	return nil
}

func (s *MockedRedisStore) GetReport(ctx context.Context, runId string) (*report.Report, error) {
	s.mu.Lock()
	reportBytes, ok := s.reports[ReportKey(runId)]
	s.mu.Unlock()
	if !ok {
		return nil, errors.NewNotFound("report for run id %s does not exist", runId)
	}
	r := &report.Report{}
	if err := json.Unmarshal(reportBytes, r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %v ", err)
	}
	return r, nil
}

func (s *MockedRedisStore) DeleteReport(ctx context.Context, runId string) (*report.Report, error) {
	r, err := s.GetReport(ctx, runId)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	delete(s.reports, ReportKey(runId))
	s.mu.Unlock()
	return r, nil
}
