package bootstrap

import (
	"context"
	"testing"

	"github.com/hotelbooking/hotelweb/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		mode     redisMode
		addrs    []string
		password string
		db       int
		errMsg   string
	}{
		{
			name:     "bare address",
			cfg:      config.RedisConfig{URI: " cache:6379 ", Password: "pw"},
			mode:     redisModeDirect,
			addrs:    []string{"cache:6379"},
			password: "pw",
		},
		{
			name:     "url carries its own credentials and db",
			cfg:      config.RedisConfig{URI: "redis://:secret@cache:6380/3", Password: "ignored"},
			mode:     redisModeDirect,
			addrs:    []string{"cache:6380"},
			password: "secret",
			db:       3,
		},
		{
			name:   "empty uri",
			cfg:    config.RedisConfig{},
			errMsg: "requires REDIS_URI",
		},
		{
			name:   "bad url",
			cfg:    config.RedisConfig{URI: "redis://cache:6379/notadb"},
			errMsg: "parse redis url",
		},
		{
			name:  "sentinel",
			cfg:   config.RedisConfig{UseSentinel: true, SentinelNodes: []string{"s1:26379", " "}, SentinelMasterName: "primary"},
			mode:  redisModeSentinel,
			addrs: []string{"s1:26379"},
		},
		{
			name:   "sentinel without master",
			cfg:    config.RedisConfig{UseSentinel: true, SentinelNodes: []string{"s1:26379"}},
			errMsg: "REDIS_SENTINEL_MASTER_NAME",
		},
		{
			name:  "cluster wins over sentinel",
			cfg:   config.RedisConfig{UseCluster: true, UseSentinel: true, ClusterNodes: []string{"n1:7000", "n2:7000"}},
			mode:  redisModeCluster,
			addrs: []string{"n1:7000", "n2:7000"},
		},
		{
			name:   "cluster without nodes",
			cfg:    config.RedisConfig{UseCluster: true, ClusterNodes: []string{""}},
			errMsg: "REDIS_CLUSTER_NODES",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, mode, err := redisOptions(tt.cfg)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.addrs, opts.Addrs)
			assert.Equal(t, tt.password, opts.Password)
			assert.Equal(t, tt.db, opts.DB)
		})
	}
}

func TestConnectRedis_Unreachable(t *testing.T) {
	_, err := ConnectRedis(context.Background(), DatabaseConfig{
		RedisConfig: config.RedisConfig{URI: "127.0.0.1:1"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis (direct)")
}
