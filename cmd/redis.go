package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Spitbox/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `测试Redis连接，并获取释放一次分布式锁，确认Google登录使用的锁可用。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.RedisEnabled() {
			return errors.New("redis is not configured (set REDIS_HOST)")
		}
		fmt.Printf("Redis配置: %s, DB: %d\n", cfg.RedisAddr(), cfg.RedisDB)

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		client, err := cache.ConnectRedis(ctx, cfg)
		if err != nil {
			return fmt.Errorf("无法连接到Redis: %w", err)
		}
		defer client.Close()
		fmt.Println("Redis连接成功！")

		start := time.Now()
		unlock, err := cache.NewRedisLocker(client).Lock(ctx, "healthcheck")
		if err != nil {
			return fmt.Errorf("获取锁失败: %w", err)
		}
		unlock()
		fmt.Printf("锁测试成功 (%s)\n", time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
