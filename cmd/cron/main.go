package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"
	"xinyuan_tech/assistance-service/internal/conf"
	"xinyuan_tech/assistance-service/internal/constants"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/robfig/cron/v3"
	_ "go.uber.org/automaxprocs"
)

var (
	flagconf string
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

// CronApp Cron 应用结构
type CronApp struct {
	subscriptionUsecase *biz.SubscriptionUsecase
	rs                  *redsync.Redsync
}

// newLogger 创建 logger
func newLogger(c *conf.Log) klog.Logger {
	return klog.With(klog.NewStdLogger(os.Stdout),
		"ts", klog.DefaultTimestamp,
		"caller", klog.DefaultCaller,
		"service.name", "assistance-cron",
	)
}

func main() {
	flag.Parse()

	// 初始化配置
	c := config.New(
		config.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	// 初始化应用
	app, cleanup, err := wireApp(&bc)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// 创建定时任务调度器（支持秒级调度）
	cronScheduler := cron.New(cron.WithSeconds())

	// 订阅到期巡检 - 默认每天凌晨 2 点执行，默认关闭
	// 多实例部署时通过分布式锁保证同一时刻只有一个实例执行
	if bc.Subscription != nil && bc.Subscription.ExpirySweepEnabled {
		spec := bc.Subscription.ExpirySweepCron
		if spec == "" {
			spec = "0 0 2 * * *"
		}
		_, err = cronScheduler.AddFunc(spec, func() {
			log.Println("[CRON] Starting subscription expiry sweep...")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			mutex := app.rs.NewMutex("assistance:cron:subscription_expiry_sweep",
				redsync.WithExpiry(constants.ExpirySweepLockExpiration),
				redsync.WithTries(constants.ExpirySweepLockRetries),
			)
			if err := mutex.LockContext(ctx); err != nil {
				log.Printf("[CRON] Expiry sweep skipped, lock held elsewhere: %v", err)
				return
			}
			defer func() {
				if _, err := mutex.UnlockContext(ctx); err != nil {
					log.Printf("[CRON] Failed to release sweep lock: %v", err)
				}
			}()

			count, uids, err := app.subscriptionUsecase.MarkPastDueSubscriptions(ctx)
			if err != nil {
				log.Printf("[CRON] Error marking past due subscriptions: %v", err)
			} else {
				log.Printf("[CRON] Marked %d subscriptions as past_due: %v", count, uids)
				log.Println("[CRON] Finished subscription expiry sweep")
			}
		})
		if err != nil {
			log.Printf("Failed to add expiry sweep job: %v", err)
		}
	} else {
		log.Println("Subscription expiry sweep is disabled")
	}

	// 启动定时任务
	cronScheduler.Start()
	log.Println("Cron jobs started successfully")

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")

	// 停止定时任务
	ctx := cronScheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Cron jobs stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Cron jobs forced to stop after timeout")
	}
}
