package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/team3-dev/auto-shift/backend/internal/config"
	"github.com/team3-dev/auto-shift/backend/internal/lock"
	"github.com/team3-dev/auto-shift/backend/internal/planner"
	"github.com/team3-dev/auto-shift/backend/internal/repository"
	"github.com/team3-dev/auto-shift/backend/internal/scheduler"
	"github.com/team3-dev/auto-shift/backend/internal/seed"
	"github.com/team3-dev/auto-shift/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var locationID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入演示数据, 2: 插入随机员工, 3: 为所有地点生成下一个周期的排班)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.Int64Var(&locationID, "location", 0, "插入随机员工的地点 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if err := seed.SeedDemoData(repo, cfg.Seed.User.Password, time.Now().UTC()); err != nil {
			slog.Error("无法插入演示数据", slog.String("error", err.Error()))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}
		location, err := repo.GetLocationByID(locationID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的地点不存在", slog.Int64("location", locationID))
			default:
				slog.Error("无法获取地点", slog.String("error", err.Error()))
			}
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			employee := utils.GenerateRandomEmployee(location.ID, location.CycleLength)
			if err := repo.CreateEmployee(employee); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 3:
		if err := runAll(cfg, repo); err != nil {
			slog.Error("批量排班失败", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}

func runAll(cfg *config.Config, repo *repository.Repository) error {
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		return fmt.Errorf("无法连接到 rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("无法建立通道: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(planner.EmailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("无法声明队列: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer rdb.Close()

	p := planner.New(
		&scheduler.Parameters{
			TimeLimit: cfg.SolverTimeLimit(),
			NodeLimit: cfg.Solver.NodeLimit,
		},
		repo,
		lock.New(rdb, cfg.SolverLockTTL()),
		planner.NewMailReporter(ch, cfg.Email.ReportRecipient, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second),
		cfg.Solver.Parallelism,
	)

	locations, err := repo.GetAllLocations()
	if err != nil {
		return err
	}
	ids := make([]int64, len(locations))
	for i, l := range locations {
		ids[i] = l.ID
	}

	results, err := p.RunAll(context.Background(), ids)
	for _, res := range results {
		slog.Info("地点排班完成",
			"location", res.Report.LocationName,
			"status", res.Report.Status,
			"assignments", res.Report.AssignmentsCount,
			"duration", res.Report.Duration,
		)
	}
	return err
}
