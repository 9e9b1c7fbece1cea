// Package cli 提供 calldraft 命令行入口
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/calldraft/calldraft/internal/config"
	"github.com/calldraft/calldraft/internal/database"
	"github.com/calldraft/calldraft/internal/ingest"
	"github.com/calldraft/calldraft/internal/repository"
	"github.com/calldraft/calldraft/internal/server"
	"github.com/calldraft/calldraft/internal/service"
	"github.com/calldraft/calldraft/pkg/engine"
	"github.com/calldraft/calldraft/pkg/holiday"
	"github.com/calldraft/calldraft/pkg/logger"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint"
	"github.com/calldraft/calldraft/pkg/scheduler/constraint/builtin"
)

// App 命令共享的运行时依赖，在 PersistentPreRunE 中装配
type App struct {
	Info    server.BuildInfo
	Config  *config.Config
	Service *service.DraftService
	DB      *database.DB

	configPath string
	draft      string
	dbPath     string
	noIngest   bool
}

const skipBootstrap = "skip-bootstrap"

// NewRootCmd 创建根命令并注册全部子命令
func NewRootCmd(info server.BuildInfo) *cobra.Command {
	return newRootCmd(&App{Info: info})
}

func newRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "calldraft",
		Short:         "住院医值班选班助手",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipBootstrap] != "" {
				return nil
			}
			return app.bootstrap(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&app.configPath, "config", "c", "", "YAML 配置文件（默认读取 CALLDRAFT_CONFIG）")
	flags.StringVar(&app.draft, "draft", "", "草案名称，覆盖配置")
	flags.StringVar(&app.dbPath, "db", "", "SQLite 数据库路径，覆盖配置")
	flags.BoolVar(&app.noIngest, "no-ingest", false, "只恢复已保存的分配，不读取 CSV")

	root.AddCommand(
		newServeCmd(app),
		newRecommendCmd(app),
		newDemandCmd(app),
		newAssignCmd(app),
		newClearCmd(app),
		newResetCmd(app),
		newShowCmd(app),
		newStatsCmd(app),
		newExportCmd(app),
		newConstraintsCmd(app),
		newEventsCmd(app),
		newVersionCmd(app),
	)
	return root
}

// Execute 运行根命令；命令失败时 PersistentPostRunE 不会执行，这里兜底关闭数据库
func Execute(ctx context.Context, info server.BuildInfo, args []string, out io.Writer) error {
	app := &App{Info: info}
	defer app.close()

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}

// bootstrap 加载配置，打开数据库，导入 CSV，并恢复已保存的分配
func (a *App) bootstrap(ctx context.Context) (err error) {
	var cfg *config.Config
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.draft != "" {
		cfg.Draft.Name = a.draft
	}
	if a.dbPath != "" {
		cfg.Database.Driver = database.DriverSQLite
		cfg.Database.Path = a.dbPath
	}
	a.Config = cfg
	logger.Init(cfg.Log)

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return err
	}
	a.DB = db
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	registry := constraint.NewRegistry()
	builtin.RegisterDefaultConstraints(registry, cfg.Constraints.Params())

	var actions []engine.Action
	if !a.noIngest {
		calendar, err := holiday.NewCalendar(cfg.Holidays.Rules, cfg.Holidays.Dates)
		if err != nil {
			return err
		}
		actions, err = ingest.NewLoader(calendar, cfg.Draft.BlockLengthDays).LoadFiles(cfg.Draft)
		if err != nil {
			return err
		}
	}

	a.Service = service.New(service.Options{
		Draft:     cfg.Draft.Name,
		Registry:  registry,
		Snapshots: repository.NewSnapshotRepository(db),
		Events:    repository.NewEventRepository(db),
	})
	return a.Service.Bootstrap(ctx, actions)
}

func (a *App) close() error {
	if a.DB == nil {
		return nil
	}
	err := a.DB.Close()
	a.DB = nil
	return err
}
