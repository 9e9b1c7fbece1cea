package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calldraft/calldraft/internal/cli/formatter"
	"github.com/calldraft/calldraft/internal/export"
	"github.com/calldraft/calldraft/internal/server"
	apperrors "github.com/calldraft/calldraft/pkg/errors"
)

func newServeCmd(app *App) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				app.Config.App.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.New(app.Config, app.Service, app.Info, app.DB.Health).Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口，覆盖配置")
	return cmd
}

func newRecommendCmd(app *App) *cobra.Command {
	var date, shift string
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "按四个分组列出某个班次的候选住院医",
		RunE: func(cmd *cobra.Command, args []string) error {
			buckets, err := app.Service.Recommendations(date, shift)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBuckets(buckets))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "日期 YYYY-MM-DD")
	cmd.Flags().StringVar(&shift, "shift", "", "班次名称")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("shift")
	return cmd
}

func newDemandCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "demand",
		Short: "列出待填班次，可排人数少的在前",
		RunE: func(cmd *cobra.Command, args []string) error {
			demand, err := app.Service.Demand()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDemand(demand))
			return nil
		},
	}
}

func newAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign NAME DATE SHIFT",
		Short: "将班次分配给住院医",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.Assign(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", args[1], args[2], args[0])
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear DATE SHIFT",
		Short: "清空一个班次",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.Clear(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s 已清空\n", args[0], args[1])
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "清空全部分配",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return apperrors.InvalidInput("yes", "重置会清空全部分配，请加 --yes 确认")
			}
			if err := app.Service.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "已清空全部分配")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "确认重置")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前分配",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Service.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  rev %d  住院医 %d  节假日 %d\n\n",
				formatter.StyleBold.Render(app.Service.Draft()), app.Service.Revision(),
				len(st.Residents), len(st.Holidays))
			fmt.Fprint(out, formatter.FormatAssignments(st.Ledger.Entries()))
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "工作量与覆盖率统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, formatter.Section("覆盖率", formatter.FormatCoverage(app.Service.Coverage())))
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.Section("工作量", formatter.FormatWorkload(app.Service.Workload())))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出 Excel 工作簿",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = app.Service.Draft() + ".xlsx"
			}
			f, err := os.Create(path)
			if err != nil {
				return apperrors.Wrap(err, apperrors.CodeInternal, "无法创建导出文件")
			}
			if err := export.Write(f, app.Service.State()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导出 %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "out", "o", "", "输出路径（默认 <草案名>.xlsx）")
	return cmd
}

func newConstraintsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "constraints",
		Short: "列出已注册的约束",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatConstraints(app.Service.Registry().GetAll()))
			return nil
		},
	}
}

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "查看分配事件日志",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Service.Events(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEvents(events))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多显示条数，0 表示全部")
	return cmd
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "显示版本信息",
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "calldraft %s (%s, %s)\n", app.Info.Version, app.Info.GitCommit, app.Info.BuildTime)
			return nil
		},
	}
}
