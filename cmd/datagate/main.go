package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/datagate/internal/app"
	"github.com/dropDatabas3/datagate/internal/config"
	"github.com/dropDatabas3/datagate/internal/http/server"
	healthsvc "github.com/dropDatabas3/datagate/internal/http/services/health"
	"github.com/dropDatabas3/datagate/internal/ingest"
	"github.com/dropDatabas3/datagate/internal/observability/logger"
	"github.com/dropDatabas3/datagate/internal/warehouse"
	"github.com/dropDatabas3/datagate/internal/wordsamples"
)

var version = "dev"

func main() {
	// .env es opcional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// cli guarda el estado compartido entre comandos.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "datagate",
		Short:         "Carga de CSV, consultas y dashboard con control de acceso sobre un warehouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath, "archivo de configuración YAML")

	root.AddCommand(
		c.serveCmd(),
		c.ingestCmd(),
		c.wordsamplesCmd(),
		c.statusCmd(),
		c.usersCmd(),
	)
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP del dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr != "" {
				c.cfg.Server.Addr = addr
			}

			ctr, err := app.Open(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer ctr.Close()

			a, err := app.New(ctr, app.Options{Version: version})
			if err != nil {
				return err
			}
			logger.L().Info("datagate ready",
				logger.String("addr", c.cfg.Server.Addr),
				logger.Driver(c.cfg.Warehouse.Driver),
				logger.Dataset(c.cfg.Warehouse.Dataset),
				logger.Bool("demo_mode", ctr.Warehouse == nil),
			)
			return server.Run(ctx, server.Config{
				Addr:            c.cfg.Server.Addr,
				ShutdownTimeout: c.cfg.ShutdownTimeout(),
			}, a.Handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "dirección de escucha (pisa server.addr)")
	return cmd
}

// openWarehouse exige un warehouse real: ingest y wordsamples no tienen modo demo.
func (c *cli) openWarehouse(ctx context.Context) (warehouse.Client, error) {
	wh, err := app.OpenWarehouse(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, errors.New("this command needs a warehouse driver (warehouse.driver is none)")
	}
	return wh, nil
}

func (c *cli) ingestCmd() *cobra.Command {
	var job ingest.Job
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Crea el dataset (si falta) y carga un CSV local en una tabla",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if job.Dataset == "" {
				job.Dataset = c.cfg.Warehouse.Dataset
			}
			if job.Location == "" {
				job.Location = c.cfg.Warehouse.Location
			}

			wh, err := c.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer wh.Close()

			rep, err := ingest.Run(ctx, wh, job)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created dataset %s\n", rep.Dataset)
			fmt.Fprintf(out, "Loaded %d rows into %s.\n", rep.Rows, rep.Qualified())
			fmt.Fprintf(out, "Dataset: %s\n", rep.Dataset)
			fmt.Fprintf(out, "Table: %s\n", rep.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&job.CSVPath, "csv", "", "archivo CSV a cargar (con header)")
	cmd.Flags().StringVar(&job.Dataset, "dataset", "", "dataset destino (default warehouse.dataset)")
	cmd.Flags().StringVar(&job.Table, "table", "rawc_table", "tabla destino")
	cmd.Flags().StringVar(&job.Location, "location", "", "location del dataset (default warehouse.location)")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

func (c *cli) wordsamplesCmd() *cobra.Command {
	var dataset, table string
	cmd := &cobra.Command{
		Use:   "wordsamples",
		Short: "Muestra hasta tres oraciones por palabra",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dataset == "" {
				dataset = c.cfg.Warehouse.Dataset
			}
			wh, err := c.openWarehouse(ctx)
			if err != nil {
				return err
			}
			defer wh.Close()

			rows, err := wordsamples.Run(ctx, wh, dataset, table)
			if err != nil {
				return err
			}
			wordsamples.Render(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset (default warehouse.dataset)")
	cmd.Flags().StringVar(&table, "table", "rawc_table", "tabla con las columnas word y sentence1")
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Prueba la conexión con el warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			wh, err := app.OpenWarehouse(ctx, c.cfg)
			if err != nil {
				logger.L().Warn("warehouse client unavailable", logger.Err(err))
				wh = nil
			}
			if wh != nil {
				defer wh.Close()
			}
			st := healthsvc.NewServices(healthsvc.Deps{
				Warehouse: wh,
				Driver:    c.cfg.Warehouse.Driver,
				Dataset:   c.cfg.Warehouse.Dataset,
			}).Health.Status(ctx)

			fmt.Fprintln(cmd.OutOrStdout(), st.Message)
			if !st.Connected {
				return errors.New("warehouse not connected")
			}
			return nil
		},
	}
}
