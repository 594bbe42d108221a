package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nfvri/ris-simulator/pkg/config"
	"github.com/nfvri/ris-simulator/pkg/manager"
	"github.com/nfvri/ris-simulator/pkg/report"
	"github.com/nfvri/ris-simulator/pkg/utils"
)

var (
	configPath    string // KEY=VALUE override file
	logLevel      string // Log verbosity level
	outputFormat  string // Report format
	plotPath      string // Optional PNG of per-user rates
	metricsPath   string // Optional Prometheus textfile
	redisAddr     string // Optional report store
	redisUsername string
	redisDB       int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ris-simulator",
	Short: "Uplink simulator for reconfigurable intelligent surfaces",
}

// runCmd executes the simulation using the layered configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the RIS association and TDMA simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		mgr, err := manager.NewManager(&manager.Config{
			Sim:           *cfg,
			RedisAddr:     redisAddr,
			RedisUsername: redisUsername,
			RedisPassword: utils.GetEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		})
		if err != nil {
			logrus.Fatalf("Failed to create manager: %v", err)
		}

		rep, err := mgr.Run(context.Background())
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if err := rep.Write(os.Stdout, outputFormat); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
		if plotPath != "" {
			if err := rep.PlotRates(plotPath); err != nil {
				logrus.Errorf("Failed to plot rates: %v", err)
			} else {
				logrus.Infof("Rate plot written to %s", plotPath)
			}
		}
		if metricsPath != "" {
			if err := rep.WriteMetrics(metricsPath); err != nil {
				logrus.Errorf("Failed to export metrics: %v", err)
			} else {
				logrus.Infof("Metrics written to %s", metricsPath)
			}
		}
	},
}

// defaultsCmd prints the defaults in override file format
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as KEY=VALUE lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.WriteDefaults(cmd.OutOrStdout())
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "KEY=VALUE configuration override file")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", report.FormatText, "Report format (text, json, yaml)")
	runCmd.Flags().StringVar(&plotPath, "plot", "", "Write a bar chart of per-user rates to this PNG file")
	runCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	runCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Persist the report to this redis server (host:port)")
	runCmd.Flags().StringVar(&redisUsername, "redis-username", "", "Redis username; the password is read from REDIS_PASSWORD")
	runCmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database")

	// Simulation parameters; flags override the file and the environment
	config.RegisterFlags(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(defaultsCmd)
}
