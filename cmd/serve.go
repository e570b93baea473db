package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"composer/internal/client"
	"composer/internal/config"
	"composer/internal/controller"
	"composer/internal/credentials"
	"composer/internal/registry"
	"composer/internal/resolver"
	"composer/pkg/logging"
)

var (
	serveConfigPath string
	serveNamespace  string
	serveWorkers    int
	serveDebug      bool
	serveJSONLog    bool
)

// serveCmd starts the reconciliation control plane: the change detector,
// the work queue and the playbook and actor reconcilers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the composer control plane",
	Long: `Starts the composer controller. It watches Playbook and Actor
resources, resolves partner dependencies, orchestrates image builds and
keeps workloads deployed.

Configuration is read from config.yaml in the directory given by
--config; a missing file falls back to built-in defaults. Registry credentials listed in the
configuration seed the in-memory credential store.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stdout, serveJSONLog)

	configPath := serveConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveNamespace != "" {
		cfg.Controller.Namespace = serveNamespace
	}
	if serveWorkers > 0 {
		cfg.Controller.WorkerCount = serveWorkers
	}

	restConfig, err := controller.GetRestConfig()
	if err != nil {
		return fmt.Errorf("failed to get Kubernetes config: %w", err)
	}

	composerClient, err := client.NewComposerClientWithConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create composer client: %w", err)
	}

	store := credentials.NewStore(seedCredentials(cfg.Credentials)...)
	recorder := controller.NewClientRecorder(composerClient)
	resync := controller.ReconcileResult{RequeueAfter: cfg.Controller.ResyncInterval.Std()}

	manager := controller.NewManager(controller.ManagerConfig{
		Namespace:        cfg.Controller.Namespace,
		WorkerCount:      cfg.Controller.WorkerCount,
		ErrorBackoff:     cfg.Controller.ErrorBackoff.Std(),
		MaxBackoff:       cfg.Controller.MaxBackoff.Std(),
		ResyncInterval:   cfg.Controller.ResyncInterval.Std(),
		ReconcileTimeout: cfg.Controller.ReconcileTimeout.Std(),
	}, restConfig)

	playbookReconciler := controller.NewPlaybookReconciler(controller.PlaybookReconcilerOptions{
		Client:      composerClient,
		Credentials: store,
		Fetcher:     resolver.NewHTTPFetcher(),
		Registry:    cfg.Registry,
		Recorder:    recorder,
		Resync:      resync,
	})
	actorReconciler := controller.NewActorReconciler(controller.ActorReconcilerOptions{
		Client:      composerClient,
		Credentials: store,
		Prober:      registry.NewProber(),
		Registry:    cfg.Registry,
		Recorder:    recorder,
		Resync:      resync,
	})

	if err := manager.RegisterReconciler(playbookReconciler); err != nil {
		return err
	}
	if err := manager.RegisterReconciler(actorReconciler); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}

	logging.Info("Serve", "Composer control plane is running")
	<-ctx.Done()

	return manager.Stop()
}

// seedCredentials converts configured credential seeds into store
// credentials.
func seedCredentials(seeds []config.CredentialSeed) []credentials.Credential {
	out := make([]credentials.Credential, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, credentials.Basic(credentials.Kind(seed.Kind), seed.Host, seed.Username, seed.Password))
	}
	return out
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Directory containing config.yaml (defaults to ~/.config/composer)")
	serveCmd.Flags().StringVar(&serveNamespace, "namespace", "", "Restrict watches to a single namespace")
	serveCmd.Flags().IntVar(&serveWorkers, "workers", 0, "Number of reconciliation workers")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveJSONLog, "json-log", false, "Emit logs as JSON")
}
