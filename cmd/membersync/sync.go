package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/les-ev/membersync/internal/campai"
	"github.com/les-ev/membersync/internal/config"
	"github.com/les-ev/membersync/internal/engine"
	"github.com/les-ev/membersync/internal/gate"
	"github.com/les-ev/membersync/internal/keycloak"
	"github.com/les-ev/membersync/internal/logger"
	"github.com/les-ev/membersync/internal/model"
	"github.com/les-ev/membersync/internal/uptime"
	syncerrors "github.com/les-ev/membersync/pkg/errors"
)

type syncOptions struct {
	ConfigPath string
	AutoApply  bool
	CacheTo    string
	CacheFrom  string
	Verbose    bool
	JSON       bool
}

var syncCmdRunner = runSync

func newSyncCmd(root *rootFlags) *cobra.Command {
	opts := syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the membership snapshot into the identity service",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.JSON = root.json
			return syncCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	cmd.Flags().BoolVar(&opts.AutoApply, "auto-apply", false, "Apply the plan without asking for confirmation")
	cmd.Flags().StringVar(&opts.CacheTo, "cache-to", "", "Write the member snapshot to this file after loading")
	cmd.Flags().StringVar(&opts.CacheFrom, "cache-from", "", "Read the member snapshot from this file instead of the API")

	return cmd
}

func runSync(opts syncOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, JSON: opts.JSON})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timeout := cfg.Sync.CallTimeout()
	reporter := uptime.New(cfg.Uptime.PushURL, timeout, log)
	source := campai.New(cfg.Campai, timeout, log)
	target := keycloak.New(cfg.Keycloak, timeout, log)

	members, users, err := loadSnapshots(ctx, opts, cfg, source, target)
	if err != nil {
		reportDown(ctx, reporter, log, err.Error())
		return err
	}

	if opts.CacheTo != "" {
		if err := campai.WriteSnapshot(opts.CacheTo, members); err != nil {
			log.Error(err, "failed to write snapshot cache")
		}
	}

	plan, classErrs := engine.ComputePlan(members, users, engine.Policy{
		DefaultGroup: cfg.Sync.DefaultGroup,
	})
	for _, cerr := range classErrs {
		log.Error(cerr, "record excluded from plan")
	}

	gateOpts := gate.Options{
		AutoApply:   opts.AutoApply || cfg.Sync.AutoApply,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if err := gate.Confirm(plan, gateOpts); err != nil {
		reportDown(ctx, reporter, log, "run aborted before applying changes")
		return err
	}

	result := engine.NewApplier(target, timeout, log).Apply(ctx, plan)
	printOutcomes(result)

	if ctx.Err() != nil {
		reportDown(ctx, reporter, log, "run cancelled: "+result.Summary())
		return fmt.Errorf("sync cancelled: %s", result.Summary())
	}
	if !result.Succeeded() {
		reportDown(ctx, reporter, log, result.Summary())
		return fmt.Errorf("sync finished with failures: %s", result.Summary())
	}

	log.WithFields(map[string]any{
		"applied": result.Applied,
		"skipped": result.Skipped,
	}).Info("sync complete")
	if err := reporter.Up(ctx, result.Summary()); err != nil {
		log.Error(err, "health push failed")
	}
	return nil
}

// loadSnapshots fetches both snapshots concurrently. They are independent
// and read-only, so the only coordination needed is waiting for both.
func loadSnapshots(
	ctx context.Context,
	opts syncOptions,
	cfg *config.Config,
	source *campai.Client,
	target *keycloak.Client,
) ([]model.Member, map[string]model.TargetUser, error) {
	var (
		wg        sync.WaitGroup
		members   []model.Member
		users     map[string]model.TargetUser
		memberErr error
		userErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if opts.CacheFrom != "" {
			members, memberErr = campai.ReadSnapshot(opts.CacheFrom)
		} else {
			members, memberErr = source.Members(ctx, cfg.Sync.Organisation)
		}
	}()
	go func() {
		defer wg.Done()
		users, userErr = target.Users(ctx)
	}()
	wg.Wait()

	if memberErr != nil {
		return nil, nil, syncerrors.NewSnapshotError("campai", memberErr)
	}
	if userErr != nil {
		return nil, nil, syncerrors.NewSnapshotError("keycloak", userErr)
	}
	return members, users, nil
}

func printOutcomes(result *model.RunResult) {
	for _, res := range result.Results {
		fmt.Printf("  %-16s %s\n", res.Status(), res.Operation.Describe())
	}
	fmt.Println(result.Summary())
}

// reportDown pushes a failure heartbeat when monitoring is configured. A
// cancelled run context must not stop the push, so it falls back to a
// fresh context.
func reportDown(ctx context.Context, reporter *uptime.Client, log *logger.Logger, msg string) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := reporter.Down(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err, "health push failed")
	}
}
