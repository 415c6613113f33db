package sweep

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/orris-inc/passage/internal/infrastructure/cache"
	"github.com/orris-inc/passage/internal/infrastructure/scheduler"
	"github.com/orris-inc/passage/internal/interfaces/cli/bootstrap"
	"github.com/orris-inc/passage/internal/interfaces/container"
)

var (
	env        string
	configPath string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [auto-renew|due-alerts|device-cleanup]...",
		Short: "Run periodic sweeps once",
		Long: `Run the named sweeps immediately, or all of them when none is named.
Each sweep takes the same Redis lock as the server's scheduler, so a sweep
already running elsewhere is reported and skipped.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(bootstrap.Options{
		Env:              env,
		ConfigPath:       configPath,
		WithRedis:        true,
		InlineFamilySync: true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	selected, err := selectSweeps(rt.Container.Sweeps(), args)
	if err != nil {
		return err
	}

	manager, err := scheduler.NewSchedulerManager(cache.NewSweepLock(rt.Redis), rt.Logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed []string
	for _, s := range selected {
		count, err := manager.RunOnce(cmd.Context(), s.Name, s.Interval, s.Job)
		switch {
		case errors.Is(err, scheduler.ErrSweepBusy):
			fmt.Fprintf(out, "%s: skipped, running elsewhere\n", s.Name)
		case err != nil:
			fmt.Fprintf(out, "%s: failed: %v\n", s.Name, err)
			failed = append(failed, s.Name)
		default:
			fmt.Fprintf(out, "%s: %d processed\n", s.Name, count)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("sweeps failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// selectSweeps keeps the named sweeps in the order given, or all when names is empty.
func selectSweeps(all []container.Sweep, names []string) ([]container.Sweep, error) {
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]container.Sweep, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	selected := make([]container.Sweep, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown sweep %q", name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
