package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"xbuild/internal/cache"
	"xbuild/internal/config"
	"xbuild/internal/flags"
	"xbuild/internal/manifest"
	"xbuild/internal/rustc"
	"xbuild/internal/sysroot"
	"xbuild/internal/toolchain"
)

var (
	colArrow   = color.HEX("#FFEB3B")
	colSuccess = color.HEX("#1976D2")
)

var buildCmd = &cobra.Command{
	Use:          "build",
	Short:        "Build the current project against the cross-compiled sysroot",
	Long:         `Resolve compiler flags, refresh the sysroot record for the target triple, and run the external driver.`,
	RunE:         runBuild,
	SilenceUsage: true,
	Args:         cobra.ArbitraryArgs,
}

func runBuild(cmd *cobra.Command, args []string) error {
	_ = viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("manifest_path", cmd.Flags().Lookup("manifest-path"))

	verbose := viper.GetBool("verbose")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// project root: explicit manifest path wins over upward search
	root := ""
	if manifestPath := viper.GetString("manifest_path"); manifestPath != "" {
		abs, err := filepath.Abs(manifestPath)
		if err != nil {
			return fmt.Errorf("invalid manifest path: %w", err)
		}

		root = filepath.Dir(abs)
	} else {
		root, err = manifest.FindRoot(cwd)
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return err
	}

	meta, err := rustc.Version()
	if err != nil {
		return err
	}

	triple, err := resolveTriple(cfg, meta, cwd)
	if err != nil {
		return err
	}

	flagList, err := config.Flags(cfg, triple, "rustflags")
	if err != nil {
		return err
	}

	rf := flags.New(flagList)

	m, err := manifest.Load(root)
	if err != nil {
		return err
	}

	settings, err := m.Settings()
	if err != nil {
		return err
	}

	home := sysroot.Resolve(root, settings)
	key := cache.Key(rf, m.Profile(), triple, meta.CommitHash)

	if verbose {
		fmt.Printf("Driver: %s\nTarget: %s\nHost: %s\nSysroot: %s\nRustflags: %s\nKey: %s\n",
			driverName(), triple, meta.Host, home.Path(), rf, key)
	}

	if err := ensureSysroot(home, triple, key, meta, verbose); err != nil {
		return err
	}

	status, err := toolchain.NewInvoker().Run(args, triple, rf, home, meta.Host, "build", verbose)
	if err != nil {
		return err
	}

	if status != 0 {
		// the driver already reported its own failure; pass the
		// status through untouched
		os.Exit(status)
	}

	return nil
}

// resolveTriple picks the compilation target: --target flag, then
// build.target from .cargo/config, then the host triple. A target
// naming a custom spec file is canonicalized so relative-path
// differences never change the cache key.
func resolveTriple(cfg *config.Config, meta *rustc.VersionMeta, cwd string) (string, error) {
	if triple := viper.GetString("target"); triple != "" {
		if strings.HasSuffix(triple, ".json") {
			return config.CanonicalTargetSpec(cwd, triple)
		}

		return triple, nil
	}

	if cfg != nil {
		triple, err := cfg.Target()
		if err != nil {
			return "", err
		}

		if triple != "" {
			return triple, nil
		}
	}

	return meta.Host, nil
}

// ensureSysroot refreshes the triple's sysroot record when the cache
// key no longer matches. The record write happens under the triple's
// exclusive lock; readers of the sysroot are excluded until it is
// released.
//
// The record store must never be held open while waiting for the
// triple's lock: the store takes its own exclusive lock on the
// database file with a short timeout, and a wait here can last as
// long as another invocation's driver run. The store is opened once
// for the quick freshness check, closed, and reopened only inside the
// held-lock window.
func ensureSysroot(home *sysroot.Home, triple, key string, meta *rustc.VersionMeta, verbose bool) error {
	fresh, err := recordFresh(home, triple, key)
	if err != nil {
		return err
	}

	if fresh {
		if verbose {
			colArrow.Print("-> ")
			colSuccess.Printf("sysroot for %s is up to date\n", triple)
		}

		return nil
	}

	lock, err := home.LockWrite(triple)
	if err != nil {
		return err
	}
	defer lock.Release()

	store, err := cache.Open(home.Path())
	if err != nil {
		return err
	}
	defer store.Close()

	// Another invocation may have refreshed the record while this one
	// waited for the lock
	if store.Fresh(triple, key) {
		return nil
	}

	if verbose {
		colArrow.Print("-> ")
		colSuccess.Printf("refreshing sysroot record for %s\n", triple)
	}

	return store.Put(&cache.Record{
		Triple:      triple,
		Key:         key,
		RustcCommit: meta.CommitHash,
		Timestamp:   time.Now(),
	})
}

// recordFresh checks the triple's record without blocking on any
// triple lock, keeping the store open only for the lookup itself.
func recordFresh(home *sysroot.Home, triple, key string) (bool, error) {
	store, err := cache.Open(home.Path())
	if err != nil {
		return false, err
	}
	defer store.Close()

	return store.Fresh(triple, key), nil
}

func driverName() string {
	if driver := os.Getenv(toolchain.DriverEnv); driver != "" {
		return driver
	}

	return toolchain.DefaultDriver
}
