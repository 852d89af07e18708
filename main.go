// artest main entrypoint
//
// Smoke-tests every image:tag in an Artifactory Docker repository: for each
// one it writes a throwaway Dockerfile FROM that image, builds it with the
// local docker CLI, runs it, and prints whether that worked.
//
// Keep this file simple: load env, apply flags, print summary, walk the repo.
// Failures are printed per tag; the process exits 0 regardless.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"artest/internal/executil"
	"artest/internal/runtime"
	"artest/internal/tester"
	"artest/pkg/artifactory"
)

type options struct {
	envFile   string
	repoPath  string
	workDir   string
	dockerBin string
	dryRun    bool
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		// Flag parse errors only; cobra already printed usage.
		fmt.Fprintln(os.Stderr, err)
	}
}

func newCommand() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "artest",
		Short: "Build and run every image tag in an Artifactory Docker repository",
		Long: "artest lists images and tags through the Artifactory Docker Registry v2 API,\n" +
			"builds a minimal Dockerfile on top of each image:tag and runs it.\n\n" +
			"Required environment: ARTIFACTORY_URL, ARTIFACTORY_USERNAME, ARTIFACTORY_PASSWORD.\n" +
			"Optional: ARTIFACTORY_REPO_PATH (default docker-local), ARTIFACTORY_TEST_DIR,\n" +
			"ARTIFACTORY_DOCKER_BIN, ARTIFACTORY_DRY_RUN, ARTIFACTORY_CLIENT_TIMEOUT_SECONDS.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, _ []string) error {
			run(c.Context(), c, o)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.envFile, "env-file", ".env", "dotenv file with local overrides (ignored if missing)")
	flags.StringVar(&o.repoPath, "repo", "", "Artifactory Docker repository (overrides ARTIFACTORY_REPO_PATH)")
	flags.StringVar(&o.workDir, "work-dir", "", "directory for generated Dockerfiles (overrides ARTIFACTORY_TEST_DIR)")
	flags.StringVar(&o.dockerBin, "docker", "", "docker-compatible CLI (overrides ARTIFACTORY_DOCKER_BIN)")
	flags.BoolVar(&o.dryRun, "dry-run", false, "print docker commands instead of running them")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, o *options) {
	// Local overrides for dev runs; a missing file is fine.
	_ = godotenv.Load(o.envFile)

	logger := newLogger(o.verbose)
	defer func() { _ = logger.Sync() }()

	rc, err := runtime.LoadContext()
	if err != nil {
		if errors.Is(err, runtime.ErrMissingCredentials) {
			fmt.Fprintln(cmd.OutOrStdout(), runtime.Usage)
			logger.Debug("configuration incomplete", zap.Error(err))
			return
		}
		logger.Error("failed to load configuration", zap.Error(err))
		return
	}
	applyFlags(cmd, o, &rc)

	out := cmd.OutOrStdout()
	rc.PrintSummary(out)

	client, err := artifactory.NewClient(rc.ArtifactoryURL,
		authn.Basic{Username: rc.Username, Password: rc.Password},
		artifactory.WithTimeout(rc.ClientTimeout),
	)
	if err != nil {
		logger.Error("failed to create Artifactory client", zap.Error(err))
		return
	}

	var runner executil.Runner = executil.ShellRunner{}
	if rc.DryRun {
		runner = executil.DryRunner{Out: out}
	}

	t := tester.New(tester.NewRegistry(client), runner, tester.Options{
		WorkDir:   rc.WorkDir,
		DockerBin: rc.DockerBin,
		Out:       out,
		Logger:    logger,
	})

	logger.Info("testing images", zap.String("url", client.BaseURL()), zap.String("repo", rc.RepoPath))
	sum := t.TestImages(ctx, rc.RepoPath)
	fmt.Fprintf(out, "\n%d tested, %d passed, %d failed\n", sum.Total(), sum.Passed, sum.Failed)
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, o *options, rc *runtime.Context) {
	flags := cmd.Flags()
	if flags.Changed("repo") && o.repoPath != "" {
		rc.RepoPath = o.repoPath
	}
	if flags.Changed("work-dir") && o.workDir != "" {
		rc.WorkDir = o.workDir
	}
	if flags.Changed("docker") && o.dockerBin != "" {
		rc.DockerBin = o.dockerBin
	}
	if flags.Changed("dry-run") {
		rc.DryRun = o.dryRun
	}
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
