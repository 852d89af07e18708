package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultRepoPath  = "docker-local"
	DefaultWorkDir   = "test_images"
	DefaultDockerBin = "docker"
)

// Usage is printed when required credentials are missing.
const Usage = "Please set ARTIFACTORY_URL, ARTIFACTORY_USERNAME, and ARTIFACTORY_PASSWORD environment variables"

// ErrMissingCredentials means at least one required ARTIFACTORY_* variable is unset.
var ErrMissingCredentials = errors.New("missing Artifactory credentials")

// Context captures everything a test run needs, read from the environment.
type Context struct {
	ArtifactoryURL string
	Username       string
	Password       string
	RepoPath       string

	WorkDir       string
	DockerBin     string
	DryRun        bool
	ClientTimeout time.Duration // zero: no timeout
}

// LoadContext constructs a Context from ARTIFACTORY_* environment variables.
// It returns ErrMissingCredentials (and no Context) if URL, username or password is empty.
func LoadContext() (Context, error) {
	url := strings.TrimSpace(os.Getenv("ARTIFACTORY_URL"))
	user := os.Getenv("ARTIFACTORY_USERNAME")
	pass := os.Getenv("ARTIFACTORY_PASSWORD")

	var missing []string
	if url == "" {
		missing = append(missing, "ARTIFACTORY_URL")
	}
	if user == "" {
		missing = append(missing, "ARTIFACTORY_USERNAME")
	}
	if pass == "" {
		missing = append(missing, "ARTIFACTORY_PASSWORD")
	}
	if len(missing) > 0 {
		return Context{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	ctx := Context{
		ArtifactoryURL: strings.TrimRight(url, "/"),
		Username:       user,
		Password:       pass,
		RepoPath:       firstNonEmpty(os.Getenv("ARTIFACTORY_REPO_PATH"), DefaultRepoPath),
		WorkDir:        firstNonEmpty(os.Getenv("ARTIFACTORY_TEST_DIR"), DefaultWorkDir),
		DockerBin:      firstNonEmpty(os.Getenv("ARTIFACTORY_DOCKER_BIN"), DefaultDockerBin),
		DryRun:         os.Getenv("ARTIFACTORY_DRY_RUN") == "true",
	}

	// Optional timeout override
	if timeoutStr := os.Getenv("ARTIFACTORY_CLIENT_TIMEOUT_SECONDS"); timeoutStr != "" {
		if seconds, err := strconv.Atoi(timeoutStr); err == nil && seconds > 0 {
			ctx.ClientTimeout = time.Duration(seconds) * time.Second
		}
	}

	return ctx, nil
}

// PrintSummary emits a short, scannable report of the run settings.
// The password is never printed.
func (c Context) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "Artifactory Test Summary")
	fmt.Fprintln(w, "------------------------")
	fmt.Fprintf(w, "  Artifactory URL       : %s\n", formatOrNone(c.ArtifactoryURL))
	fmt.Fprintf(w, "  Username              : %s\n", formatOrNone(c.Username))
	fmt.Fprintf(w, "  Password              : %s\n", redact(c.Password))
	fmt.Fprintf(w, "  Repository Path       : %s\n", formatOrNone(c.RepoPath))
	fmt.Fprintf(w, "  Dockerfile Directory  : %s\n", formatOrNone(c.WorkDir))
	fmt.Fprintf(w, "  Docker Binary         : %s\n", formatOrNone(c.DockerBin))
	if c.ClientTimeout > 0 {
		fmt.Fprintf(w, "  HTTP Timeout          : %s\n", c.ClientTimeout)
	}
	fmt.Fprintf(w, "  Dry Run Mode          : %s\n", emoji(c.DryRun))
	fmt.Fprintln(w)
}
