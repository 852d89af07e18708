// Package tester walks an Artifactory Docker repository and smoke-tests every
// image:tag it finds by building a one-line Dockerfile on top of it and running
// the result. Nothing here returns an error to the caller: failures are printed
// and the walk moves on to the next tag.
package tester

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"artest/internal/assets"
	"artest/internal/docker"
	"artest/internal/executil"
	"artest/pkg/artifactory"
)

// Registry is the subset of the Artifactory API the tester needs.
type Registry interface {
	ListRepositories(ctx context.Context, repoPath string) ([]string, error)
	ListTags(ctx context.Context, repoPath, image string) ([]string, error)
}

// NewRegistry adapts an artifactory.Client to Registry.
func NewRegistry(c *artifactory.Client) Registry {
	return clientRegistry{c: c}
}

type clientRegistry struct {
	c *artifactory.Client
}

func (r clientRegistry) ListRepositories(ctx context.Context, repoPath string) ([]string, error) {
	return r.c.Repositories.ListRepositories(ctx, repoPath)
}

func (r clientRegistry) ListTags(ctx context.Context, repoPath, image string) ([]string, error) {
	return r.c.Tags.ListTags(ctx, repoPath, image)
}

type Options struct {
	WorkDir   string      // where Dockerfiles are written; default "test_images"
	DockerBin string      // default "docker"
	Out       io.Writer   // result lines; default os.Stdout
	Logger    *zap.Logger // default zap.NewNop()
}

type Tester struct {
	registry  Registry
	runner    executil.Runner
	workDir   string
	dockerBin string
	out       io.Writer
	logger    *zap.Logger
}

func New(registry Registry, runner executil.Runner, opts Options) *Tester {
	t := &Tester{
		registry:  registry,
		runner:    runner,
		workDir:   opts.WorkDir,
		dockerBin: opts.DockerBin,
		out:       opts.Out,
		logger:    opts.Logger,
	}
	if t.workDir == "" {
		t.workDir = "test_images"
	}
	if t.dockerBin == "" {
		t.dockerBin = "docker"
	}
	if t.out == nil {
		t.out = os.Stdout
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// Result is the outcome for one image:tag.
type Result struct {
	Image  string
	Tag    string
	Passed bool
}

// Summary tallies a TestImages run.
type Summary struct {
	Passed  int
	Failed  int
	Results []Result
}

func (s Summary) Total() int {
	return s.Passed + s.Failed
}

// ListImages returns the image names in repoPath, or an empty slice on any failure.
func (t *Tester) ListImages(ctx context.Context, repoPath string) []string {
	images, err := t.registry.ListRepositories(ctx, repoPath)
	if err != nil {
		if status := artifactory.StatusCode(err); status != 0 {
			fmt.Fprintf(t.out, "Error listing images: %d\n", status)
		} else {
			fmt.Fprintf(t.out, "Error listing images: %v\n", err)
		}
		t.logger.Error("list images failed", zap.String("repo", repoPath), zap.Error(err))
		return []string{}
	}
	t.logger.Debug("listed images", zap.String("repo", repoPath), zap.Int("count", len(images)))
	return images
}

// GetImageTags returns the tags of image, or an empty slice on any failure.
func (t *Tester) GetImageTags(ctx context.Context, repoPath, image string) []string {
	tags, err := t.registry.ListTags(ctx, repoPath, image)
	if err != nil {
		if status := artifactory.StatusCode(err); status != 0 {
			fmt.Fprintf(t.out, "Error getting tags for %s: %d\n", image, status)
		} else {
			fmt.Fprintf(t.out, "Error getting tags for %s: %v\n", image, err)
		}
		t.logger.Error("list tags failed", zap.String("repo", repoPath), zap.String("image", image), zap.Error(err))
		return []string{}
	}
	t.logger.Debug("listed tags", zap.String("image", image), zap.Int("count", len(tags)))
	return tags
}

// CreateDockerfile writes the test Dockerfile for image:tag into the work
// directory and returns its path. Calling it twice for the same pair rewrites
// the same file with the same content.
func (t *Tester) CreateDockerfile(image, tag string) (string, error) {
	if err := os.MkdirAll(t.workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir %s: %w", t.workDir, err)
	}
	content, err := assets.RenderDockerfile(image, tag)
	if err != nil {
		return "", err
	}
	path := filepath.Join(t.workDir, docker.DockerfileName(image, tag))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// BuildAndRun builds dockerfilePath into a local test image and runs it.
// The run is only attempted if the build succeeded.
func (t *Tester) BuildAndRun(ctx context.Context, dockerfilePath, image, tag string) bool {
	log := t.logger.With(zap.String("image", image), zap.String("tag", tag))

	if err := docker.ValidateRef(image, tag); err != nil {
		// The name still goes to the shell unchanged.
		log.Warn("registry name is not a valid image reference", zap.Error(err))
	}

	ref := docker.BuildTag(image, tag)
	buildCmd, err := docker.BuildCommand(&docker.BuildOptions{
		Binary:     t.dockerBin,
		Dockerfile: dockerfilePath,
		Ref:        ref,
	})
	if err != nil {
		fmt.Fprintf(t.out, "Error testing %s:%s: %v\n", image, tag, err)
		return false
	}

	log.Debug("building test image", zap.String("command", buildCmd))
	if _, ok := t.runDocker(ctx, buildCmd); !ok {
		return false
	}

	runCmd := docker.RunCommand(t.dockerBin, ref)
	log.Debug("running test container", zap.String("command", runCmd))
	output, ok := t.runDocker(ctx, runCmd)
	if !ok {
		return false
	}
	fmt.Fprintf(t.out, "Container logs for %s:%s:\n%s\n", image, tag, output)
	return true
}

// runDocker runs one docker command line, printing its output on failure.
func (t *Tester) runDocker(ctx context.Context, command string) (string, bool) {
	output, err := t.runner.Run(ctx, command)
	if err != nil {
		fmt.Fprintf(t.out, "Error running docker command: %s\n", output)
		t.logger.Error("docker command failed", zap.String("command", command), zap.Error(err))
		return output, false
	}
	return output, true
}

// TestImages tests every tag of every image in repoPath, one at a time.
// A failing tag never stops the walk; only a canceled ctx does.
func (t *Tester) TestImages(ctx context.Context, repoPath string) Summary {
	var sum Summary
	for _, image := range t.ListImages(ctx, repoPath) {
		if t.interrupted(ctx) {
			return sum
		}
		for _, tag := range t.GetImageTags(ctx, repoPath, image) {
			if t.interrupted(ctx) {
				return sum
			}
			passed := t.testOne(ctx, image, tag)
			sum.Results = append(sum.Results, Result{Image: image, Tag: tag, Passed: passed})
			if passed {
				sum.Passed++
			} else {
				sum.Failed++
			}
		}
	}
	return sum
}

func (t *Tester) interrupted(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		t.logger.Warn("test run interrupted", zap.Error(err))
		return true
	}
	return false
}

func (t *Tester) testOne(ctx context.Context, image, tag string) bool {
	fmt.Fprintf(t.out, "\nTesting %s:%s\n", image, tag)

	passed := false
	path, err := t.CreateDockerfile(image, tag)
	if err != nil {
		fmt.Fprintf(t.out, "Error testing %s:%s: %v\n", image, tag, err)
	} else {
		passed = t.BuildAndRun(ctx, path, image, tag)
	}

	status := "failed"
	if passed {
		status = "successful"
	}
	fmt.Fprintf(t.out, "Test %s for %s:%s\n", status, image, tag)
	return passed
}
