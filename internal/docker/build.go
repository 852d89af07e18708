// internal/docker/build.go
//
// Composes the docker CLI command lines used to smoke-test an image.
// The command lines are plain strings handed to a shell by the caller,
// so registry-supplied names are interpolated as-is. ValidateRef exists
// to flag names that would not survive that.
package docker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// BuildCommand returns `docker build -t <ref> -f <dockerfile> <context>`.
func BuildCommand(opts *BuildOptions) (string, error) {
	if opts == nil {
		return "", errors.New("BuildCommand: opts is nil")
	}
	df := strings.TrimSpace(opts.Dockerfile)
	if df == "" {
		return "", errors.New("BuildCommand: Dockerfile must be set")
	}
	ref := strings.TrimSpace(opts.Ref)
	if ref == "" {
		return "", errors.New("BuildCommand: Ref must be set")
	}
	ctxPath := strings.TrimSpace(opts.ContextPath)
	if ctxPath == "" {
		ctxPath = filepath.Dir(df)
	}

	return fmt.Sprintf("%s build -t %s -f %s %s", binary(opts.Binary), ref, df, ctxPath), nil
}

// RunCommand returns `docker run --rm <ref>`.
func RunCommand(bin, ref string) string {
	return fmt.Sprintf("%s run --rm %s", binary(bin), ref)
}

func binary(bin string) string {
	return first(strings.TrimSpace(bin), "docker")
}
