package docker

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"
)

// ---- Naming ----

// '+' and '@' never occur in a valid repository path or tag, so both
// mappings below are reversible: distinct pairs never share a name.

// DockerfileName is the file name for a generated Dockerfile. Same pair, same name.
func DockerfileName(image, tag string) string {
	return fmt.Sprintf("Dockerfile.%s@%s", strings.ReplaceAll(image, "/", "+"), tag)
}

// BuildTag is the local image the test build is tagged with: test/<image>:<tag>.
func BuildTag(image, tag string) string {
	return fmt.Sprintf("test/%s:%s", image, tag)
}

// ---- Validation ----

// ValidateRef reports whether image:tag and its derived build tag are well-formed
// references. Anything that fails here is still passed to the shell verbatim;
// callers only use the error to warn.
func ValidateRef(image, tag string) error {
	src := image + ":" + tag
	named, err := reference.ParseNormalizedNamed(src)
	if err != nil {
		return fmt.Errorf("invalid image reference %q: %w", src, err)
	}
	if _, ok := named.(reference.Tagged); !ok {
		return fmt.Errorf("image reference %q has no tag", src)
	}

	bt := BuildTag(image, tag)
	if _, err := reference.ParseNormalizedNamed(bt); err != nil {
		return fmt.Errorf("invalid build tag %q: %w", bt, err)
	}
	return nil
}

// first non-empty
func first(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
