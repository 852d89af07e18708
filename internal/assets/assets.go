package assets

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed Dockerfile.tmpl
var DockerfileContent embed.FS

var dockerfileTmpl = template.Must(template.ParseFS(DockerfileContent, "Dockerfile.tmpl"))

// RenderDockerfile fills the embedded test Dockerfile for image:tag.
func RenderDockerfile(image, tag string) (string, error) {
	var b strings.Builder
	data := struct{ Image, Tag string }{Image: image, Tag: tag}
	if err := dockerfileTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render Dockerfile for %s:%s: %w", image, tag, err)
	}
	return b.String(), nil
}
