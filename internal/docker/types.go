// internal/docker/types.go
package docker

type BuildOptions struct {
	Binary      string // default: "docker"
	Dockerfile  string // generated Dockerfile path
	ContextPath string // default: directory holding Dockerfile
	Ref         string // local image name, e.g. "test/team/app:1.0"
}
