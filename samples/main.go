package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/joho/godotenv"

	"artest/internal/runtime"
	"artest/pkg/artifactory"
)

// Lists what artest would test, without touching docker.
func main() {
	_ = godotenv.Load()

	rc, err := runtime.LoadContext()
	if err != nil {
		log.Fatalf("[artifactory] %v", err)
	}

	client, err := artifactory.NewClient(rc.ArtifactoryURL, authn.Basic{Username: rc.Username, Password: rc.Password})
	if err != nil {
		log.Fatalf("[artifactory] init failed: %v", err)
	}

	ctx := context.Background()
	images, err := client.Repositories.ListRepositories(ctx, rc.RepoPath)
	if err != nil {
		log.Fatalf("[artifactory] list repositories failed: %v", err)
	}

	for _, image := range images {
		tags, err := client.Tags.ListTags(ctx, rc.RepoPath, image)
		if err != nil {
			fmt.Printf("%s: (error) %v\n", image, err)
			continue
		}
		fmt.Printf("%s: %v\n", image, tags)
	}
}
