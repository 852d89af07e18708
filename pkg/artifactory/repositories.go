package artifactory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RepositoriesService lists image repositories in an Artifactory Docker repo.
type RepositoriesService interface {
	ListRepositories(ctx context.Context, repoPath string) ([]string, error)
}

type repositoriesService struct {
	client *Client
}

// ListRepositories returns the catalog of image names under repoPath.
// A missing "repositories" field yields an empty slice.
func (s *repositoriesService) ListRepositories(ctx context.Context, repoPath string) ([]string, error) {
	respData, err := s.client.DoRequest(ctx, http.MethodGet, dockerV2Path(repoPath, "_catalog"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	var catalog CatalogResponse
	if err := json.Unmarshal(respData, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if catalog.Repositories == nil {
		return []string{}, nil
	}
	return catalog.Repositories, nil
}
