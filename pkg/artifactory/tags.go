package artifactory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type TagsService interface {
	ListTags(ctx context.Context, repoPath, image string) ([]string, error)
}

type tagsService struct {
	client *Client
}

// ListTags retrieves all tags for image. The image name is used as a path
// (e.g. "team/app") and is not escaped.
func (s *tagsService) ListTags(ctx context.Context, repoPath, image string) ([]string, error) {
	respData, err := s.client.DoRequest(ctx, http.MethodGet, dockerV2Path(repoPath, image+"/tags/list"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags for %s: %w", image, err)
	}

	var list TagListResponse
	if err := json.Unmarshal(respData, &list); err != nil {
		return nil, fmt.Errorf("failed to parse tag list for %s: %w", image, err)
	}
	if list.Tags == nil {
		return []string{}, nil
	}
	return list.Tags, nil
}
