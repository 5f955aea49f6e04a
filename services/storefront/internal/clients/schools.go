package clients

import (
	"context"
	"net/url"

	"github.com/hey-granth/StandardStitch/pkg/apiclient"
	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type SchoolClient struct{ api *apiclient.Client }

func (c *SchoolClient) List(ctx context.Context) ([]domain.School, error) {
	var out []domain.School
	if err := c.api.Get(ctx, "/schools/schools/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SchoolClient) Get(ctx context.Context, id string) (*domain.School, error) {
	var out domain.School
	if err := c.api.Get(ctx, "/schools/schools/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type CatalogClient struct{ api *apiclient.Client }

// ForSchool lists a school's uniform specs, each with the listings selling it.
func (c *CatalogClient) ForSchool(ctx context.Context, schoolID string) ([]domain.UniformSpec, error) {
	var out []domain.UniformSpec
	if err := c.api.Get(ctx, "/catalog/schools/"+url.PathEscape(schoolID)+"/catalog", &out); err != nil {
		return nil, err
	}
	return out, nil
}
