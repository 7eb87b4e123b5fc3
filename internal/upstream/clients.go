package upstream

import (
	"context"
	"net/url"

	"bookvideolink/internal/config"
	"bookvideolink/internal/models"

	"github.com/rs/zerolog"
)

const (
	APIPrisonerSearch = "prisoner_search"
	APIManageUsers    = "manage_users"
	APILocations      = "locations"

	searchPageSize = "50"
)

type PrisonerSearchClient struct {
	*Client
}

func NewPrisonerSearchClient(cfg config.APIEndpoint, logger *zerolog.Logger) *PrisonerSearchClient {
	return &PrisonerSearchClient{Client: NewClient(APIPrisonerSearch, cfg, logger)}
}

func (c *PrisonerSearchClient) GetPrisoner(ctx context.Context, user *models.User, prisonerNumber string) (*models.Prisoner, error) {
	var out models.Prisoner
	if err := c.get(ctx, user, "/prisoner/"+url.PathEscape(prisonerNumber), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search returns the first page of matches.
func (c *PrisonerSearchClient) Search(ctx context.Context, user *models.User, criteria models.PrisonerSearchCriteria) ([]models.Prisoner, error) {
	var page struct {
		Content []models.Prisoner `json:"content"`
	}
	query := url.Values{"page": {"0"}, "size": {searchPageSize}}
	if err := c.post(ctx, user, "/global-search", query, criteria, &page); err != nil {
		return nil, err
	}
	return page.Content, nil
}

type ManageUsersClient struct {
	*Client
}

func NewManageUsersClient(cfg config.APIEndpoint, logger *zerolog.Logger) *ManageUsersClient {
	return &ManageUsersClient{Client: NewClient(APIManageUsers, cfg, logger)}
}

func (c *ManageUsersClient) GetUser(ctx context.Context, user *models.User) (*models.UserDetails, error) {
	var out models.UserDetails
	if err := c.get(ctx, user, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type LocationsClient struct {
	*Client
}

func NewLocationsClient(cfg config.APIEndpoint, logger *zerolog.Logger) *LocationsClient {
	return &LocationsClient{Client: NewClient(APILocations, cfg, logger)}
}

func (c *LocationsClient) GetLocationByKey(ctx context.Context, user *models.User, key string) (*models.LocationsLocation, error) {
	var out models.LocationsLocation
	if err := c.getCached(ctx, user, "/locations/key/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
