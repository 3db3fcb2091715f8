package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/db"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
)

// CatalogService reads the treatment catalog.
type CatalogService struct {
	store db.Store
}

func NewCatalogService(store db.Store) *CatalogService {
	return &CatalogService{store: store}
}

// List returns every service. With nameOnly only _id and name are loaded.
func (s *CatalogService) List(ctx context.Context, nameOnly bool) ([]models.Service, error) {
	var projection bson.M
	if nameOnly {
		projection = bson.M{"name": 1}
	}

	services := []models.Service{}
	if err := s.store.Find(ctx, db.CollServices, bson.M{}, projection, &services); err != nil {
		return nil, err
	}
	return services, nil
}
