package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
	"github.com/gruzdev-dev/codex-recipes/core/ports"
)

type ImageUploadResult struct {
	UploadURL string        `json:"uploadUrl"`
	ImgURL    string        `json:"imgUrl"`
	Recipe    domain.Record `json:"recipe"`
}

// ImageService hands out presigned upload URLs for recipe images.
type ImageService struct {
	recipes  *domain.Entity
	store    ports.EntityStore
	provider ports.ImageProvider
	ttl      time.Duration
}

func NewImageService(schema *domain.Schema, store ports.EntityStore, provider ports.ImageProvider, ttl time.Duration) (*ImageService, error) {
	recipes, err := schema.Entity(domain.Recipes)
	if err != nil {
		return nil, err
	}
	return &ImageService{
		recipes:  recipes,
		store:    store,
		provider: provider,
		ttl:      ttl,
	}, nil
}

func (s *ImageService) RequestUpload(ctx context.Context, recipeID, contentType string, id *domain.Identity) (*ImageUploadResult, error) {
	if id == nil || id.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if s.provider == nil {
		return nil, fmt.Errorf("%w: image storage is not configured", domain.ErrUnavailable)
	}
	if recipeID == "" {
		return nil, fmt.Errorf("%w: recipe id is required", domain.ErrValidation)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: content type must be an image type", domain.ErrValidation)
	}

	if _, err := s.store.FindByID(ctx, s.recipes, recipeID); err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("recipes/%s/%s", recipeID, uuid.New().String())
	uploadURL, err := s.provider.GenerateUploadURL(ctx, objectPath, contentType, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate upload URL: %v", domain.ErrInternal, err)
	}

	imgURL := s.provider.ObjectURL(objectPath)
	recipe, err := s.store.Update(ctx, s.recipes, recipeID, domain.Record{"imgUrl": imgURL})
	if err != nil {
		return nil, err
	}

	return &ImageUploadResult{
		UploadURL: uploadURL,
		ImgURL:    imgURL,
		Recipe:    recipe,
	}, nil
}
