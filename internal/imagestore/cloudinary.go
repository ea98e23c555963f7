// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package imagestore

import (
	"context"
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/samber/oops"

	"github.com/Hananem/Jobify-backend/internal/identity"
)

// cloudinaryAPI is the part of uploader.API the store calls.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// Cloudinary stores images in a Cloudinary folder.
type Cloudinary struct {
	api    cloudinaryAPI
	folder string
	logger *slog.Logger
}

// NewCloudinary builds a store from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string, logger *slog.Logger) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, oops.Code("IMAGESTORE_INIT_FAILED").With("provider", "cloudinary").Wrap(err)
	}
	return newCloudinary(&cld.Upload, folder, logger), nil
}

func newCloudinary(api cloudinaryAPI, folder string, logger *slog.Logger) *Cloudinary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloudinary{api: api, folder: folder, logger: logger}
}

// Upload sends the file at path to Cloudinary.
func (c *Cloudinary) Upload(ctx context.Context, path string) (identity.Image, error) {
	res, err := c.api.Upload(ctx, path, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return identity.Image{}, oops.Code("IMAGE_UPLOAD_FAILED").With("provider", "cloudinary").Wrap(err)
	}
	if res.Error.Message != "" {
		return identity.Image{}, oops.Code("IMAGE_UPLOAD_FAILED").
			With("provider", "cloudinary").
			Errorf("cloudinary: %s", res.Error.Message)
	}
	return identity.Image{URL: res.SecureURL, ExternalID: res.PublicID}, nil
}

// Remove destroys the image with the given public ID. A missing image is not an error.
func (c *Cloudinary) Remove(ctx context.Context, externalID string) error {
	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: externalID})
	if err != nil {
		return oops.Code("IMAGE_REMOVE_FAILED").
			With("provider", "cloudinary").
			With("public_id", externalID).
			Wrap(err)
	}
	if res.Error.Message != "" {
		return oops.Code("IMAGE_REMOVE_FAILED").
			With("provider", "cloudinary").
			With("public_id", externalID).
			Errorf("cloudinary: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		c.logger.DebugContext(ctx, "image already absent", "public_id", externalID)
	}
	return nil
}

var _ identity.ImageStore = (*Cloudinary)(nil)
