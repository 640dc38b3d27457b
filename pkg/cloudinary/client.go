package cloudinary

import (
	"context"
	"errors"
	"io"
	"strings"

	cldsdk "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/medbasket/medbasket-backend/pkg/config"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// UploadResult is the hosted image handle stored alongside a prescription.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Uploader is the surface the prescription service depends on.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, name string) (*UploadResult, error)
}

// Client hosts prescription images on Cloudinary.
type Client struct {
	sdk    *cldsdk.Cloudinary
	folder string
	logger *logger.Logger
}

// NewClient initializes the Cloudinary wrapper.
func NewClient(cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("cloudinary logger is required")
	}
	if strings.TrimSpace(cfg.CloudName) == "" || strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, errors.New("cloudinary credentials are required")
	}

	sdk, err := cldsdk.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}

	return &Client{
		sdk:    sdk,
		folder: cfg.Folder,
		logger: logg,
	}, nil
}

// Upload stores a single image and returns its hosted URL. Unsupported file
// types are rejected by the host and surface as dependency errors.
func (c *Client) Upload(ctx context.Context, file io.Reader, name string) (*UploadResult, error) {
	resp, err := c.sdk.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}
	if resp.Error.Message != "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, resp.Error.Message)
	}

	logCtx := c.logger.WithFields(ctx, map[string]any{"public_id": resp.PublicID})
	c.logger.Info(logCtx, "image uploaded")

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}
