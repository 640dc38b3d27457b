package prescriptions

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/medbasket/medbasket-backend/pkg/cloudinary"
	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// MaxFiles bounds a single prescription upload.
const MaxFiles = 5

// File is one uploaded prescription image.
type File struct {
	Name   string
	Reader io.Reader
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	ID        uuid.UUID `json:"uuid"`
	OrderCode string    `json:"order_code"`
	URLs      []string  `json:"files"`
}

type templateNotifier interface {
	PrescriptionUploaded(ctx context.Context, mobile string) error
}

// Service stores prescription images on the image host and records the
// upload. Between one and five files are accepted; a sixth file is an
// explicit error rather than silent truncation.
type Service interface {
	Upload(ctx context.Context, customerID int64, mobile string, files []File) (*UploadResult, error)
	Get(ctx context.Context, customerID int64, id uuid.UUID) (*models.Prescription, error)
	List(ctx context.Context, customerID int64) ([]models.Prescription, error)
}

type service struct {
	repo     Repository
	uploader cloudinary.Uploader
	notifier templateNotifier
	logger   *logger.Logger
	now      func() time.Time
}

// NewService constructs the prescription upload service.
func NewService(repo Repository, uploader cloudinary.Uploader, notifier templateNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("prescriptions repository required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("image uploader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		uploader: uploader,
		notifier: notifier,
		logger:   logg,
		now:      time.Now,
	}, nil
}

func (s *service) Upload(ctx context.Context, customerID int64, mobile string, files []File) (*UploadResult, error) {
	if customerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer not resolved")
	}
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image is required")
	}
	if len(files) > MaxFiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d images are allowed", MaxFiles)).
			WithDetails(map[string]any{"received": len(files), "max": MaxFiles})
	}

	id := uuid.New()
	orderCode := fmt.Sprintf("PRC-%d", s.now().Unix())

	urls := make([]string, 0, len(files))
	for i, file := range files {
		result, err := s.uploader.Upload(ctx, file.Reader, fmt.Sprintf("%s-%d", id, i+1))
		if err != nil {
			return nil, err
		}
		urls = append(urls, result.URL)
	}

	prescription := &models.Prescription{
		ID:         id,
		CustomerID: customerID,
		OrderCode:  orderCode,
		ImageURLs:  urls,
		Status:     enums.PrescriptionStatusPending,
	}
	if _, err := s.repo.Create(ctx, prescription); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store prescription")
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"prescription_id": id.String(),
		"images":          len(urls),
	})
	s.logger.Info(logCtx, "prescription uploaded")

	if mobile != "" {
		// best effort, failure never fails the upload
		_ = s.notifier.PrescriptionUploaded(ctx, mobile)
	}

	return &UploadResult{
		ID:        id,
		OrderCode: orderCode,
		URLs:      urls,
	}, nil
}

func (s *service) Get(ctx context.Context, customerID int64, id uuid.UUID) (*models.Prescription, error) {
	prescription, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
	}
	if prescription.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
	}
	return prescription, nil
}

func (s *service) List(ctx context.Context, customerID int64) ([]models.Prescription, error) {
	prescriptions, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prescriptions")
	}
	return prescriptions, nil
}
