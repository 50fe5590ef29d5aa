package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/media"
	"github.com/medtrack/medtrack-api/internal/repository/ports"
)

type MedicineServiceConfig struct {
	Bucket            string
	PublicBaseURL     string
	MaxImageBytes     int64
	AllowedMIMETypes  []string
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

type MedicineImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type MedicineCreateInput struct {
	Name        string
	Stock       int
	Description *string
	Image       *MedicineImageUpload
}

type MedicineUpdateInput struct {
	Name        *string
	Stock       *int
	Description *string
	Image       *MedicineImageUpload
}

var defaultAllowedMIMEs = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
}

const defaultMaxImageBytes = int64(10 * 1024 * 1024)

// MedicineService manages the formulary: CRUD plus the image pipeline
// (validate, shrink, store) in front of the object store.
type MedicineService struct {
	medicines ports.MedicineRepository
	storage   ports.ObjectStorage

	bucket            string
	publicBase        string
	maxImageBytes     int64
	allowedMIMEs      map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
}

func NewMedicineService(medicines ports.MedicineRepository, storage ports.ObjectStorage, cfg MedicineServiceConfig) *MedicineService {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	allowed := cfg.AllowedMIMETypes
	if len(allowed) == 0 {
		allowed = defaultAllowedMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}

	return &MedicineService{
		medicines:         medicines,
		storage:           storage,
		bucket:            strings.TrimSpace(cfg.Bucket),
		publicBase:        strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxImageBytes:     maxBytes,
		allowedMIMEs:      mimeSet,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
	}
}

func (s *MedicineService) List(ctx context.Context) ([]domain.Medicine, error) {
	medicines, err := s.medicines.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range medicines {
		medicines[i].ImageURL = s.resolveImageURL(medicines[i].Image)
	}
	return medicines, nil
}

func (s *MedicineService) Get(ctx context.Context, id int64) (*domain.Medicine, error) {
	medicine, err := s.medicines.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}
	medicine.ImageURL = s.resolveImageURL(medicine.Image)
	return medicine, nil
}

func (s *MedicineService) Create(ctx context.Context, input MedicineCreateInput) (*domain.Medicine, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Stock < 0 {
		return nil, ErrMissingField
	}

	var image *string
	if input.Image != nil {
		object, err := s.storeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		image = &object
	}

	medicine, err := s.medicines.Create(ctx, name, input.Stock, input.Description, image)
	if err != nil {
		if image != nil {
			s.removeImage(ctx, *image)
		}
		return nil, err
	}
	medicine.ImageURL = s.resolveImageURL(medicine.Image)
	return medicine, nil
}

// Update applies a partial update. A new image replaces the previous object;
// the old one is removed best-effort once the row is updated.
func (s *MedicineService) Update(ctx context.Context, id int64, input MedicineUpdateInput) (*domain.Medicine, error) {
	current, err := s.medicines.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	patch := domain.MedicinePatch{
		Name:        input.Name,
		Stock:       input.Stock,
		Description: input.Description,
	}
	if input.Image != nil {
		object, err := s.storeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		patch.Image = &object
	}

	updated, err := s.medicines.Update(ctx, id, patch)
	if err != nil {
		if patch.Image != nil {
			s.removeImage(ctx, *patch.Image)
		}
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	if patch.Image != nil && current.Image != nil && *current.Image != *patch.Image {
		s.removeImage(ctx, *current.Image)
	}

	updated.ImageURL = s.resolveImageURL(updated.Image)
	return updated, nil
}

// Delete removes the medicine and, best-effort, its stored image.
func (s *MedicineService) Delete(ctx context.Context, id int64) (*domain.Medicine, error) {
	medicine, err := s.medicines.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	if err := s.medicines.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, ErrMedicineNotFound
		}
		return nil, err
	}

	if medicine.Image != nil {
		s.removeImage(ctx, *medicine.Image)
	}
	return medicine, nil
}

// ImageURL resolves a stored object name to its public URL; empty names and
// an unconfigured public base both yield nil.
func (s *MedicineService) ImageURL(object string) *string {
	if object == "" {
		return nil
	}
	return s.resolveImageURL(&object)
}

func (s *MedicineService) resolveImageURL(object *string) *string {
	if object == nil || *object == "" || s.publicBase == "" {
		return nil
	}
	url := fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, *object)
	return &url
}

func (s *MedicineService) storeImage(ctx context.Context, upload *MedicineImageUpload) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("%w: image uploads are not configured", ErrMissingField)
	}
	if upload.Size <= 0 {
		return "", fmt.Errorf("%w: image is empty", ErrMissingField)
	}
	if s.maxImageBytes > 0 && upload.Size > s.maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds size limit (%d bytes)", ErrMissingField, s.maxImageBytes)
	}
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if _, ok := s.allowedMIMEs[contentType]; !ok {
		return "", fmt.Errorf("%w: unsupported content type %s", ErrMissingField, upload.ContentType)
	}

	reader := upload.Reader
	size := upload.Size
	outType := contentType
	ext := strings.ToLower(filepath.Ext(upload.FileName))

	if s.imageProcessor != nil {
		processed, err := s.imageProcessor.Process(ctx, media.Upload{
			Reader:      upload.Reader,
			Size:        upload.Size,
			FileName:    upload.FileName,
			ContentType: contentType,
		}, s.imageMaxDimension)
		if err != nil {
			return "", err
		}
		reader = bytes.NewReader(processed.Bytes)
		size = int64(len(processed.Bytes))
		outType = processed.ContentType
		ext = processed.Ext
	}

	object := uuid.NewString() + ext
	if _, err := s.storage.Upload(ctx, s.bucket, object, outType, reader, size); err != nil {
		return "", err
	}
	return object, nil
}

// removeImage never propagates a failure; a missing object in the media
// store is an operational nuisance, not a request error.
func (s *MedicineService) removeImage(ctx context.Context, object string) {
	if object == "" || s.storage == nil {
		return
	}
	if err := s.storage.Remove(ctx, s.bucket, object); err != nil {
		log.Printf("could not remove medicine image %s: %v", object, err)
	}
}
