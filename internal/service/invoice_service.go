package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	"github.com/coprogest/coprogest-backend/internal/domain"
	"github.com/coprogest/coprogest-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxScanSize    = 5 * 1024 * 1024 // 5MB
	MinScanWidth   = 50
	MinScanHeight  = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85
)

var (
	ErrScanTooLarge                = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidScanFormat           = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrScanTooSmall                = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidScanData             = errors.New("invalid image data")
	ErrInvoiceStorageNotConfigured = errors.New("invoice storage not configured")
)

// AllowedScanExtensions maps extensions to content types
var AllowedScanExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// InvoiceService stores scanned invoice documents attached to charges
type InvoiceService struct {
	chargeRepo domain.ChargeRepository
	documents  storage.DocumentRepository
}

// NewInvoiceService creates a new InvoiceService. documents may be nil,
// in which case uploads are reported as not configured.
func NewInvoiceService(chargeRepo domain.ChargeRepository, documents storage.DocumentRepository) *InvoiceService {
	return &InvoiceService{chargeRepo: chargeRepo, documents: documents}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured).
func (s *InvoiceService) IsEnabled() bool {
	return s != nil && s.documents != nil
}

// validateAndDecode validates the scan and returns the decoded image
func (s *InvoiceService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxScanSize {
		return nil, ErrScanTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedScanExtensions[ext]; !ok {
		return nil, ErrInvalidScanFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidScanData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinScanWidth || bounds.Dy() < MinScanHeight {
		return nil, ErrScanTooSmall
	}

	return img, nil
}

// AttachInvoice processes an invoice scan (resize variants), uploads it and
// links it to the charge. Replaces any previously attached scan.
func (s *InvoiceService) AttachInvoice(ctx context.Context, condominiumID, chargeID int32, data []byte, filename string) (*domain.Charge, error) {
	if !s.IsEnabled() {
		return nil, ErrInvoiceStorageNotConfigured
	}

	charge, err := s.chargeRepo.GetByID(condominiumID, chargeID)
	if err != nil {
		return nil, err
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	scanID := uuid.New().String()
	basePath := fmt.Sprintf("condos/%d/invoices/%d/%s", condominiumID, chargeID, scanID)

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // 0 means keep original size
	}

	uploaded := make([]string, 0, len(variants))

	for _, variant := range variants {
		var processed image.Image
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			processed = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		} else {
			processed = img
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, processed, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}

		objectPath := basePath + "_" + variant.name + ".jpg"
		if _, err := s.documents.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			s.cleanupVariants(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}
		uploaded = append(uploaded, objectPath)
	}

	oldPath := charge.InvoicePath

	if err := s.chargeRepo.SetInvoicePath(condominiumID, chargeID, &basePath); err != nil {
		s.cleanupVariants(ctx, uploaded)
		return nil, err
	}

	if oldPath != nil && *oldPath != basePath {
		s.deleteVariants(ctx, *oldPath)
	}

	charge.InvoicePath = &basePath
	return charge, nil
}

// DetachInvoice removes the invoice scan from a charge and deletes the objects
func (s *InvoiceService) DetachInvoice(ctx context.Context, condominiumID, chargeID int32) error {
	if !s.IsEnabled() {
		return ErrInvoiceStorageNotConfigured
	}

	charge, err := s.chargeRepo.GetByID(condominiumID, chargeID)
	if err != nil {
		return err
	}
	if charge.InvoicePath == nil {
		return nil
	}

	if err := s.chargeRepo.SetInvoicePath(condominiumID, chargeID, nil); err != nil {
		return err
	}

	s.deleteVariants(ctx, *charge.InvoicePath)
	return nil
}

// GetInvoiceURL returns a short-lived presigned URL for the requested
// variant ("thumb", "display" or "original")
func (s *InvoiceService) GetInvoiceURL(ctx context.Context, condominiumID, chargeID int32, variant string) (string, error) {
	if !s.IsEnabled() {
		return "", ErrInvoiceStorageNotConfigured
	}

	charge, err := s.chargeRepo.GetByID(condominiumID, chargeID)
	if err != nil {
		return "", err
	}
	if charge.InvoicePath == nil {
		return "", domain.ErrNotFound
	}

	switch variant {
	case "thumb", "display", "original":
	default:
		variant = "display"
	}

	return s.documents.GeneratePresignedURL(ctx, *charge.InvoicePath+"_"+variant+".jpg", PresignedURLExpiry)
}

// cleanupVariants removes variants uploaded during a failed operation
func (s *InvoiceService) cleanupVariants(ctx context.Context, objectPaths []string) {
	for _, path := range objectPaths {
		_ = s.documents.Delete(ctx, path)
	}
}

// deleteVariants deletes all variants under a base path, best effort
func (s *InvoiceService) deleteVariants(ctx context.Context, basePath string) {
	for _, variant := range []string{"thumb", "display", "original"} {
		_ = s.documents.Delete(ctx, basePath+"_"+variant+".jpg")
	}
}

// GetScanContentType returns the content type for a file extension
func GetScanContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ct, ok := AllowedScanExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
