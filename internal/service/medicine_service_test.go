package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/medtrack/medtrack-api/internal/domain"
	"github.com/medtrack/medtrack-api/internal/media"
)

type fakeStorage struct {
	uploads []struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}
	uploadErr error

	removed   []string
	removeErr error
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	f.uploads = append(f.uploads, struct {
		bucket      string
		objectName  string
		contentType string
		size        int64
	}{bucket: bucket, objectName: objectName, contentType: contentType, size: size})
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return objectName, nil
}

func (f *fakeStorage) Remove(ctx context.Context, bucket, objectName string) error {
	f.removed = append(f.removed, objectName)
	return f.removeErr
}

type fakeProcessor struct {
	result *media.Result
	err    error
}

func (f *fakeProcessor) Process(ctx context.Context, upload media.Upload, maxDimension int) (*media.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	data, _ := io.ReadAll(upload.Reader)
	return &media.Result{Bytes: data, ContentType: upload.ContentType, Ext: ".jpg"}, nil
}

func newMedicineServiceForTests(medicines *fakeMedicineRepo, storage *fakeStorage) *MedicineService {
	return NewMedicineService(medicines, storage, MedicineServiceConfig{
		Bucket:         "medtrack-medicines",
		PublicBaseURL:  "https://storage.example.com",
		ImageProcessor: &fakeProcessor{},
	})
}

func jpegUpload(payload string) *MedicineImageUpload {
	return &MedicineImageUpload{
		Reader:      strings.NewReader(payload),
		Size:        int64(len(payload)),
		FileName:    "photo.jpg",
		ContentType: "image/jpeg",
	}
}

func TestCreateMedicineWithImage(t *testing.T) {
	medicines := &fakeMedicineRepo{}
	storage := &fakeStorage{}
	svc := newMedicineServiceForTests(medicines, storage)

	medicine, err := svc.Create(context.Background(), MedicineCreateInput{
		Name:  "Paracetamol 500 mg",
		Stock: 20,
		Image: jpegUpload("fake image bytes"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(storage.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(storage.uploads))
	}
	upload := storage.uploads[0]
	if upload.bucket != "medtrack-medicines" {
		t.Fatalf("unexpected bucket %q", upload.bucket)
	}
	if !strings.HasSuffix(upload.objectName, ".jpg") {
		t.Fatalf("expected generated object name with extension, got %q", upload.objectName)
	}
	if medicine == nil || medicine.Name != "Paracetamol 500 mg" {
		t.Fatalf("unexpected medicine: %+v", medicine)
	}
}

func TestCreateMedicineValidation(t *testing.T) {
	svc := newMedicineServiceForTests(&fakeMedicineRepo{}, &fakeStorage{})

	if _, err := svc.Create(context.Background(), MedicineCreateInput{Name: "  ", Stock: 1}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for blank name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), MedicineCreateInput{Name: "Paracetamol", Stock: -1}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for negative stock, got %v", err)
	}
}

func TestCreateMedicineRejectsBadImage(t *testing.T) {
	storage := &fakeStorage{}
	svc := newMedicineServiceForTests(&fakeMedicineRepo{}, storage)

	t.Run("empty file", func(t *testing.T) {
		upload := &MedicineImageUpload{Reader: strings.NewReader(""), Size: 0, FileName: "x.jpg", ContentType: "image/jpeg"}
		if _, err := svc.Create(context.Background(), MedicineCreateInput{Name: "A", Stock: 1, Image: upload}); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		upload := &MedicineImageUpload{Reader: strings.NewReader("%PDF"), Size: 4, FileName: "x.pdf", ContentType: "application/pdf"}
		if _, err := svc.Create(context.Background(), MedicineCreateInput{Name: "A", Stock: 1, Image: upload}); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("oversized", func(t *testing.T) {
		limited := NewMedicineService(&fakeMedicineRepo{}, storage, MedicineServiceConfig{
			Bucket:        "b",
			MaxImageBytes: 4,
		})
		upload := jpegUpload("more than four bytes")
		if _, err := limited.Create(context.Background(), MedicineCreateInput{Name: "A", Stock: 1, Image: upload}); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	if len(storage.uploads) != 0 {
		t.Fatalf("expected no uploads for rejected images, got %d", len(storage.uploads))
	}
}

func TestUpdateMedicineReplacesImage(t *testing.T) {
	oldObject := "old-object.jpg"
	medicines := &fakeMedicineRepo{
		findByIDResult: &domain.Medicine{ID: 2, Name: "Paracetamol", Stock: 20, Image: &oldObject},
	}
	storage := &fakeStorage{}
	svc := newMedicineServiceForTests(medicines, storage)

	newObject := "replaced"
	medicines.updateResult = &domain.Medicine{ID: 2, Name: "Paracetamol", Stock: 20, Image: &newObject}

	if _, err := svc.Update(context.Background(), 2, MedicineUpdateInput{Image: jpegUpload("newer image")}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(storage.uploads) != 1 {
		t.Fatalf("expected new image uploaded, got %d uploads", len(storage.uploads))
	}
	if len(storage.removed) != 1 || storage.removed[0] != oldObject {
		t.Fatalf("expected old object removed, got %v", storage.removed)
	}
}

func TestUpdateMedicineNotFound(t *testing.T) {
	medicines := &fakeMedicineRepo{findByIDErr: sql.ErrNoRows}
	svc := newMedicineServiceForTests(medicines, &fakeStorage{})

	if _, err := svc.Update(context.Background(), 99, MedicineUpdateInput{}); !errors.Is(err, ErrMedicineNotFound) {
		t.Fatalf("expected ErrMedicineNotFound, got %v", err)
	}
}

func TestDeleteMedicineRemovesImage(t *testing.T) {
	object := "stored.jpg"
	medicines := &fakeMedicineRepo{
		findByIDResult: &domain.Medicine{ID: 2, Name: "Paracetamol", Image: &object},
	}
	storage := &fakeStorage{}
	svc := newMedicineServiceForTests(medicines, storage)

	if _, err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(storage.removed) != 1 || storage.removed[0] != object {
		t.Fatalf("expected stored image removed, got %v", storage.removed)
	}
}

func TestDeleteMedicineSurvivesStorageFailure(t *testing.T) {
	object := "stored.jpg"
	medicines := &fakeMedicineRepo{
		findByIDResult: &domain.Medicine{ID: 2, Name: "Paracetamol", Image: &object},
	}
	storage := &fakeStorage{removeErr: errors.New("connection refused")}
	svc := newMedicineServiceForTests(medicines, storage)

	if _, err := svc.Delete(context.Background(), 2); err != nil {
		t.Fatalf("storage failure must not fail the delete, got %v", err)
	}
}

func TestImageURLResolution(t *testing.T) {
	svc := newMedicineServiceForTests(&fakeMedicineRepo{}, &fakeStorage{})

	url := svc.ImageURL("abc.jpg")
	if url == nil || *url != "https://storage.example.com/medtrack-medicines/abc.jpg" {
		t.Fatalf("unexpected url: %v", url)
	}
	if svc.ImageURL("") != nil {
		t.Fatal("empty object must resolve to nil")
	}

	unconfigured := NewMedicineService(&fakeMedicineRepo{}, &fakeStorage{}, MedicineServiceConfig{Bucket: "b"})
	if unconfigured.ImageURL("abc.jpg") != nil {
		t.Fatal("missing public base must resolve to nil")
	}
}
