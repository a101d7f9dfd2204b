package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const documentFolder = "domestiq_verification"

type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// UploadSigner signs direct browser uploads.
type UploadSigner interface {
	Sign(folder string, at time.Time) (UploadSignature, error)
}

type CloudinarySigner struct {
	cld    *cloudinary.Cloudinary
	secret string
}

func NewCloudinarySigner(cloudinaryURL string) (*CloudinarySigner, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	parsed, err := url.Parse(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("parse cloudinary url: %w", err)
	}
	secret, _ := parsed.User.Password()
	return &CloudinarySigner{cld: cld, secret: secret}, nil
}

func (s *CloudinarySigner) Sign(folder string, at time.Time) (UploadSignature, error) {
	params, err := api.StructToParams(uploader.UploadParams{Folder: folder})
	if err != nil {
		return UploadSignature{}, err
	}
	params.Set("timestamp", strconv.FormatInt(at.Unix(), 10))
	signature, err := api.SignParameters(params, s.secret)
	if err != nil {
		return UploadSignature{}, err
	}
	return UploadSignature{
		Signature: signature,
		Timestamp: at.Unix(),
		APIKey:    s.cld.Config.Cloud.APIKey,
		CloudName: s.cld.Config.Cloud.CloudName,
		Folder:    folder,
	}, nil
}

type VerificationService struct {
	documents DocumentRepository
	workers   WorkerRepository
	notifier  Notifier
	signer    UploadSigner
	now       func() time.Time
}

func NewVerificationService(documents DocumentRepository, workers WorkerRepository, notifier Notifier, signer UploadSigner) *VerificationService {
	return &VerificationService{documents: documents, workers: workers, notifier: notifier, signer: signer, now: time.Now}
}

func validDocType(t string) bool {
	return t == models.DocIDDocument || t == models.DocProofOfAddress || t == models.DocCertificate
}

func (s *VerificationService) UploadSignature(workerID uuid.UUID) (UploadSignature, error) {
	if s.signer == nil {
		return UploadSignature{}, ErrUploadsDisabled
	}
	return s.signer.Sign(documentFolder+"/"+workerID.String(), s.now())
}

func (s *VerificationService) Submit(ctx context.Context, workerID uuid.UUID, docType, fileURL string) (*models.VerificationDocument, error) {
	if !validDocType(docType) {
		return nil, ErrInvalidDocumentType
	}
	if _, err := s.workers.Get(ctx, workerID); err != nil {
		return nil, err
	}
	doc := models.VerificationDocument{
		ID:       uuid.New(),
		WorkerID: workerID,
		DocType:  docType,
		URL:      strings.TrimSpace(fileURL),
		Status:   models.DocumentPending,
	}
	if err := s.documents.Create(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *VerificationService) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.VerificationDocument, error) {
	return s.documents.ListForWorker(ctx, workerID)
}

func (s *VerificationService) Pending(ctx context.Context) ([]models.VerificationDocument, error) {
	return s.documents.ListByStatus(ctx, models.DocumentPending)
}

// Review decides a pending document. Approving an identity document verifies the worker.
func (s *VerificationService) Review(ctx context.Context, adminID, docID uuid.UUID, approve bool, notes *string) (*models.VerificationDocument, error) {
	doc, err := s.documents.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	status := models.DocumentRejected
	kind := models.NotifVerificationRejected
	title := "Document rejected"
	if approve {
		status = models.DocumentApproved
		kind = models.NotifVerificationApproved
		title = "Document approved"
	}
	if err := s.documents.Review(ctx, docID, status, adminID, notes, s.now()); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	doc.Status = status
	doc.ReviewedBy = &adminID

	if approve && doc.DocType == models.DocIDDocument {
		if err := s.workers.SetVerified(ctx, doc.WorkerID, true); err != nil {
			log.WithError(err).WithField("worker_id", doc.WorkerID).Error("failed to mark worker verified")
		}
	}

	body := fmt.Sprintf("Your %s was %s.", strings.ReplaceAll(doc.DocType, "_", " "), status)
	if notes != nil && *notes != "" {
		body += " " + *notes
	}
	data, _ := json.Marshal(map[string]any{"document_id": doc.ID, "status": status})
	if err := s.notifier.CreateWithEvent(ctx, []models.Notification{{
		UserID: doc.WorkerID,
		Type:   kind,
		Title:  title,
		Body:   body,
		Data:   datatypes.JSON(data),
	}}); err != nil {
		log.WithError(err).WithField("document_id", doc.ID).Error("failed to notify worker about document review")
	}
	return doc, nil
}
