package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/docgen"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"go.uber.org/zap"
)

// FileStore is the CDN storage used for uploads and published documents.
type FileStore interface {
	Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
}

// DocumentService renders proposals and BOM workbooks and publishes them to the CDN.
type DocumentService struct {
	surveys   repository.SiteSurveysRepository
	customers repository.CustomersRepository
	documents repository.DocumentsRepository
	cabling   *CablingService
	files     FileStore // nil when the CDN is disabled
	company   config.CompanyConfig
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewDocumentService(
	surveys repository.SiteSurveysRepository,
	customers repository.CustomersRepository,
	documents repository.DocumentsRepository,
	cabling *CablingService,
	files FileStore,
	company config.CompanyConfig,
	publisher events.Publisher,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		surveys:   surveys,
		customers: customers,
		documents: documents,
		cabling:   cabling,
		files:     files,
		company:   company,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// RenderedDocument a generated file held in memory.
type RenderedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}

func (s *DocumentService) RenderProposal(ctx context.Context, surveyID string) (*RenderedDocument, error) {
	survey, err := s.surveys.GetSiteSurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	customer, err := s.customers.GetCustomer(ctx, survey.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	tree, err := s.cabling.GetCabling(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	bom, err := s.cabling.BuildBOM(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var buf bytes.Buffer
	if _, err := docgen.WriteProposal(&buf, docgen.ProposalData{
		Company:     s.company,
		Survey:      survey,
		Customer:    customer,
		Tree:        tree,
		BOM:         bom,
		GeneratedAt: now,
	}); err != nil {
		return nil, err
	}
	return &RenderedDocument{
		FileName:    documentFileName("proposal", survey.Title, now, "docx"),
		ContentType: docgen.ContentTypeDOCX,
		Data:        buf.Bytes(),
	}, nil
}

func (s *DocumentService) RenderBOM(ctx context.Context, surveyID string) (*RenderedDocument, error) {
	bom, err := s.cabling.BuildBOM(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := docgen.WriteBOM(&buf, bom); err != nil {
		return nil, err
	}
	return &RenderedDocument{
		FileName:    documentFileName("bom", bom.SurveyTitle, s.now().UTC(), "xlsx"),
		ContentType: docgen.ContentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

type PublishDocumentRequest struct {
	SurveyID string
	ActorID  string
}

// PublishProposal uploads a freshly generated proposal and records it.
func (s *DocumentService) PublishProposal(ctx context.Context, req PublishDocumentRequest) (*domain.Document, error) {
	if s.files == nil {
		return nil, fmt.Errorf("cdn: %w", domain.ErrNotConfigured)
	}
	doc, err := s.RenderProposal(ctx, req.SurveyID)
	if err != nil {
		return nil, err
	}
	return s.publish(ctx, req, domain.DocumentProposal, "proposals", doc)
}

// PublishBOM uploads the BOM workbook and records it.
func (s *DocumentService) PublishBOM(ctx context.Context, req PublishDocumentRequest) (*domain.Document, error) {
	if s.files == nil {
		return nil, fmt.Errorf("cdn: %w", domain.ErrNotConfigured)
	}
	doc, err := s.RenderBOM(ctx, req.SurveyID)
	if err != nil {
		return nil, err
	}
	return s.publish(ctx, req, domain.DocumentBOM, "boms", doc)
}

func (s *DocumentService) publish(ctx context.Context, req PublishDocumentRequest, kind domain.DocumentKind, folder string, doc *RenderedDocument) (*domain.Document, error) {
	ext := doc.FileName[strings.LastIndex(doc.FileName, ".")+1:]
	path := fmt.Sprintf("%s/%s/%s.%s", folder, req.SurveyID, s.now().UTC().Format("20060102T150405Z"), ext)

	url, err := s.files.Upload(ctx, path, bytes.NewReader(doc.Data), doc.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", strings.ToLower(string(kind)), err)
	}

	record := &domain.Document{
		SurveyID:  req.SurveyID,
		Kind:      kind,
		FileName:  doc.FileName,
		URL:       url,
		Size:      int64(len(doc.Data)),
		CreatedBy: optional(req.ActorID),
	}
	if err := s.documents.CreateDocument(ctx, record); err != nil {
		if derr := s.files.Delete(context.WithoutCancel(ctx), path); derr != nil {
			s.logger.Warn("Orphaned document left in storage", zap.String("path", path), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to record document: %w", err)
	}

	s.logger.Info("Document published",
		zap.String("survey_id", req.SurveyID),
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.Int64("size", record.Size),
	)
	if err := s.publisher.Publish(ctx, events.DocumentGenerated, map[string]any{
		"document_id": record.ID,
		"survey_id":   req.SurveyID,
		"kind":        kind,
		"url":         url,
	}); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event", events.DocumentGenerated), zap.Error(err))
	}
	return record, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, surveyID string) ([]*domain.Document, error) {
	if _, err := s.surveys.GetSiteSurvey(ctx, surveyID); err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	docs, err := s.documents.ListDocuments(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, nil
}

// documentFileName e.g. proposal-hq-cabling-20261019.docx
func documentFileName(prefix, title string, at time.Time, ext string) string {
	name := prefix
	if slug := Slugify(title); slug != "" {
		name += "-" + slug
	}
	return fmt.Sprintf("%s-%s.%s", name, at.Format("20060102"), ext)
}
