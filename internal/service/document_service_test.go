package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/config"
	"github.com/cloudzeus/kimoncrm-sub005/internal/docgen"
	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDocumentFixture(t *testing.T, files FileStore) (*DocumentService, *memDocuments, *recordingPublisher) {
	t.Helper()
	f := newCablingFixture()
	_, err := f.svc.SaveCabling(context.Background(), SaveCablingRequest{SurveyID: "s1", Tree: sampleTree()})
	require.NoError(t, err)

	customers := &memCustomers{byID: map[string]*domain.Customer{"c1": {ID: "c1", Name: "Acme SA"}}}
	docs := newMemDocuments()
	pub := &recordingPublisher{}
	svc := NewDocumentService(f.surveys, customers, docs, f.svc, files,
		config.CompanyConfig{Name: "Kimon"}, pub, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	return svc, docs, pub
}

func TestDocumentService_RenderProposal(t *testing.T) {
	svc, _, _ := newDocumentFixture(t, nil)

	doc, err := svc.RenderProposal(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "proposal-hq-cabling-20261019.docx", doc.FileName)
	assert.Equal(t, docgen.ContentTypeDOCX, doc.ContentType)
	assert.Equal(t, "PK", string(doc.Data[:2]))

	_, err = svc.RenderProposal(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocumentService_PublishBOM(t *testing.T) {
	store := newMemFileStore()
	svc, docs, pub := newDocumentFixture(t, store)

	d, err := svc.PublishBOM(context.Background(), PublishDocumentRequest{SurveyID: "s1", ActorID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentBOM, d.Kind)
	assert.Equal(t, "bom-hq-cabling-20261019.xlsx", d.FileName)
	assert.Equal(t, "https://cdn.test/boms/s1/20261019T083000Z.xlsx", d.URL)
	assert.Equal(t, "u1", *d.CreatedBy)
	assert.Equal(t, int64(len(store.uploads["boms/s1/20261019T083000Z.xlsx"])), d.Size)
	assert.Equal(t, docgen.ContentTypeXLSX, store.types["boms/s1/20261019T083000Z.xlsx"])

	listed, err := svc.ListDocuments(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, d.ID, listed[0].ID)
	assert.Len(t, docs.docs, 1)

	require.Equal(t, []string{events.DocumentGenerated}, pub.types())
	assert.Equal(t, domain.DocumentBOM, pub.events[0].Payload["kind"])
}

func TestDocumentService_PublishProposal(t *testing.T) {
	store := newMemFileStore()
	svc, _, _ := newDocumentFixture(t, store)

	d, err := svc.PublishProposal(context.Background(), PublishDocumentRequest{SurveyID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/proposals/s1/20261019T083000Z.docx", d.URL)
	assert.Nil(t, d.CreatedBy)
}

func TestDocumentService_UploadFailure(t *testing.T) {
	store := newMemFileStore()
	store.err = domain.ErrIntegration
	svc, docs, pub := newDocumentFixture(t, store)

	_, err := svc.PublishProposal(context.Background(), PublishDocumentRequest{SurveyID: "s1"})
	assert.True(t, errors.Is(err, domain.ErrIntegration))
	assert.Empty(t, docs.docs)
	assert.Empty(t, pub.events)
}

func TestDocumentService_RecordFailureRemovesObject(t *testing.T) {
	store := newMemFileStore()
	svc, docs, pub := newDocumentFixture(t, store)
	docs.createErr = errors.New("connection reset")

	_, err := svc.PublishBOM(context.Background(), PublishDocumentRequest{SurveyID: "s1"})
	require.Error(t, err)
	assert.Empty(t, store.uploads)
	assert.Empty(t, pub.events)
}

func TestDocumentService_NoCDN(t *testing.T) {
	svc, _, _ := newDocumentFixture(t, nil)

	_, err := svc.PublishProposal(context.Background(), PublishDocumentRequest{SurveyID: "s1"})
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
	_, err = svc.PublishBOM(context.Background(), PublishDocumentRequest{SurveyID: "s1"})
	assert.True(t, errors.Is(err, domain.ErrNotConfigured))
}

func TestDocumentService_ListDocuments_Empty(t *testing.T) {
	svc, _, _ := newDocumentFixture(t, nil)
	docs, err := svc.ListDocuments(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
