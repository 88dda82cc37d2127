// Package archive stores executed documents in S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lexdesk/internal/config"
	"lexdesk/internal/domain"
	"lexdesk/internal/domain/models"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
)

// LinkExpiry is how long a presigned download stays valid
const LinkExpiry = 15 * time.Minute

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Archiver writes the final version of executed documents to a bucket and hands out presigned links.
type Archiver struct {
	objects   objectPutter
	presigner getPresigner
	bucket    string
	documents repositories.DocumentRepository
	logger    *slog.Logger
	now       func() time.Time
}

var _ services.Archiver = (*Archiver)(nil)

// New creates an archiver for the configured bucket.
// The endpoint is set explicitly so MinIO works the same as AWS.
func New(ctx context.Context, cfg *config.Config, documents repositories.DocumentRepository, logger *slog.Logger) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})
	return newArchiver(client, s3.NewPresignClient(client), cfg.S3Bucket, documents, logger), nil
}

func newArchiver(objects objectPutter, presigner getPresigner, bucket string, documents repositories.DocumentRepository, logger *slog.Logger) *Archiver {
	return &Archiver{
		objects:   objects,
		presigner: presigner,
		bucket:    bucket,
		documents: documents,
		logger:    logger,
		now:       time.Now,
	}
}

// Key is the object key for one document version
func Key(documentID string, version int) string {
	return fmt.Sprintf("documents/%s/v%d.txt", documentID, version)
}

// Attach archives documents as they reach executed
func (a *Archiver) Attach(bus events.Bus) {
	bus.Subscribe(events.TopicDocumentVersionAppended, "archive", a.HandleEvent)
}

// HandleEvent uploads the final version when the event moved a document to executed
func (a *Archiver) HandleEvent(ctx context.Context, e events.Event) error {
	p, ok := e.Payload.(events.DocumentPayload)
	if !ok || p.Document == nil || p.Version == nil {
		return nil
	}
	if p.Document.Status != models.DocumentStatusExecuted || p.Version.Type != models.VersionTypeFinal {
		return nil
	}
	return a.Store(ctx, p.Document, p.Version)
}

// Store uploads one version body
func (a *Archiver) Store(ctx context.Context, doc *models.Document, v *models.DocumentVersion) error {
	key := Key(doc.ID, v.Version)
	_, err := a.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(v.Content),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata: map[string]string{
			"document-id": doc.ID,
			"client-id":   doc.ClientID,
			"template-id": doc.TemplateID,
			"version":     strconv.Itoa(v.Version),
		},
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	a.logger.Info("executed document archived", "document_id", doc.ID, "version", v.Version, "bucket", a.bucket, "key", key)
	return nil
}

// ArchiveLink presigns a download of the executed version of a document
func (a *Archiver) ArchiveLink(ctx context.Context, documentID string) (*models.ArchiveLink, error) {
	doc, err := a.documents.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != models.DocumentStatusExecuted {
		return nil, fmt.Errorf("%w: document %s is %s, only executed documents are archived",
			domain.ErrInvalidTransition, doc.ID, doc.Status)
	}

	key := Key(doc.ID, doc.CurrentVersion)
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(LinkExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	return &models.ArchiveLink{
		DocumentID: doc.ID,
		Version:    doc.CurrentVersion,
		Key:        key,
		URL:        req.URL,
		ExpiresAt:  a.now().UTC().Add(LinkExpiry),
	}, nil
}
