package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainRAG "github.com/tourassist/backend/internal/domain/rag"
)

var _ domainRAG.DocumentRepository = (*DocumentRepositoryImpl)(nil)

// DocumentRepositoryImpl stores documents in sqlite
type DocumentRepositoryImpl struct {
	db *sql.DB
}

// NewDocumentRepository creates a document repository
func NewDocumentRepository(db *sql.DB) domainRAG.DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

const documentColumns = `document_id, tenant_id, filename, content_hash, status, created_at`

// Create inserts doc; a (tenant_id, content_hash) conflict yields ErrDuplicateDocument
func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *domainRAG.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.TenantID, doc.Filename, doc.ContentHash, doc.Status,
		doc.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainRAG.ErrDuplicateDocument
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// FindByHash looks up a tenant's document by content hash
func (r *DocumentRepositoryImpl) FindByHash(ctx context.Context, tenantID, contentHash string) (*domainRAG.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tenant_id = ? AND content_hash = ?`,
		tenantID, contentHash,
	)
	return scanDocument(row)
}

// FindByID looks up a document by id
func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, documentID string) (*domainRAG.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE document_id = ?`,
		documentID,
	)
	return scanDocument(row)
}

// UpdateStatus sets the status of a document
func (r *DocumentRepositoryImpl) UpdateStatus(ctx context.Context, documentID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE documents SET status = ? WHERE document_id = ?`, status, documentID)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s not found", documentID)
	}
	return nil
}

// ListByTenant returns a tenant's documents, oldest first
func (r *DocumentRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]*domainRAG.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tenant_id = ? ORDER BY created_at, document_id`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domainRAG.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domainRAG.Document, error) {
	var doc domainRAG.Document
	var createdAt string
	err := row.Scan(&doc.ID, &doc.TenantID, &doc.Filename, &doc.ContentHash, &doc.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &doc, nil
}
