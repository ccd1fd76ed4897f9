package db

import (
	"context"
	"fmt"

	"github.com/pdfdesk/backend/internal/model"
)

func (db *Postgres) InsertFile(ctx context.Context, file model.File) (*model.File, error) {
	query := `
		INSERT INTO files (id, title, pdf, date, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, title, pdf, date, created_at
	`
	var created model.File
	err := db.Pool.QueryRow(ctx, query, file.ID, file.Title, file.PDF, file.Date).Scan(
		&created.ID,
		&created.Title,
		&created.PDF,
		&created.Date,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return &created, nil
}

func (db *Postgres) ListFiles(ctx context.Context) ([]model.File, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, pdf, date, created_at
		FROM files
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := []model.File{}
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Title, &f.PDF, &f.Date, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}
