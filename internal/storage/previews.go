/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// PreviewKind is a type discriminator for previews table rows.
// - svg: the vector preview document
// - png: a raster preview used by exporters that need pixels
const (
	PreviewKindSVG = "svg"
	PreviewKindPNG = "png"
)

// GetPreview returns the blob bytes for a preview of the given node and kind,
// updating last_access. A nil blob with nil error means a cache miss.
func GetPreview(ctx context.Context, root, nodeKey, kind string, w, h int) ([]byte, error) {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx,
		`SELECT blob FROM previews WHERE node_key=? AND kind=? AND w=? AND h=?`,
		nodeKey, kind, w, h).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE node_key=? AND kind=? AND w=? AND h=?`,
		now, nodeKey, kind, w, h)
	return blob, nil
}

// PutPreview upserts a preview blob and enforces the cache size cap via LRU
// eviction.
func PutPreview(ctx context.Context, root, nodeKey, kind string, w, h int, blob []byte) error {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	if kind != PreviewKindSVG && kind != PreviewKindPNG {
		return fmt.Errorf("invalid kind: %s", kind)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.ExecContext(ctx, `INSERT INTO previews(node_key,kind,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(node_key,kind,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		nodeKey, kind, w, h, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	capBytes := MaxPreviewsBytesFromEnv()
	if capBytes > 0 {
		if err := EvictPreviewsToFit(ctx, db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// DeletePreviews drops all cached previews for a node, e.g. after removal.
func DeletePreviews(ctx context.Context, root, nodeKey string) error {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, `DELETE FROM previews WHERE node_key=?`, nodeKey); err != nil {
		return fmt.Errorf("delete previews: %w", err)
	}
	return nil
}

// GetOrCreatePreview fetches a preview or generates and stores it using the
// provided generator.
func GetOrCreatePreview(ctx context.Context, root, nodeKey, kind string, w, h int, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetPreview(ctx, root, nodeKey, kind, w, h); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := PutPreview(ctx, root, nodeKey, kind, w, h, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	// Select victim ids ordered by last_access asc (oldest first), NULLs first
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]int64, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Important: close the rows cursor before attempting to write
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	sqlBase := `DELETE FROM previews WHERE id IN (`
	for i := range toDelete {
		if i > 0 {
			sqlBase += ","
		}
		sqlBase += "?"
	}
	sqlBase += ")"
	args := make([]any, len(toDelete))
	for i, v := range toDelete {
		args[i] = v
	}
	if _, err := db.ExecContext(ctx, sqlBase, args...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size.
func TotalPreviewBytes(ctx context.Context, root string) (int64, error) {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads SCD_PREVIEWS_MAX_BYTES, defaulting to 256MB if unset.
func MaxPreviewsBytesFromEnv() int64 {
	v := os.Getenv("SCD_PREVIEWS_MAX_BYTES")
	if v == "" {
		return 256 * 1024 * 1024 // 256MB
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 256 * 1024 * 1024
	}
	return n
}
