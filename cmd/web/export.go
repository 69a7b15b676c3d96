package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ExportDataset uploads the fine-tuning corpus to the configured bucket in
// its JSONL wire format and responds with a presigned download URL, for
// handing the data to a training job.
func (s *Server) ExportDataset(w http.ResponseWriter, r *http.Request) {
	if s.s3c == nil || s.bucket == "" {
		writeError(w, http.StatusServiceUnavailable, "dataset export is not configured")
		return
	}

	var buf bytes.Buffer
	if _, err := s.examples.WriteTo(&buf); err != nil {
		slog.Error("can't serialize corpus", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	key := fmt.Sprintf("datasets/%s.jsonl", uuid.Must(uuid.NewV7()).String())

	if _, err := s.s3c.PutObject(r.Context(), &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
		ContentType:   aws.String("application/x-ndjson"),
	}); err != nil {
		slog.Error("can't upload corpus", "bucket", s.bucket, "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	url, err := s.generatePresignedURL(r.Context(), s.bucket, key)
	if err != nil {
		slog.Error("can't presign corpus URL", "key", key, "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("exported corpus", "bucket", s.bucket, "key", key, "records", s.examples.Len())
	writeJSON(w, http.StatusOK, map[string]any{
		"bucket":  s.bucket,
		"key":     key,
		"url":     url,
		"records": s.examples.Len(),
	})
}

// generatePresignedURL generates a presigned URL for downloading a file from the dataset bucket
func (s *Server) generatePresignedURL(ctx context.Context, bucket, key string) (string, error) {
	presignClient := s3.NewPresignClient(s.s3c)

	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = time.Duration(15 * time.Minute)
	})

	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}

	return request.URL, nil
}
