// Package storage keeps admin-uploaded menu images in Mongo GridFS, the
// backend analog of the original hosted storage bucket.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrImageNotFound = errors.New("image not found")

const bucketName = "menu-images"

type ImageStore interface {
	Upload(ctx context.Context, originalName string, r io.Reader) (string, error)
	Open(name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("create gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// Upload stores the image under a generated collision-free name and returns
// that name; it becomes the menu item's image_loc.
func (s *GridFSStore) Upload(_ context.Context, originalName string, r io.Reader) (string, error) {
	name := generateName(originalName)

	if _, err := s.bucket.UploadFromStream(name, r); err != nil {
		return "", fmt.Errorf("gridfs upload failed: %w", err)
	}

	return name, nil
}

func (s *GridFSStore) Open(name string) (io.ReadCloser, error) {
	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStreamByName(name, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("gridfs download failed: %w", err)
	}
	return io.NopCloser(&buf), nil
}

func (s *GridFSStore) Delete(ctx context.Context, name string) error {
	cursor, err := s.bucket.Find(bson.M{"filename": name})
	if err != nil {
		return fmt.Errorf("gridfs find failed: %w", err)
	}
	defer cursor.Close(ctx)

	deleted := false
	for cursor.Next(ctx) {
		var file struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return fmt.Errorf("decode gridfs file: %w", err)
		}
		if err := s.bucket.Delete(file.ID); err != nil {
			return fmt.Errorf("gridfs delete failed: %w", err)
		}
		deleted = true
	}

	if !deleted {
		return ErrImageNotFound
	}
	return nil
}

func generateName(originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	return fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.NewString()[:8], ext)
}

func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}
