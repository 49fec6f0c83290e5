/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 *
 * Package s3store keeps objects in an Amazon S3 bucket. A Store serves both
 * as an httpcache.Cache for scraped standings pages and as the object
 * backend for archived draws. The cache half is derived from
 * github.com/sourcegraph/s3cache, moved to aws-sdk-go-v2.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var ErrNotFound = errors.New("s3store: object not found")

const cachePrefix = "webcache"

type Store struct {
	Config aws.Config

	// Client is initialized by Init() from the default AWS configuration;
	// callers may replace it afterwards.
	Client *s3.Client

	bucketName string
	// gzip compresses cache entries; their object keys gain a ".gz" suffix.
	// Objects written with PutObject are never compressed.
	gzip      bool
	logErrors bool

	// used by the httpcache.Cache methods, which take no context
	ctx context.Context
}

// New returns a Store over the named bucket. Callers must invoke Init()
// before use.
func New(ctx context.Context, bucketName string, gzip bool,
	logErrors bool) *Store {

	return &Store{
		ctx:        ctx,
		bucketName: bucketName,
		gzip:       gzip,
		logErrors:  logErrors,
	}
}

// Init loads the default AWS configuration (environment variables, then the
// shared config and credentials files) and checks the bucket can be listed.
func (s *Store) Init() error {
	var err error
	s.Config, err = config.LoadDefaultConfig(s.ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	s.Client = s3.NewFromConfig(s.Config)

	if _, err = s.Client.HeadBucket(s.ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w",
			s.bucketName, err)
	}
	if _, err = s.Client.ListObjectsV2(s.ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucketName),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w",
			s.bucketName, err)
	}

	return nil
}

func (s *Store) Bucket() string {
	return s.bucketName
}

// Get implements httpcache.Cache.
func (s *Store) Get(key string) ([]byte, bool) {
	objKey := s.cacheKeyToObjectKey(key)
	data, err := s.getObject(s.ctx, objKey, s.gzip)
	if err != nil {
		// a missing key is just a cache miss
		if s.logErrors && !errors.Is(err, ErrNotFound) {
			log.Printf("s3store.get: %v", err)
		}
		return nil, false
	}

	return data, true
}

// Set implements httpcache.Cache.
func (s *Store) Set(key string, data []byte) {
	objKey := s.cacheKeyToObjectKey(key)
	if err := s.putObject(s.ctx, objKey, data, s.gzip); err != nil {
		if s.logErrors {
			log.Printf("s3store.set: %v", err)
		}
	}
}

// Delete implements httpcache.Cache.
func (s *Store) Delete(key string) {
	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.cacheKeyToObjectKey(key)),
	}

	_, err := s.Client.DeleteObject(s.ctx, input)
	if err != nil {
		if s.logErrors {
			log.Printf("s3store.delete: delete failed for %v/%v: %v",
				s.bucketName, *input.Key, err)
		}
	}
}

// GetObject returns the object stored under key, or ErrNotFound.
func (s *Store) GetObject(ctx context.Context, key string) ([]byte, error) {
	return s.getObject(ctx, key, false)
}

func (s *Store) PutObject(ctx context.Context, key string, data []byte) error {
	return s.putObject(ctx, key, data, false)
}

// ListKeys returns every object key beginning with prefix, in the
// lexicographic order S3 lists them.
func (s *Store) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3store.list: failed to list %v/%v: %w",
				s.bucketName, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	return keys, nil
}

func (s *Store) getObject(ctx context.Context, key string,
	compressed bool) ([]byte, error) {

	resp, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%v/%v: %w", s.bucketName, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %v/%v: %w", s.bucketName,
			key, err)
	}
	defer resp.Body.Close()

	var rdr io.Reader = resp.Body
	if compressed {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed object %v/%v: %w",
				s.bucketName, key, err)
		}
		defer gr.Close()
		rdr = gr
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %v/%v: %w", s.bucketName,
			key, err)
	}

	return data, nil
}

func (s *Store) putObject(ctx context.Context, key string, data []byte,
	compressed bool) error {

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if compressed {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("failed to gzip data for %v/%v: %w", s.bucketName,
				key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer for %v/%v: %w",
				s.bucketName, key, err)
		}
		input.Body = bytes.NewReader(buf.Bytes())
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := s.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put failed for %v/%v: %w", s.bucketName, key, err)
	}

	return nil
}

func isNoSuchKey(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

func (s *Store) cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)
	objKey := fmt.Sprintf("%v/%v", cachePrefix, hex.EncodeToString(h.Sum(nil)))
	if s.gzip {
		objKey += ".gz"
	}

	return objKey
}
