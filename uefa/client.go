/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uefa

import (
	"context"
	"net/http"
	"time"

	"github.com/mikeb26/knockoutdraw/internal"
)

// standings only change on matchdays, so a day old copy is fine
const standingsMaxAge = 24 * time.Hour

type Client struct {
	httpClient *http.Client
}

// NewClient returns a Client whose fetches are cached in the given S3 bucket.
func NewClient(ctx context.Context, bucket string) *Client {
	return &Client{
		httpClient: internal.NewCachedHTTPClient(ctx, bucket, standingsMaxAge),
	}
}

// NewClientWithHTTP returns a Client that fetches through hc as is.
func NewClientWithHTTP(hc *http.Client) *Client {
	return &Client{httpClient: hc}
}
