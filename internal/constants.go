/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent      = "knockoutdraw/0.4.0 (+https://github.com/mikeb26/knockoutdraw)"
	WebCacheBucket = "bopmatic-knockoutdraw-prod-webcache"
	ArchiveBucket  = "bopmatic-knockoutdraw-prod-archive"
)
