// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

// Package imagestore implements identity.ImageStore on Cloudinary and on
// S3-compatible object storage.
package imagestore
