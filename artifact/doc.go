// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact links patent documents stored in Google Cloud Storage.
//
// Patents are referenced by gs://bucket/object URIs. A [Signer] turns such a URI into a
// short-lived V4 signed HTTPS URL so the browser can open the PDF directly:
//
//	signer, err := artifact.NewSigner(ctx, cfg.GCP.ServiceAccountKey, cfg.Signer.Expiry)
//	if err != nil {
//		return err
//	}
//	defer signer.Close()
//
//	url, err := signer.SignedURL(ctx, "gs://bucket/patents/US1234567.pdf")
package artifact
