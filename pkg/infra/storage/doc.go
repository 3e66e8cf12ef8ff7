// Package storage provides the places archives and descriptors are published
// to: a local directory served as-is, or a Cloud Storage bucket.
package storage
