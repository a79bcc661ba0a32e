// Package dataset implements kontra.DatasetHandle for every backing store
// variant named in SPEC_FULL.md §4.2/§6: local files, S3-compatible object
// storage, database tables, and in-memory frames.
package dataset

import (
	"net/url"
	"strings"

	"github.com/saevarl/kontra"
)

// ParsedURI is a dataset URI broken into scheme-specific fields, grounded on
// the teacher's own use of net/url for connection-string assembly in
// cmd/server/main.go.
type ParsedURI struct {
	Scheme string // "file", "s3", "abfss", "postgres", "mssql"
	Bucket string // s3/abfss host component
	Path   string // file path or object key
	Table  string // URI path after the host, leading "/" removed, for postgres/mssql URIs
}

// Parse interprets one of the URI schemes named in §6: file://, s3://,
// abfss://, postgres://, mssql://.
func Parse(raw string) (ParsedURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ParsedURI{}, kontra.NewDataError(kontra.ErrCodeURIParse, "dataset: malformed URI").WithCause(err)
	}

	switch u.Scheme {
	case "file":
		return ParsedURI{Scheme: "file", Path: u.Path}, nil
	case "s3", "abfss":
		return ParsedURI{Scheme: u.Scheme, Bucket: u.Host, Path: strings.TrimPrefix(u.Path, "/")}, nil
	case "postgres", "postgresql":
		return ParsedURI{Scheme: "postgres", Table: strings.TrimPrefix(u.Path, "/")}, nil
	case "mssql":
		return ParsedURI{Scheme: "mssql", Table: strings.TrimPrefix(u.Path, "/")}, nil
	default:
		return ParsedURI{}, kontra.NewDataError(kontra.ErrCodeURIParse, "dataset: unsupported URI scheme "+u.Scheme)
	}
}
