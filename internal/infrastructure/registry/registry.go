package registry

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ngo-verify-api/internal/domain"
)

// expected CSV header column names, matched case-insensitively
const (
	colName  = "ngo name"
	colEmail = "email"
)

type pairKey struct {
	name  string
	email string
}

// Registry is the immutable in-memory index of the reference dataset.
// Built once at startup; all lookups are exact matches after normalization.
type Registry struct {
	byPair  map[pairKey]domain.Organization
	byEmail map[string]domain.Organization
}

// ObjectFetcher retrieves a remote dataset object. Satisfied by the S3 store.
type ObjectFetcher interface {
	Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Parse reads the dataset CSV and builds the lookup index.
// The header must contain "Ngo Name" and "Email" columns (any case, any order).
func Parse(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	nameIdx, emailIdx := -1, -1
	for i, col := range header {
		switch normalize(col) {
		case colName:
			nameIdx = i
		case colEmail:
			emailIdx = i
		}
	}
	if nameIdx < 0 || emailIdx < 0 {
		return nil, fmt.Errorf("dataset header missing %q or %q column", colName, colEmail)
	}

	reg := &Registry{
		byPair:  make(map[pairKey]domain.Organization),
		byEmail: make(map[string]domain.Organization),
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		if nameIdx >= len(row) || emailIdx >= len(row) {
			return nil, fmt.Errorf("dataset row has %d columns, need %d", len(row), max(nameIdx, emailIdx)+1)
		}
		org := domain.Organization{
			Name:  strings.TrimSpace(row[nameIdx]),
			Email: strings.TrimSpace(row[emailIdx]),
		}
		key := pairKey{name: normalize(org.Name), email: normalize(org.Email)}
		reg.byPair[key] = org
		reg.byEmail[key.email] = org
	}
	return reg, nil
}

// LoadFile builds a Registry from a local CSV file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadS3 builds a Registry from an s3://bucket/key URI.
func LoadS3(ctx context.Context, fetcher ObjectFetcher, uri string) (*Registry, error) {
	bucket, key, err := SplitS3URI(uri)
	if err != nil {
		return nil, err
	}
	body, err := fetcher.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %s: %w", uri, err)
	}
	defer body.Close()
	return Parse(body)
}

// SplitS3URI splits "s3://bucket/key" into its bucket and key parts.
func SplitS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 URI: %s", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 URI: %s", uri)
	}
	return bucket, key, nil
}

// FindByNameAndEmail looks up an organization by the joint (name, email) pair.
func (r *Registry) FindByNameAndEmail(name, email string) (*domain.Organization, bool) {
	org, ok := r.byPair[pairKey{name: normalize(name), email: normalize(email)}]
	if !ok {
		return nil, false
	}
	return &org, true
}

// FindByEmail looks up an organization by contact email alone.
func (r *Registry) FindByEmail(email string) (*domain.Organization, bool) {
	org, ok := r.byEmail[normalize(email)]
	if !ok {
		return nil, false
	}
	return &org, true
}

// Len returns the number of distinct contact emails in the dataset.
func (r *Registry) Len() int { return len(r.byEmail) }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
