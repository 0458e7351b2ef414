// Package seed loads an initial set of job urls from a YAML file into the
// store at startup. Seeding goes through the normal conditional upsert with
// update disabled, so re-running against a live database never clobbers
// statuses the automation worker already advanced.
package seed

import (
	"context"
	"fmt"
	"os"

	log "github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/jobpilot/jobstore/app/enums"
	"github.com/jobpilot/jobstore/app/store"
)

// Store defines the single store operation seeding needs
type Store interface {
	Upsert(ctx context.Context, urls []string, status enums.Status, updateIfExists bool) (store.UpsertResult, error)
}

// File describes the seed file format:
//
//	status: new
//	urls:
//	  - https://example.com/careers/123
//	  - https://boards.example.org/postings/456
type File struct {
	Status string   `yaml:"status"`
	URLs   []string `yaml:"urls"`
}

// Load reads and parses the seed file. A missing status defaults to "new".
func Load(path string) (File, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is an operator-provided option
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if f.Status == "" {
		f.Status = enums.StatusNew.String()
	}
	return f, nil
}

// Apply loads the seed file and inserts its urls into the store, skipping
// entries that already exist. Rejected urls are logged, not fatal.
func Apply(ctx context.Context, st Store, path string) error {
	f, err := Load(path)
	if err != nil {
		return err
	}
	if len(f.URLs) == 0 {
		log.Printf("[INFO] seed file %s has no urls, nothing to do", path)
		return nil
	}

	status, err := enums.ParseStatus(f.Status)
	if err != nil {
		return fmt.Errorf("seed file %s: %w", path, err)
	}

	res, err := st.Upsert(ctx, f.URLs, status, false)
	if err != nil {
		return fmt.Errorf("failed to seed jobs from %s: %w", path, err)
	}

	for _, rej := range res.Rejected {
		log.Printf("[WARN] seed url rejected: %s (%s)", rej.URL, rej.Reason)
	}
	log.Printf("[INFO] seeded %d jobs from %s, %d already present, %d rejected",
		len(res.Added), path, len(res.Skipped), len(res.Rejected))
	return nil
}
