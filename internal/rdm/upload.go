// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rdm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/pkg/types"
)

// Drafter creates drafts. *Client implements it.
type Drafter interface {
	CreateDraft(ctx context.Context, rec Record) (Draft, error)
}

// Summary counts the outcome of an upload batch.
type Summary struct {
	Created int
	Printed int
	Failed  int
}

// Uploader turns a recordings manifest into repository drafts.
type Uploader struct {
	cfg     types.UploadConfig
	drafter Drafter
	log     *zap.Logger
	w       io.Writer
	now     func() time.Time
}

// NewUploader returns an uploader. drafter may be nil when cfg.DryRun is set.
func NewUploader(cfg types.UploadConfig, drafter Drafter, log *zap.Logger, w io.Writer) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{cfg: cfg, drafter: drafter, log: log, w: w, now: time.Now}
}

// Run builds a record for every recording and either prints it (dry run) or
// submits it. A recording that fails is reported and the batch continues.
func (u *Uploader) Run(ctx context.Context, recordings []Recording, sources Sources) (Summary, error) {
	var sum Summary
	if !u.cfg.DryRun && u.drafter == nil {
		return sum, ErrNoToken
	}

	enc := json.NewEncoder(u.w)
	enc.SetIndent("", "  ")

	for _, rec := range recordings {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		record, err := BuildRecord(rec, sources, u.cfg.Contact, u.now())
		if err != nil {
			sum.Failed++
			fmt.Fprintf(u.w, "failed:  %s (%v)\n", rec.WorkID, err)
			continue
		}

		if u.cfg.DryRun {
			if err := enc.Encode(record); err != nil {
				return sum, fmt.Errorf("writing record: %w", err)
			}
			sum.Printed++
			continue
		}

		draft, err := u.drafter.CreateDraft(ctx, record)
		if err != nil {
			sum.Failed++
			u.log.Warn("draft creation failed", zap.String("work_id", rec.WorkID), zap.Error(err))
			fmt.Fprintf(u.w, "failed:  %s (%v)\n", rec.WorkID, err)
			continue
		}
		sum.Created++
		fmt.Fprintf(u.w, "created: %s -> %s\n", rec.WorkID, draft.ID)
	}

	if !u.cfg.DryRun {
		fmt.Fprintf(u.w, "\nUpload summary: %d created, %d failed\n", sum.Created, sum.Failed)
	}
	return sum, nil
}
