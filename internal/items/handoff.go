package items

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ExtractionMode tells persistence whether the item list came from the
// extractor or has to be entered by hand.
type ExtractionMode string

const (
	ExtractionModeAutomatic ExtractionMode = "automatic"
	ExtractionModeManual    ExtractionMode = "manual"
)

// ItemStore persists a project's extracted item list
type ItemStore interface {
	SaveItems(ctx context.Context, projectID string, items []Item, mode ExtractionMode) error
}

// ReviewFlagger registers a reviewable flag for one item (0-based index)
type ReviewFlagger interface {
	FlagItem(ctx context.Context, projectID string, index int, reason string) error
}

// Notifier delivers outcome notices. Acquisition failures go to an
// administrator, review requests to the uploading user.
type Notifier interface {
	NotifyAcquisitionFailure(ctx context.Context, projectID string, cause error) error
	NotifyReviewNeeded(ctx context.Context, projectID string, needReview, total int) error
}

// Collaborators bundles the outbound hooks. Nil members are skipped.
type Collaborators struct {
	Store    ItemStore
	Flagger  ReviewFlagger
	Notifier Notifier
}

// Deliver routes one run's outcome to the collaborators. acqErr is the
// acquisition error, if any, in which case result is ignored. Every
// collaborator is called even when an earlier one fails; the errors are
// combined.
func Deliver(ctx context.Context, projectID string, result *Result, acqErr error, c Collaborators) error {
	if acqErr != nil || result == nil {
		if acqErr == nil {
			acqErr = errors.New("no extraction result")
		}
		var err error
		if c.Store != nil {
			err = multierr.Append(err, c.Store.SaveItems(ctx, projectID, []Item{}, ExtractionModeManual))
		}
		if c.Notifier != nil {
			err = multierr.Append(err, c.Notifier.NotifyAcquisitionFailure(ctx, projectID, acqErr))
		}
		return err
	}

	mode := ExtractionModeAutomatic
	if !result.Succeeded() {
		mode = ExtractionModeManual
	}

	var err error
	if c.Store != nil {
		err = multierr.Append(err, c.Store.SaveItems(ctx, projectID, result.Items, mode))
	}
	if c.Flagger != nil {
		for i, it := range result.Items {
			if it.NeedsReview() {
				err = multierr.Append(err, c.Flagger.FlagItem(ctx, projectID, i, it.Reason()))
			}
		}
	}
	if c.Notifier != nil {
		switch {
		case !result.Succeeded():
			err = multierr.Append(err, c.Notifier.NotifyAcquisitionFailure(ctx, projectID, errors.New(result.Message)))
		case result.NeedsReview() > 0:
			err = multierr.Append(err, c.Notifier.NotifyReviewNeeded(ctx, projectID, result.NeedsReview(), result.ItemsDetected))
		}
	}
	return err
}

// LogCollaborators implements every collaborator by logging, for
// deployments without a backing application.
type LogCollaborators struct {
	logger *zap.Logger
}

// NewLogCollaborators returns collaborators that write to logger
func NewLogCollaborators(logger *zap.Logger) *LogCollaborators {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogCollaborators{logger: logger.Named("handoff")}
}

// Collaborators returns l wired into every slot
func (l *LogCollaborators) Collaborators() Collaborators {
	return Collaborators{Store: l, Flagger: l, Notifier: l}
}

func (l *LogCollaborators) SaveItems(_ context.Context, projectID string, items []Item, mode ExtractionMode) error {
	l.logger.Info("items saved",
		zap.String("project", projectID),
		zap.Int("count", len(items)),
		zap.String("mode", string(mode)))
	return nil
}

func (l *LogCollaborators) FlagItem(_ context.Context, projectID string, index int, reason string) error {
	l.logger.Warn("item flagged for review",
		zap.String("project", projectID),
		zap.Int("index", index),
		zap.String("reason", reason))
	return nil
}

func (l *LogCollaborators) NotifyAcquisitionFailure(_ context.Context, projectID string, cause error) error {
	l.logger.Error("extraction failed, administrator notified",
		zap.String("project", projectID),
		zap.Error(cause))
	return nil
}

func (l *LogCollaborators) NotifyReviewNeeded(_ context.Context, projectID string, needReview, total int) error {
	l.logger.Info(fmt.Sprintf("%d items need review out of %d extracted", needReview, total),
		zap.String("project", projectID))
	return nil
}
