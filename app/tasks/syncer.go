package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/oscar-feed/app/config"
	"github.com/lysyi3m/oscar-feed/app/database"
	"github.com/lysyi3m/oscar-feed/app/ical"
	"github.com/lysyi3m/oscar-feed/app/portal"
	"github.com/lysyi3m/oscar-feed/app/shift"
)

// Syncer builds and writes one user's calendar from the portal, the user's
// calendar feeds and the shift archive.
type Syncer struct {
	cfg       *config.Config
	fetcher   *ical.Fetcher
	parser    *ical.Parser
	generator *ical.Generator
	writer    *ical.Writer
	merger    *shift.Merger
	shiftRepo database.ShiftRepository
	retention time.Duration
	userAgent string
	now       func() time.Time
}

// NewSyncer wires the pipeline. shiftRepo may be nil to run without an archive.
func NewSyncer(cfg *config.Config, fetcher *ical.Fetcher, generator *ical.Generator,
	writer *ical.Writer, shiftRepo database.ShiftRepository, retention time.Duration, userAgent string) *Syncer {
	return &Syncer{
		cfg:       cfg,
		fetcher:   fetcher,
		parser:    ical.NewParser(cfg.Portal.GetLocation()),
		generator: generator,
		writer:    writer,
		merger:    shift.NewMerger(cfg.Merge.ContainByName),
		shiftRepo: shiftRepo,
		retention: retention,
		userAgent: userAgent,
		now:       time.Now,
	}
}

// Sync runs the whole pipeline for user and returns the number of calendar
// events written. Portal failures abort the run; feed and archive failures
// are logged and the run continues without them.
func (s *Syncer) Sync(ctx context.Context, user config.User) (int, error) {
	portalShifts, err := s.portalShifts(ctx, user)
	if err != nil {
		return 0, err
	}

	shifts := portalShifts
	shifts = append(shifts, s.feedShifts(ctx, user)...)

	now := s.now()
	since := now.Add(-s.retention)

	if s.shiftRepo != nil {
		archived, err := s.shiftRepo.GetArchivedShifts(user.Name, since, s.cfg.Portal.GetLocation())
		if err != nil {
			slog.Warn("Failed to load archived shifts", "user", user.Name, "error", err)
		} else {
			slog.Debug("Loaded archived shifts", "user", user.Name, "count", len(archived))
			shifts = append(shifts, archived...)
		}
	}

	merged := s.merger.Run(shifts)

	cal, err := s.generator.Run(user.Name, merged)
	if err != nil {
		return 0, fmt.Errorf("failed to generate calendar: %w", err)
	}

	path, err := s.writer.Run(user.Name, cal)
	if err != nil {
		return 0, fmt.Errorf("failed to write calendar: %w", err)
	}

	slog.Info("Calendar written",
		"user", user.Name,
		"path", path,
		"portal_shifts", len(portalShifts),
		"events", len(merged))

	if s.shiftRepo != nil {
		s.archive(user, merged, now, since)
	}

	return len(merged), nil
}

func (s *Syncer) portalShifts(ctx context.Context, user config.User) ([]shift.Shift, error) {
	client, err := portal.NewClient(s.cfg.Portal, user.ShiftName, s.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal client: %w", err)
	}

	if err := client.Login(ctx, user.Username, user.Password); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}

	ids, err := client.ShiftIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}

	var shifts []shift.Shift
	for _, id := range ids {
		page, err := client.Shifts(ctx, id)
		if err != nil {
			return nil, err
		}
		slog.Debug("Fetched shift page", "user", user.Name, "id", id, "shifts", len(page))
		shifts = append(shifts, page...)
	}

	return shifts, nil
}

func (s *Syncer) feedShifts(ctx context.Context, user config.User) []shift.Shift {
	var shifts []shift.Shift

	for _, feed := range user.Feeds {
		data, err := s.fetcher.Run(ctx, feed.URL)
		if err != nil {
			slog.Warn("Skipping calendar feed", "user", user.Name, "feed", feed.Name, "error", err)
			continue
		}

		feedShifts, err := s.parser.Run(s.cfg.FeedLabel(feed), data)
		if err != nil {
			slog.Warn("Skipping calendar feed", "user", user.Name, "feed", feed.Name, "error", err)
			continue
		}

		slog.Debug("Fetched calendar feed", "user", user.Name, "feed", feed.Name, "shifts", len(feedShifts))
		shifts = append(shifts, feedShifts...)
	}

	return shifts
}

func (s *Syncer) archive(user config.User, merged []shift.Shift, now, since time.Time) {
	var ended []shift.Shift
	for _, sh := range merged {
		if !sh.End.After(now) {
			ended = append(ended, sh)
		}
	}

	added, err := s.shiftRepo.ArchiveShifts(user.Name, ended)
	if err != nil {
		slog.Error("Failed to archive shifts", "user", user.Name, "error", err)
		return
	}

	pruned, err := s.shiftRepo.PruneShifts(user.Name, since)
	if err != nil {
		slog.Error("Failed to prune archived shifts", "user", user.Name, "error", err)
		return
	}

	slog.Debug("Archive updated", "user", user.Name, "added", added, "pruned", pruned)
}
