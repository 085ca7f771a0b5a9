// Package sqlite stores projects in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/glebarez/sqlite"
	"github.com/xaionaro-go/audiosync/pkg/project"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const DefaultDBFile = "audiosync.sqlite3"

type Store struct {
	DB *gorm.DB
	db *sql.DB
}

var _ project.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("unable to create the directory '%s': %w", dir, err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open the sqlite db '%s': %w", dbPath, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unable to get sql.DB from gorm: %w", err)
	}
	// SQLite allows only one writer anyway
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&projectRecord{}, &audioFileRecord{}, &segmentRecord{}, &speakerRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("unable to migrate the db: %w", err)
	}

	return &Store{DB: db, db: sqlDB}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func deleteChildren(tx *gorm.DB, projectID string) error {
	for _, model := range []any{&audioFileRecord{}, &segmentRecord{}, &speakerRecord{}} {
		if err := tx.Where("project_id = ?", projectID).Delete(model).Error; err != nil {
			return fmt.Errorf("unable to delete %T of project %s: %w", model, projectID, err)
		}
	}
	return nil
}

func (s *Store) Save(ctx context.Context, p *project.Project) (_err error) {
	logger.Tracef(ctx, "Save(%s)", p.ID)
	defer func() { logger.Tracef(ctx, "/Save(%s): %v", p.ID, _err) }()

	if p.ID == "" {
		return fmt.Errorf("project ID is mandatory")
	}
	updated := time.Now()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := projectRecord{
			ID:      p.ID,
			Name:    p.Name,
			Created: p.Created,
			Updated: updated,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error; err != nil {
			return fmt.Errorf("unable to upsert the project: %w", err)
		}

		if err := deleteChildren(tx, p.ID); err != nil {
			return err
		}

		if len(p.AudioFiles) > 0 {
			files := make([]audioFileRecord, 0, len(p.AudioFiles))
			for idx, f := range p.AudioFiles {
				files = append(files, audioFileRecord{
					ProjectID: p.ID,
					Position:  idx,
					ID:        f.ID,
					Name:      f.Name,
					Data:      f.Data,
					Duration:  f.Duration,
					Offset:    f.Offset,
					Volume:    f.Volume,
					Muted:     f.Muted,
				})
			}
			if err := tx.Create(&files).Error; err != nil {
				return fmt.Errorf("unable to store the audio files: %w", err)
			}
		}

		if len(p.Transcript.Segments) > 0 {
			segments := make([]segmentRecord, 0, len(p.Transcript.Segments))
			for idx, seg := range p.Transcript.Segments {
				segments = append(segments, segmentRecord{
					ProjectID: p.ID,
					Position:  idx,
					ID:        seg.ID,
					Start:     seg.Start,
					End:       seg.End,
					Text:      seg.Text,
					Speaker:   seg.Speaker,
				})
			}
			if err := tx.Create(&segments).Error; err != nil {
				return fmt.Errorf("unable to store the transcript: %w", err)
			}
		}

		if len(p.Speakers) > 0 {
			speakers := make([]speakerRecord, 0, len(p.Speakers))
			for idx, speaker := range p.Speakers {
				speakers = append(speakers, speakerRecord{
					ProjectID: p.ID,
					Position:  idx,
					ID:        speaker.ID,
					Name:      speaker.Name,
					Prefix:    speaker.Prefix,
				})
			}
			if err := tx.Create(&speakers).Error; err != nil {
				return fmt.Errorf("unable to store the speakers: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	p.Updated = updated
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (_ret *project.Project, _err error) {
	logger.Tracef(ctx, "Load(%s)", id)
	defer func() { logger.Tracef(ctx, "/Load(%s): %v", id, _err) }()

	db := s.DB.WithContext(ctx)

	var rec projectRecord
	err := db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w '%s': %w", project.ErrProjectNotFound, id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query the project '%s': %w", id, err)
	}

	return s.loadChildren(db, rec)
}

func (s *Store) loadChildren(db *gorm.DB, rec projectRecord) (*project.Project, error) {
	p := &project.Project{
		ID:      rec.ID,
		Name:    rec.Name,
		Created: rec.Created,
		Updated: rec.Updated,
	}

	var files []audioFileRecord
	if err := db.Where("project_id = ?", rec.ID).Order("position").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("unable to query the audio files of '%s': %w", rec.ID, err)
	}
	for _, f := range files {
		p.AudioFiles = append(p.AudioFiles, &project.AudioFile{
			ID:       f.ID,
			Name:     f.Name,
			Data:     f.Data,
			Duration: f.Duration,
			Offset:   f.Offset,
			Volume:   f.Volume,
			Muted:    f.Muted,
		})
	}

	var segments []segmentRecord
	if err := db.Where("project_id = ?", rec.ID).Order("position").Find(&segments).Error; err != nil {
		return nil, fmt.Errorf("unable to query the transcript of '%s': %w", rec.ID, err)
	}
	for _, seg := range segments {
		p.Transcript.Segments = append(p.Transcript.Segments, project.Segment{
			ID:      seg.ID,
			Start:   seg.Start,
			End:     seg.End,
			Text:    seg.Text,
			Speaker: seg.Speaker,
		})
	}

	var speakers []speakerRecord
	if err := db.Where("project_id = ?", rec.ID).Order("position").Find(&speakers).Error; err != nil {
		return nil, fmt.Errorf("unable to query the speakers of '%s': %w", rec.ID, err)
	}
	for _, speaker := range speakers {
		p.Speakers = append(p.Speakers, project.Speaker{
			ID:     speaker.ID,
			Name:   speaker.Name,
			Prefix: speaker.Prefix,
		})
	}

	return p, nil
}

// List returns all the projects, the most recently updated first.
func (s *Store) List(ctx context.Context) (_ret []*project.Project, _err error) {
	logger.Tracef(ctx, "List()")
	defer func() { logger.Tracef(ctx, "/List(): %d %v", len(_ret), _err) }()

	db := s.DB.WithContext(ctx)

	var recs []projectRecord
	if err := db.Order("updated DESC").Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("unable to query the projects: %w", err)
	}

	result := make([]*project.Project, 0, len(recs))
	for _, rec := range recs {
		p, err := s.loadChildren(db, rec)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *Store) Delete(ctx context.Context, id string) (_err error) {
	logger.Tracef(ctx, "Delete(%s)", id)
	defer func() { logger.Tracef(ctx, "/Delete(%s): %v", id, _err) }()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&projectRecord{})
		if res.Error != nil {
			return fmt.Errorf("unable to delete the project '%s': %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w '%s'", project.ErrProjectNotFound, id)
		}
		return nil
	})
}
