package sqlite

import (
	"time"
)

type projectRecord struct {
	ID      string `gorm:"primaryKey;type:varchar(36)"`
	Name    string `gorm:"index:idx_project_name"`
	Created time.Time
	Updated time.Time `gorm:"index:idx_project_updated"`
}

func (projectRecord) TableName() string { return "projects" }

type audioFileRecord struct {
	RowID     uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID string `gorm:"type:varchar(36);index:idx_audio_file_project"`
	Position  int
	ID        string `gorm:"type:varchar(36)"`
	Name      string
	Data      []byte
	Duration  time.Duration
	Offset    time.Duration
	Volume    float64
	Muted     bool
}

func (audioFileRecord) TableName() string { return "audio_files" }

type segmentRecord struct {
	RowID     uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID string `gorm:"type:varchar(36);index:idx_segment_project"`
	Position  int
	ID        string `gorm:"type:varchar(36)"`
	Start     time.Duration
	End       time.Duration
	Text      string
	Speaker   string
}

func (segmentRecord) TableName() string { return "segments" }

type speakerRecord struct {
	RowID     uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID string `gorm:"type:varchar(36);index:idx_speaker_project"`
	Position  int
	ID        string `gorm:"type:varchar(36)"`
	Name      string
	Prefix    string
}

func (speakerRecord) TableName() string { return "speakers" }
