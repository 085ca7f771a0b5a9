// Package project contains a set of recordings of the same session
// together with their alignment and transcript.
package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNoAudioFiles    = errors.New("the project has no audio files")
)

type Project struct {
	ID         string
	Name       string
	Created    time.Time
	Updated    time.Time
	AudioFiles []*AudioFile
	Transcript Transcript
	Speakers   []Speaker
}

type AudioFile struct {
	ID   string
	Name string

	// Data is the encoded file as it was imported.
	Data []byte

	Duration time.Duration

	// Offset is where the file starts on the common timeline, relative to
	// the first file of the project.
	Offset time.Duration

	Volume float64
	Muted  bool
}

type Transcript struct {
	Segments []Segment
}

type Segment struct {
	ID      string
	Start   time.Duration
	End     time.Duration
	Text    string
	Speaker string
}

type Speaker struct {
	ID     string
	Name   string
	Prefix string
}

func New(name string) *Project {
	now := time.Now()
	return &Project{
		ID:      uuid.NewString(),
		Name:    name,
		Created: now,
		Updated: now,
	}
}

// AddAudioFile appends a file at offset zero with the unity volume.
func (p *Project) AddAudioFile(name string, data []byte) *AudioFile {
	f := &AudioFile{
		ID:     uuid.NewString(),
		Name:   name,
		Data:   data,
		Volume: 1,
	}
	p.AudioFiles = append(p.AudioFiles, f)
	p.Updated = time.Now()
	return f
}

func (p *Project) AddSpeaker(name, prefix string) Speaker {
	s := Speaker{
		ID:     uuid.NewString(),
		Name:   name,
		Prefix: prefix,
	}
	p.Speakers = append(p.Speakers, s)
	p.Updated = time.Now()
	return s
}

func (p *Project) AddSegment(start, end time.Duration, text string, speakerID string) Segment {
	s := Segment{
		ID:      uuid.NewString(),
		Start:   start,
		End:     end,
		Text:    text,
		Speaker: speakerID,
	}
	p.Transcript.Segments = append(p.Transcript.Segments, s)
	p.Updated = time.Now()
	return s
}

func (p *Project) AudioFile(id string) *AudioFile {
	for _, f := range p.AudioFiles {
		if f.ID == id {
			return f
		}
	}
	return nil
}

type Store interface {
	// Save creates or replaces the project and sets its Updated time.
	Save(ctx context.Context, p *Project) error
	Load(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error
}
