// Package catalog holds the song metadata catalog for a game as immutable snapshots.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// FileName is the catalog document name inside a game resource directory.
const FileName = "data.json"

var (
	ErrCatalogDecode = errors.New("catalog document could not be decoded")
)

// Song is a single catalog track record.
type Song struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	ImageName string `json:"imageName"`
	Version   string `json:"version"`
}

// Document is the on-disk catalog format.
type Document struct {
	Songs []Song `json:"songs"`
}

type songKey struct {
	title  string
	artist string
}

// Snapshot is a read-only view of a catalog. It is never modified after publication.
type Snapshot struct {
	Version  uint64
	LoadedAt time.Time
	Songs    []Song

	byKey map[songKey]int
}

// NewSnapshot indexes songs. When title and artist collide the first record wins.
func NewSnapshot(version uint64, songs []Song) *Snapshot {
	byKey := make(map[songKey]int, len(songs))
	for i, song := range songs {
		key := songKey{song.Title, song.Artist}
		if _, ok := byKey[key]; !ok {
			byKey[key] = i
		}
	}
	return &Snapshot{
		Version:  version,
		LoadedAt: time.Now(),
		Songs:    songs,
		byKey:    byKey,
	}
}

// Lookup finds a song by exact title and artist.
func (s *Snapshot) Lookup(title string, artist string) (Song, bool) {
	if s == nil {
		return Song{}, false
	}
	idx, ok := s.byKey[songKey{title, artist}]
	if !ok {
		return Song{}, false
	}
	return s.Songs[idx], true
}

// Len returns the number of songs in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Songs)
}

// Versions returns the distinct version labels in catalog order.
func (s *Snapshot) Versions() []string {
	if s == nil {
		return nil
	}
	return lo.Uniq(lo.Map(s.Songs, func(song Song, _ int) string { return song.Version }))
}

// Decode parses a catalog document.
func Decode(data []byte) (*Document, error) {
	doc := new(Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrap(ErrCatalogDecode, err.Error())
	}
	return doc, nil
}

// Store publishes catalog snapshots for one game directory.
type Store struct {
	dir     string
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	logger  *zap.Logger
}

// NewStore returns a store for the catalog in dir. It starts with an empty snapshot; call
// Reload to read the document from disk.
func NewStore(dir string) *Store {
	s := &Store{
		dir:    dir,
		logger: zap.L().With(zap.String("subsystem", "catalog"), zap.String("dir", dir)),
	}
	s.current.Store(NewSnapshot(0, nil))
	return s
}

// Path returns the catalog document path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Snapshot returns the currently published snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Publish installs songs as a new snapshot and returns it.
func (s *Store) Publish(songs []Song) *Snapshot {
	snap := NewSnapshot(s.version.Add(1), songs)
	s.current.Store(snap)
	s.logger.Info("Published catalog snapshot",
		zap.Uint64("version", snap.Version), zap.Int("songs", snap.Len()))
	return snap
}

// Reload reads the catalog document from disk and publishes it. On failure the current
// snapshot is left in place.
func (s *Store) Reload() (*Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return s.Snapshot(), errors.Wrap(err, "Reload: read catalog")
	}
	doc, err := Decode(data)
	if err != nil {
		return s.Snapshot(), errors.Wrapf(err, "Reload: %s", s.Path())
	}
	return s.Publish(doc.Songs), nil
}
