// Package assetstore resolves cover art, avatars and UI sprites for one game from its
// local resource directory.
package assetstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/wrouesnel/ratingcard/pkg/catalog"
	"go.uber.org/zap"

	// Covers, avatars and the fallback are WebP.
	_ "golang.org/x/image/webp"
)

const (
	// CoverDir holds downloaded cover art named by catalog image name.
	CoverDir = "cover_ori"
	// FallbackImage replaces any cover or avatar that cannot be loaded.
	FallbackImage = "cover_fallback.webp"
)

var (
	ErrInvalidImageName = errors.New("invalid image name")
	ErrAvatarFetch      = errors.New("avatar fetch failed")
)

// AvatarURLFunc maps an avatar identifier to its remote URL.
type AvatarURLFunc func(avatar string) (string, error)

type spriteKey struct {
	name string
	w, h int
}

// Store resolves images for one game. Decoded sprites are cached and shared between
// renders; they must be treated as read-only.
type Store struct {
	dir       string
	catalog   *catalog.Store
	client    *resty.Client
	avatarURL AvatarURLFunc
	sprites   sync.Map
	logger    *zap.Logger
}

// New returns a store rooted at dir. client and avatarURL may be nil, in which case every
// avatar resolves to the fallback image.
func New(game string, dir string, catalogStore *catalog.Store, client *resty.Client, avatarURL AvatarURLFunc) *Store {
	return &Store{
		dir:       dir,
		catalog:   catalogStore,
		client:    client,
		avatarURL: avatarURL,
		logger:    zap.L().With(zap.String("subsystem", "assetstore"), zap.String("game", game)),
	}
}

// Dir returns the resource directory.
func (s *Store) Dir() string {
	return s.dir
}

// Catalog returns the current catalog snapshot.
func (s *Store) Catalog() *catalog.Snapshot {
	if s.catalog == nil {
		return catalog.NewSnapshot(0, nil)
	}
	return s.catalog.Snapshot()
}

// CoverPath returns where a cover image is stored. Names that would escape the cover
// directory are rejected.
func (s *Store) CoverPath(imageName string) (string, error) {
	if imageName == "" || imageName != filepath.Base(imageName) || imageName == "." || imageName == ".." {
		return "", errors.Wrapf(ErrInvalidImageName, "%q", imageName)
	}
	return filepath.Join(s.dir, CoverDir, imageName), nil
}

// HasCover reports whether a cover image is already cached on disk.
func (s *Store) HasCover(imageName string) bool {
	path, err := s.CoverPath(imageName)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Sprite loads and caches the image at name relative to the resource directory.
func (s *Store) Sprite(name string) (image.Image, error) {
	return s.Scaled(name, 0, 0)
}

// Scaled loads name resized to w x h and caches the result. Zero sizes keep the native size.
func (s *Store) Scaled(name string, w int, h int) (image.Image, error) {
	key := spriteKey{name, w, h}
	if img, ok := s.sprites.Load(key); ok {
		return img.(image.Image), nil //nolint:forcetypeassert
	}

	var img image.Image
	if w > 0 && h > 0 {
		native, err := s.Sprite(name)
		if err != nil {
			return nil, err
		}
		img = imaging.Resize(native, w, h, imaging.Lanczos)
	} else {
		loaded, err := imaging.Open(filepath.Join(s.dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, errors.Wrapf(err, "sprite %s", name)
		}
		img = loaded
	}

	actual, _ := s.sprites.LoadOrStore(key, img)
	return actual.(image.Image), nil //nolint:forcetypeassert
}

// Fallback returns the placeholder image.
func (s *Store) Fallback() (image.Image, error) {
	return s.Sprite(FallbackImage)
}

// Cover loads a cached cover image, substituting the fallback on any failure.
func (s *Store) Cover(imageName string) (image.Image, error) {
	path, err := s.CoverPath(imageName)
	if err == nil {
		var img image.Image
		img, err = imaging.Open(path)
		if err == nil {
			return img, nil
		}
	}
	s.logger.Debug("Cover unavailable, using fallback", zap.String("image", imageName), zap.Error(err))
	return s.Fallback()
}

// CoverFor finds a song in the catalog by title and artist and loads its cover. Songs not in
// the catalog get the fallback image and ok is false.
func (s *Store) CoverFor(title string, artist string) (image.Image, catalog.Song, bool, error) {
	song, ok := s.Catalog().Lookup(title, artist)
	if !ok {
		img, err := s.Fallback()
		return img, song, false, err
	}
	img, err := s.Cover(song.ImageName)
	return img, song, true, err
}

// Avatar downloads a player avatar, substituting the fallback on any failure.
func (s *Store) Avatar(ctx context.Context, avatar string) (image.Image, error) {
	img, err := s.fetchAvatar(ctx, avatar)
	if err == nil {
		return img, nil
	}
	s.logger.Debug("Avatar unavailable, using fallback", zap.String("avatar", avatar), zap.Error(err))
	return s.Fallback()
}

func (s *Store) fetchAvatar(ctx context.Context, avatar string) (image.Image, error) {
	if s.client == nil || s.avatarURL == nil {
		return nil, errors.Wrap(ErrAvatarFetch, "no avatar source configured")
	}
	url, err := s.avatarURL(avatar)
	if err != nil {
		return nil, errors.Wrap(err, "avatar URL")
	}

	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrap(err, "avatar request")
	}
	if resp.IsError() {
		return nil, errors.Wrap(ErrAvatarFetch, fmt.Sprintf("%s returned %s", url, resp.Status()))
	}

	img, err := imaging.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrap(err, "avatar decode")
	}
	return img, nil
}
