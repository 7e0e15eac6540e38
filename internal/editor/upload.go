package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"linkpage/internal/models"
)

// MaxUploadBytes caps admin media uploads.
const MaxUploadBytes int64 = 50 << 20

const (
	TargetGallery    = "gallery"
	TargetMusicCover = "music.coverUrl"
	TargetMusicAudio = "music.audioUrl"
	profilePrefix    = "profile."
	linkPrefix       = "link:"
)

var (
	ErrUnknownTarget = errors.New("unknown upload target")
	ErrLinkNotFound  = errors.New("link not found")
	ErrFileTooLarge  = errors.New("file too large (max 50MB)")
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)

// CheckUploadSize rejects files above MaxUploadBytes.
func CheckUploadSize(size int64) error {
	if size > MaxUploadBytes {
		return ErrFileTooLarge
	}
	return nil
}

// ValidateTarget reports whether target names a field an upload can fill.
func ValidateTarget(target string) error {
	switch {
	case target == TargetGallery, target == TargetMusicCover, target == TargetMusicAudio:
		return nil
	case strings.HasPrefix(target, profilePrefix):
		if _, ok := profileImageField(strings.TrimPrefix(target, profilePrefix)); ok {
			return nil
		}
	case strings.HasPrefix(target, linkPrefix):
		if strings.TrimPrefix(target, linkPrefix) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
}

// ObjectName builds the stored file name: the target with separators
// replaced, the upload time in milliseconds and the original extension.
func ObjectName(target, filename string, now time.Time) string {
	base := strings.Trim(unsafeNameChars.ReplaceAllString(target, "-"), "-")
	if base == "" {
		base = "upload"
	}

	name := fmt.Sprintf("%s-%d", base, now.UnixMilli())
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	ext = unsafeNameChars.ReplaceAllString(ext, "")
	if ext != "" {
		name += "." + strings.ToLower(ext)
	}
	return name
}

// CheckTarget validates target against doc. A link target must name a link
// that exists in doc.
func CheckTarget(doc models.ProfileDocument, target string) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}
	if id, ok := strings.CutPrefix(target, linkPrefix); ok {
		if indexOf(doc.Links, linkID(id)) < 0 {
			return fmt.Errorf("%w: %q", ErrLinkNotFound, id)
		}
	}
	return nil
}

// ApplyUpload writes the stored file URL into the field named by target.
func ApplyUpload(
	doc models.ProfileDocument,
	target string,
	url string,
	galleryType models.MediaType,
	now time.Time,
) (models.ProfileDocument, error) {
	if err := CheckTarget(doc, target); err != nil {
		return doc, err
	}

	switch {
	case target == TargetGallery:
		return AddGalleryItem(doc, galleryType, url, now), nil

	case target == TargetMusicCover:
		doc = Clone(doc)
		doc.Music.CoverURL = url
		return doc, nil

	case target == TargetMusicAudio:
		doc = Clone(doc)
		doc.Music.AudioURL = url
		return doc, nil

	case strings.HasPrefix(target, profilePrefix):
		field, _ := profileImageField(strings.TrimPrefix(target, profilePrefix))
		doc = Clone(doc)
		*field(&doc.Profile) = url
		return doc, nil

	default:
		id := strings.TrimPrefix(target, linkPrefix)
		doc = Clone(doc)
		i := indexOf(doc.Links, linkID(id))
		doc.Links[i].Icon = models.ImageIcon(url)
		return doc, nil
	}
}

func profileImageField(name string) (func(*models.Profile) *string, bool) {
	switch name {
	case "avatarUrl":
		return func(p *models.Profile) *string { return &p.AvatarURL }, true
	case "logoUrl":
		return func(p *models.Profile) *string { return &p.LogoURL }, true
	case "bannerUrl":
		return func(p *models.Profile) *string { return &p.BannerURL }, true
	}
	return nil, false
}
