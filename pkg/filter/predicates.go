package filter

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/arthur-debert/sortnbackup/pkg/metadata"
)

// Predicate tests one fact about an entry. Expensive facts go through the
// metadata cache; an error means the fact could not be determined and the
// evaluator treats the predicate as false.
type Predicate interface {
	Name() string
	Match(e metadata.Entry, cache *metadata.Cache) (bool, error)
}

// IsFile matches regular files.
type IsFile struct{}

func (IsFile) Name() string { return "is_file" }

func (IsFile) Match(e metadata.Entry, cache *metadata.Cache) (bool, error) {
	info, err := cache.Stat(e)
	if err != nil {
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// IsDir matches directories.
type IsDir struct{}

func (IsDir) Name() string { return "is_dir" }

func (IsDir) Match(e metadata.Entry, cache *metadata.Cache) (bool, error) {
	info, err := cache.Stat(e)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// HasExtension matches entries whose extension is one of a set,
// case-insensitively. Entries without an extension never match.
type HasExtension struct {
	exts map[string]struct{}
}

// NewHasExtension builds the predicate from extensions without dots.
func NewHasExtension(exts []string) *HasExtension {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &HasExtension{exts: set}
}

func (p *HasExtension) Name() string { return "has_extension" }

func (p *HasExtension) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	ext := e.Ext()
	if ext == "" {
		return false, nil
	}
	_, ok := p.exts[strings.ToLower(ext)]
	return ok, nil
}

// FileName matches the final path component exactly, case-insensitively,
// extension included.
type FileName struct {
	Value string
}

func (p *FileName) Name() string { return "file_name_is" }

func (p *FileName) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	return strings.EqualFold(e.Name(), p.Value), nil
}

// FileNameRegex matches the final path component against a pattern
// compiled at configuration time.
type FileNameRegex struct {
	Pattern *regexp.Regexp
}

func (p *FileNameRegex) Name() string { return "file_name_matches_regex" }

func (p *FileNameRegex) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	return p.Pattern.MatchString(e.Name()), nil
}

// PathRegex matches the full relative path (slash-separated) against a
// pattern compiled at configuration time.
type PathRegex struct {
	Pattern *regexp.Regexp
}

func (p *PathRegex) Name() string { return "path_matches_regex" }

func (p *PathRegex) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	return p.Pattern.MatchString(filepath.ToSlash(e.RelPath)), nil
}

// InFolder matches entries anywhere below the given folder (relative to
// the source root). The folder itself does not match.
type InFolder struct {
	Folder string
}

func (p *InFolder) Name() string { return "in_folder" }

func (p *InFolder) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	folder := cleanRel(p.Folder)
	rel := filepath.ToSlash(e.RelPath)
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if dir == folder {
			return true, nil
		}
	}
	return false, nil
}

// DirectlyInFolder matches entries exactly one level below the folder.
type DirectlyInFolder struct {
	Folder string
}

func (p *DirectlyInFolder) Name() string { return "directly_in_folder" }

func (p *DirectlyInFolder) Match(e metadata.Entry, _ *metadata.Cache) (bool, error) {
	return path.Dir(filepath.ToSlash(e.RelPath)) == cleanRel(p.Folder), nil
}

// HasImgMetadata matches entries that decode as an image. Decoding is
// format-sniffed, not extension-trusted, and cached per entry.
type HasImgMetadata struct{}

func (HasImgMetadata) Name() string { return "has_img_metadata" }

func (HasImgMetadata) Match(e metadata.Entry, cache *metadata.Cache) (bool, error) {
	if _, err := cache.Image(e); err != nil {
		return false, err
	}
	return true, nil
}

// HasImgDateTime matches entries that decode as an image and carry an
// embedded capture timestamp. It never matches where HasImgMetadata
// would not.
type HasImgDateTime struct{}

func (HasImgDateTime) Name() string { return "has_img_date_time" }

func (HasImgDateTime) Match(e metadata.Entry, cache *metadata.Cache) (bool, error) {
	meta, err := cache.Image(e)
	if err != nil {
		return false, err
	}
	return meta.HasDateTime, nil
}

// ImgSize matches images whose pixel dimensions satisfy the bounds. A nil
// bound is unbounded; both dimensions must satisfy each present bound.
type ImgSize struct {
	Min *int
	Max *int
}

func (p *ImgSize) Name() string { return "img_size" }

func (p *ImgSize) Match(e metadata.Entry, cache *metadata.Cache) (bool, error) {
	meta, err := cache.Image(e)
	if err != nil {
		return false, err
	}
	if p.Min != nil && !meta.EnsureMin(*p.Min) {
		return false, nil
	}
	if p.Max != nil && !meta.EnsureMax(*p.Max) {
		return false, nil
	}
	return true, nil
}

// cleanRel normalizes a configured folder path to the slash form used for
// comparisons. Configs may use forward slashes on any platform.
func cleanRel(p string) string {
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "" {
		return "."
	}
	return cleaned
}
