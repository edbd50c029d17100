package pathtmpl

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/metadata"
)

// Render evaluates the template against an entry and returns the path
// segments below the target root. The last segment is the destination
// file name; earlier segments are directories. Rendering is pure given
// the entry and the cache contents.
//
// original_path and original_path_without_file_name contribute their
// natural multiple segments at the top level; inside merge they
// contribute their slash-joined string form.
func Render(tmpl Template, e metadata.Entry, cache *metadata.Cache) ([]string, error) {
	var segs []string
	rel := filepath.ToSlash(e.RelPath)

	for i := range tmpl {
		el := &tmpl[i]
		switch el.Kind {
		case ElemOriginalPath:
			segs = append(segs, strings.Split(rel, "/")...)
		case ElemOriginalPathWithoutFileName:
			if dir := path.Dir(rel); dir != "." && dir != "/" {
				segs = append(segs, strings.Split(dir, "/")...)
			}
		default:
			s, err := renderSegment(el, e, cache)
			if err != nil {
				return nil, err
			}
			segs = append(segs, s)
		}
	}

	if len(segs) == 0 {
		return nil, errors.New(errors.ErrTemplateRender, "path template rendered no segments")
	}
	return segs, nil
}

// renderSegment renders one top-level element into a single segment,
// flattening merge nodes with an explicit stack.
func renderSegment(el *Element, e metadata.Entry, cache *metadata.Cache) (string, error) {
	var b strings.Builder
	stack := []*Element{el}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.Kind == ElemMerge {
			for i := len(cur.Children) - 1; i >= 0; i-- {
				stack = append(stack, &cur.Children[i])
			}
			continue
		}

		s, err := renderLeaf(cur, e, cache)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func renderLeaf(el *Element, e metadata.Entry, cache *metadata.Cache) (string, error) {
	rel := filepath.ToSlash(e.RelPath)

	switch el.Kind {
	case ElemLiteral:
		return el.Literal, nil

	case ElemFileNameWithExtension:
		return e.Name(), nil

	case ElemFileNameWithoutExtension:
		name := e.Name()
		return strings.TrimSuffix(name, filepath.Ext(name)), nil

	case ElemFileExtension:
		ext := e.Ext()
		if ext == "" {
			return "", errors.Newf(errors.ErrTemplateRender,
				"%s has no extension", e.RelPath)
		}
		return ext, nil

	case ElemOriginalPath:
		return rel, nil

	case ElemOriginalPathWithoutFileName:
		if dir := path.Dir(rel); dir != "." && dir != "/" {
			return dir, nil
		}
		return "", nil

	case ElemDirectParentFolder:
		dir := path.Dir(rel)
		if dir == "." || dir == "/" {
			return "", errors.Newf(errors.ErrTemplateRender,
				"%s has no parent folder", e.RelPath)
		}
		return path.Base(dir), nil

	case ElemFormattedTime:
		t, err := timeFor(el.Source, e, cache)
		if err != nil {
			return "", err
		}
		return el.Format.Render(t), nil
	}

	return "", errors.Newf(errors.ErrInternal, "unknown path element kind %d", el.Kind)
}

func timeFor(src TimeSource, e metadata.Entry, cache *metadata.Cache) (time.Time, error) {
	if src == TimeImage {
		meta, err := cache.Image(e)
		if err != nil {
			return time.Time{}, errors.Wrapf(err, errors.ErrMissingTimeSource,
				"%s has no image metadata", e.RelPath)
		}
		if !meta.HasDateTime {
			return time.Time{}, errors.Newf(errors.ErrMissingTimeSource,
				"%s has no embedded capture time", e.RelPath)
		}
		return meta.DateTime, nil
	}

	info, err := cache.Stat(e)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, errors.ErrMissingTimeSource,
			"%s has no stat info", e.RelPath)
	}
	switch src {
	case TimeAccess:
		return metadata.AccessTime(info), nil
	case TimeCreated:
		return metadata.CreatedTime(info), nil
	default:
		return info.ModTime(), nil
	}
}
