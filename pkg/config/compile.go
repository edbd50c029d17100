package config

import (
	"regexp"

	"github.com/arthur-debert/sortnbackup/pkg/errors"
	"github.com/arthur-debert/sortnbackup/pkg/filter"
	"github.com/arthur-debert/sortnbackup/pkg/pathtmpl"
)

// compile turns the raw on-disk shape into the typed configuration,
// validating every reference on the way.
func compile(raw *rawConfig) (*Config, error) {
	if len(raw.Sources) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "configuration has no sources")
	}

	cfg := &Config{
		Sources: make(map[string]Source, len(raw.Sources)),
		Targets: make(map[string]string, len(raw.Targets)),
	}

	for id, s := range raw.Sources {
		if s.Path == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "source %q has no path", id)
		}
		cfg.Sources[id] = Source{
			Path:        s.Path,
			IgnorePaths: s.IgnorePaths,
			Disabled:    s.Disabled,
		}
	}

	for id, path := range raw.Targets {
		if path == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "target %q has no path", id)
		}
		cfg.Targets[id] = path
	}

	for i, g := range raw.FileGroups {
		if g.Name == "" {
			return nil, errors.Newf(errors.ErrConfigValid, "file group %d has no name", i)
		}

		scope, err := compileScope(g.Sources)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigValid, "file group %q", g.Name)
		}
		for _, id := range scope.IDs {
			if _, ok := cfg.Sources[id]; !ok {
				return nil, errors.Newf(errors.ErrSourceNotFound,
					"file group %q references unknown source %q", g.Name, id)
			}
		}

		if g.Filter == nil {
			return nil, errors.Newf(errors.ErrConfigValid, "file group %q has no filter", g.Name)
		}
		expr, err := compileFilter(g.Filter)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "file group %q", g.Name)
		}

		rule, err := compileRule(g.Rule)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "file group %q", g.Name)
		}
		if rule.Target != "" {
			if _, ok := cfg.Targets[rule.Target]; !ok {
				return nil, errors.Newf(errors.ErrTargetNotFound,
					"file group %q references unknown target %q", g.Name, rule.Target)
			}
		}

		cfg.Groups = append(cfg.Groups, FileGroup{
			Name:   g.Name,
			Scope:  scope,
			Filter: expr,
			Rule:   rule,
		})
	}

	settings, err := compileSettings(raw.Settings)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings

	return cfg, nil
}

func compileSettings(raw rawSettings) (Settings, error) {
	s := Settings{FileSizeStyle: SizeBinary, CollisionPolicy: CollisionAsk}

	switch raw.FileSizeStyle {
	case "", "binary":
	case "decimal":
		s.FileSizeStyle = SizeDecimal
	default:
		return s, errors.Newf(errors.ErrConfigValid,
			"unknown file_size_style %q (want binary or decimal)", raw.FileSizeStyle)
	}

	switch CollisionPolicy(raw.CollisionPolicy) {
	case "":
	case CollisionAsk, CollisionSkip, CollisionOverwrite, CollisionRename, CollisionFail:
		s.CollisionPolicy = CollisionPolicy(raw.CollisionPolicy)
	default:
		return s, errors.Newf(errors.ErrConfigValid,
			"unknown collision_policy %q", raw.CollisionPolicy)
	}

	return s, nil
}

func compileScope(v interface{}) (SourceScope, error) {
	if v == nil {
		return SourceScope{Mode: ScopeAll}, nil
	}
	if s, ok := asString(v); ok {
		if s == "all" {
			return SourceScope{Mode: ScopeAll}, nil
		}
		return SourceScope{}, errors.Newf(errors.ErrConfigValid,
			"unknown source scope %q (want all, only or except)", s)
	}
	m, ok := asMap(v)
	if !ok {
		return SourceScope{}, errors.New(errors.ErrConfigValid, "source scope must be a string or map")
	}
	key, val, err := singleKey(m)
	if err != nil {
		return SourceScope{}, err
	}
	ids, ok := asStringSlice(val)
	if !ok {
		return SourceScope{}, errors.Newf(errors.ErrConfigValid,
			"source scope %q needs a list of source ids", key)
	}
	switch key {
	case "only":
		return SourceScope{Mode: ScopeOnly, IDs: ids}, nil
	case "except":
		return SourceScope{Mode: ScopeExcept, IDs: ids}, nil
	}
	return SourceScope{}, errors.Newf(errors.ErrConfigValid, "unknown source scope %q", key)
}

// compileFilter builds a filter expression from its schemaless form: a
// bare predicate name, or a single-key map naming a combinator or a
// parameterized predicate.
func compileFilter(v interface{}) (*filter.Expr, error) {
	if s, ok := asString(v); ok {
		return filterByName(s)
	}

	m, ok := asMap(v)
	if !ok {
		return nil, errors.New(errors.ErrConfigValid, "filter must be a string or single-key map")
	}
	key, val, err := singleKey(m)
	if err != nil {
		return nil, err
	}

	switch key {
	case "all", "any":
		items, ok := asList(val)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "%s needs a list of filters", key)
		}
		children := make([]*filter.Expr, 0, len(items))
		for _, item := range items {
			child, err := compileFilter(item)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if key == "all" {
			return filter.All(children...), nil
		}
		return filter.Any(children...), nil

	case "not":
		child, err := compileFilter(val)
		if err != nil {
			return nil, err
		}
		return filter.Not(child), nil

	case "catch_all", "is_file", "is_dir", "has_img_metadata", "has_img_date_time":
		// Also accepted in map form with an empty value.
		return filterByName(key)

	case "has_extension":
		exts, ok := asStringSlice(val)
		if !ok || len(exts) == 0 {
			return nil, errors.New(errors.ErrConfigValid, "has_extension needs a list of extensions")
		}
		return filter.Pred(filter.NewHasExtension(exts)), nil

	case "file_name":
		s, ok := asString(val)
		if !ok {
			return nil, errors.New(errors.ErrConfigValid, "file_name needs a string")
		}
		return filter.Pred(&filter.FileName{Value: s}), nil

	case "file_name_matches_regex", "path_matches_regex":
		s, ok := asString(val)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "%s needs a pattern string", key)
		}
		re, err := regexp.Compile(s)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrBadRegex, "compiling %q", s)
		}
		if key == "file_name_matches_regex" {
			return filter.Pred(&filter.FileNameRegex{Pattern: re}), nil
		}
		return filter.Pred(&filter.PathRegex{Pattern: re}), nil

	case "in_folder", "directly_in_folder":
		s, ok := asString(val)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "%s needs a folder path", key)
		}
		if key == "in_folder" {
			return filter.Pred(&filter.InFolder{Folder: s}), nil
		}
		return filter.Pred(&filter.DirectlyInFolder{Folder: s}), nil

	case "img_size":
		m, ok := asMap(val)
		if !ok {
			return nil, errors.New(errors.ErrConfigValid, "img_size needs a map with min and/or max")
		}
		p := &filter.ImgSize{}
		for k, bound := range m {
			n, ok := asInt(bound)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigValid, "img_size %s must be an integer", k)
			}
			switch k {
			case "min":
				p.Min = &n
			case "max":
				p.Max = &n
			default:
				return nil, errors.Newf(errors.ErrConfigValid, "img_size has unknown key %q", k)
			}
		}
		return filter.Pred(p), nil
	}

	return nil, errors.Newf(errors.ErrConfigValid, "unknown filter %q", key)
}

func filterByName(name string) (*filter.Expr, error) {
	switch name {
	case "catch_all":
		return filter.CatchAll(), nil
	case "is_file":
		return filter.Pred(filter.IsFile{}), nil
	case "is_dir":
		return filter.Pred(filter.IsDir{}), nil
	case "has_img_metadata":
		return filter.Pred(filter.HasImgMetadata{}), nil
	case "has_img_date_time":
		return filter.Pred(filter.HasImgDateTime{}), nil
	}
	return nil, errors.Newf(errors.ErrConfigValid, "unknown filter %q", name)
}

// compileRule builds a rule; a missing rule means traverse.
func compileRule(v interface{}) (Rule, error) {
	if v == nil {
		return Rule{Kind: RuleTraverse}, nil
	}
	if s, ok := asString(v); ok {
		switch s {
		case "ignore":
			return Rule{Kind: RuleIgnore}, nil
		case "traverse":
			return Rule{Kind: RuleTraverse}, nil
		}
		return Rule{}, errors.Newf(errors.ErrConfigValid, "unknown rule %q", s)
	}

	m, ok := asMap(v)
	if !ok {
		return Rule{}, errors.New(errors.ErrConfigValid, "rule must be a string or single-key map")
	}
	key, val, err := singleKey(m)
	if err != nil {
		return Rule{}, err
	}
	args, ok := asMap(val)
	if !ok {
		return Rule{}, errors.Newf(errors.ErrConfigValid, "rule %s needs a map of arguments", key)
	}

	target, _ := asString(args["target"])
	if target == "" {
		return Rule{}, errors.Newf(errors.ErrConfigValid, "rule %s needs a target", key)
	}

	switch key {
	case "copy_exact":
		return Rule{Kind: RuleCopyExact, Target: target}, nil

	case "copy_to":
		tmpl, err := compileTemplate(args["path"])
		if err != nil {
			return Rule{}, err
		}
		return Rule{Kind: RuleCopyTo, Target: target, Template: tmpl}, nil

	case "log_file":
		tmpl, err := compileTemplate(args["log_file"])
		if err != nil {
			return Rule{}, err
		}
		full, _ := asBool(args["full_path"])
		return Rule{Kind: RuleLogFile, Target: target, Template: tmpl, FullPath: full}, nil
	}

	return Rule{}, errors.Newf(errors.ErrConfigValid, "unknown rule %q", key)
}

func compileTemplate(v interface{}) (pathtmpl.Template, error) {
	items, ok := asList(v)
	if !ok || len(items) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "path template needs a non-empty list of elements")
	}
	tmpl := make(pathtmpl.Template, 0, len(items))
	for _, item := range items {
		el, err := compileElement(item)
		if err != nil {
			return nil, err
		}
		tmpl = append(tmpl, el)
	}
	return tmpl, nil
}

func compileElement(v interface{}) (pathtmpl.Element, error) {
	if s, ok := asString(v); ok {
		switch s {
		case "file_name_with_extension":
			return pathtmpl.Element{Kind: pathtmpl.ElemFileNameWithExtension}, nil
		case "file_name_without_extension":
			return pathtmpl.Element{Kind: pathtmpl.ElemFileNameWithoutExtension}, nil
		case "file_extension":
			return pathtmpl.Element{Kind: pathtmpl.ElemFileExtension}, nil
		case "original_path":
			return pathtmpl.Element{Kind: pathtmpl.ElemOriginalPath}, nil
		case "original_path_without_file_name":
			return pathtmpl.Element{Kind: pathtmpl.ElemOriginalPathWithoutFileName}, nil
		case "direct_parent_folder":
			return pathtmpl.Element{Kind: pathtmpl.ElemDirectParentFolder}, nil
		}
		return pathtmpl.Element{}, errors.Newf(errors.ErrConfigValid, "unknown path element %q", s)
	}

	m, ok := asMap(v)
	if !ok {
		return pathtmpl.Element{}, errors.New(errors.ErrConfigValid,
			"path element must be a string or single-key map")
	}
	key, val, err := singleKey(m)
	if err != nil {
		return pathtmpl.Element{}, err
	}

	switch key {
	case "file_name":
		s, ok := asString(val)
		if !ok {
			return pathtmpl.Element{}, errors.New(errors.ErrConfigValid, "file_name needs a string")
		}
		return pathtmpl.Literal(s), nil

	case "img_date_time", "access_time", "created_time", "modified_time":
		s, ok := asString(val)
		if !ok {
			return pathtmpl.Element{}, errors.Newf(errors.ErrConfigValid,
				"%s needs a time format string", key)
		}
		format, err := pathtmpl.ParseFormat(s)
		if err != nil {
			return pathtmpl.Element{}, err
		}
		var src pathtmpl.TimeSource
		switch key {
		case "img_date_time":
			src = pathtmpl.TimeImage
		case "access_time":
			src = pathtmpl.TimeAccess
		case "created_time":
			src = pathtmpl.TimeCreated
		case "modified_time":
			src = pathtmpl.TimeModified
		}
		return pathtmpl.FormattedTime(src, format), nil

	case "merge", "merge_strings":
		items, ok := asList(val)
		if !ok || len(items) == 0 {
			return pathtmpl.Element{}, errors.New(errors.ErrConfigValid,
				"merge needs a non-empty list of elements")
		}
		children := make([]pathtmpl.Element, 0, len(items))
		for _, item := range items {
			child, err := compileElement(item)
			if err != nil {
				return pathtmpl.Element{}, err
			}
			children = append(children, child)
		}
		return pathtmpl.Merge(children...), nil
	}

	return pathtmpl.Element{}, errors.Newf(errors.ErrConfigValid, "unknown path element %q", key)
}
