package assets

import "errors"

// AssetResolver reads each asset from the first loader that has it. A
// loader reporting anything other than "not found" stops the search.
type AssetResolver struct {
	loaders []AssetLoader
}

// NewAssetResolver layers a FilesystemLoader over dir, when dir is set, on
// top of the embedded assets.
func NewAssetResolver(dir string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if dir != "" {
		custom, err := NewFilesystemLoader(dir)
		if err != nil {
			return nil, err
		}
		r.loaders = append(r.loaders, custom)
	}
	r.loaders = append(r.loaders, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(AssetLoader.LoadStyle, name)
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(AssetLoader.LoadTemplate, name)
}

func (r *AssetResolver) first(load func(AssetLoader, string) (string, error), name string) (string, error) {
	var err error
	for _, l := range r.loaders {
		var content string
		content, err = load(l, name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", err
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
