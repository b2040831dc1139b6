package builder

import "github.com/tatianab/levelforge/internal/vimlit"

// ManifestEntry is one line of manifest.vim.
type ManifestEntry struct {
	ID    int
	Dir   string
	Title string
}

// MarshalLiteral renders e as {'id': ..., 'dir': ..., 'title': ...}.
func (e ManifestEntry) MarshalLiteral() (vimlit.Value, error) {
	return vimlit.Dict{
		{Key: "id", Value: vimlit.Int(e.ID)},
		{Key: "dir", Value: vimlit.String(e.Dir)},
		{Key: "title", Value: vimlit.String(e.Title)},
	}, nil
}

// Manifest renders the level list written to manifest.vim.
func Manifest(entries []ManifestEntry) (string, error) {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	text, err := vimlit.Marshal(entries)
	if err != nil {
		return "", err
	}
	return text + "\n", nil
}
