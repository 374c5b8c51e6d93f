package scaffold

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesEmbedded(t *testing.T) {
	var files []string
	err := fs.WalkDir(Templates, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"templates/pubindex.yaml.tmpl",
		"templates/dotenv.tmpl",
		"templates/content/welcome.md.tmpl",
		"templates/public/styles.css.tmpl",
	}, files)
}
