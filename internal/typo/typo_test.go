// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package typo

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/pkg/types"
)

const prolog = `<?xml version="1.0" encoding="UTF-8"?>
<?xml-model href="https://music-encoding.org/schema/5.1/mei-all.rng" type="application/xml" schematypens="http://relaxng.org/ns/structure/1.0"?>
`

func withMonogr(title string) string {
	return prolog + `<mei xmlns="http://www.music-encoding.org/ns/mei"><meiHead><fileDesc><sourceDesc><source><biblStruct><monogr><title>` +
		title + `</title></monogr></biblStruct></source></sourceDesc></fileDesc></meiHead><music/></mei>`
}

const typoTitle = "Ein newgeordent kustliche vnerweisung Lautenbuch"

func write(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFixFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Result
	}{
		{"typo", withMonogr(typoTitle), ResultFixed},
		{"already correct", withMonogr("Ein newgeordent kunstliche vnderweisung"), ResultNoTypo},
		{"no monogr", prolog + `<mei xmlns="http://www.music-encoding.org/ns/mei"><meiHead><titleStmt><title>kustliche vnerweisung</title></titleStmt></meiHead></mei>`, ResultNoTitle},
		{"malformed", `<mei xmlns="http://www.music-encoding.org/ns/mei"><meiHead></mei>`, ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, t.TempDir(), "piece_GLT.mei", tt.content)
			f := New(types.TypoConfig{}, zap.NewNop(), &bytes.Buffer{})

			got, err := f.FixFile(path)
			assert.Equal(t, tt.want, got)
			if tt.want == ResultFailed {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			if tt.want == ResultFixed {
				assert.Contains(t, string(data), "kunstliche vnderweisung")
				assert.NotContains(t, string(data), "kustliche")
				assert.True(t, strings.HasPrefix(string(data), prolog), "prolog kept")
				assert.Equal(t, 1, strings.Count(string(data), "<?xml-model"))
			} else {
				assert.Equal(t, tt.content, string(data), "file untouched")
			}
		})
	}
}

func TestFixFile_DryRun(t *testing.T) {
	path := write(t, t.TempDir(), "piece.mei", withMonogr(typoTitle))
	f := New(types.TypoConfig{DryRun: true}, nil, &bytes.Buffer{})

	got, err := f.FixFile(path)
	require.NoError(t, err)
	assert.Equal(t, ResultFixed, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, withMonogr(typoTitle), string(data))
}

func TestApply(t *testing.T) {
	f := New(types.TypoConfig{Replacements: []types.Replacement{
		{From: "Lautten", To: "Lauten"},
		{From: "", To: "ignored"},
		{From: "Kunstlich", To: "Künstlich"},
	}}, nil, nil)

	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"no match", "Tabulatur", "Tabulatur", false},
		{"single", "Lautten buch", "Lauten buch", true},
		{"chained", "Kunstlich Lautten", "Künstlich Lauten", true},
		// "u" followed by a combining diaeresis normalizes to "ü".
		{"decomposed input counts as unchanged", "Lautenbu\u0308cher", "Lautenb\u00fccher", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := f.Apply(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	write(t, root, "A/one.mei", "")
	write(t, root, "A/deep/two.mei", "")
	write(t, root, "A/notes.txt", "")
	write(t, root, "converted/FLT/three.mei", "")
	write(t, root, ".git/four.mei", "")

	files, err := Discover(root, DefaultExclude)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "A", "deep", "two.mei"),
		filepath.Join(root, "A", "one.mei"),
	}, files)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	write(t, root, "A/fix_GLT.mei", withMonogr(typoTitle))
	write(t, root, "A/ok_GLT.mei", withMonogr("Tabulatur"))
	write(t, root, "B/none.mei", `<mei xmlns="http://www.music-encoding.org/ns/mei"/>`)
	bad := write(t, root, "B/bad.mei", "<mei>")
	write(t, root, "converted/GLT/fix_GLT.mei", withMonogr(typoTitle))

	var buf bytes.Buffer
	f := New(types.TypoConfig{Root: root}, zap.NewNop(), &buf)
	sum, err := f.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Fixed: 1, NoTitle: 1, NoTypo: 1, Failed: 1}, sum)

	out := buf.String()
	assert.Contains(t, out, "Processing 4 MEI files (excluding converted)")
	assert.Contains(t, out, "failed:    "+bad)
	assert.NotContains(t, out, "ok_GLT.mei")
	assert.True(t, strings.HasSuffix(out, "\nFixed 1 files total\n"))

	untouched, err := os.ReadFile(filepath.Join(root, "converted", "GLT", "fix_GLT.mei"))
	require.NoError(t, err)
	assert.Contains(t, string(untouched), "kustliche vnerweisung")
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	write(t, root, "fix.mei", withMonogr(typoTitle))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(types.TypoConfig{Root: root}, nil, &bytes.Buffer{})
	_, err := f.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
