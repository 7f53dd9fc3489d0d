package convert

import (
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mdc/common"
	"mdc/config"
	"mdc/content"
	"mdc/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool, format common.OutputFmt, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	cfg.Document.OutputNameTemplate = template

	return &state.LocalEnv{
		Log:          logger,
		Cfg:          cfg,
		NoDirs:       noDirs,
		Format:       format,
		PageLanguage: "en",
	}
}

func setupTestContentForPath(t *testing.T) *content.Content {
	t.Helper()
	return setupTestContentForTemplate(t, "# Test Document", "docs/guide.md")
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		noDirs        bool
		transliterate bool
		template      string
		src           string
		want          string
	}{
		{
			name:   "no dirs",
			noDirs: true,
			src:    "docs/author/guide.md",
			want:   filepath.Join("/output", "guide.html"),
		},
		{
			name: "with dirs",
			src:  "docs/author/guide.md",
			want: filepath.Join("/output", "docs", "author", "guide.html"),
		},
		{
			name: "base file only",
			src:  "guide.markdown",
			want: filepath.Join("/output", "guide.html"),
		},
		{
			name:          "transliterated",
			noDirs:        true,
			transliterate: true,
			src:           "Привет Мир.md",
			want:          filepath.Join("/output", "privet-mir.html"),
		},
		{
			name:     "template",
			noDirs:   true,
			template: "{{ .Title }}",
			src:      "docs/guide.md",
			want:     filepath.Join("/output", "Test Document.html"),
		},
		{
			name:     "template with subdirectories",
			template: "{{ .Format }}/{{ .SourceFile }}",
			src:      "docs/guide.md",
			want:     filepath.Join("/output", "docs", "fragment", "guide.html"),
		},
		{
			name:          "template transliterated",
			noDirs:        true,
			transliterate: true,
			template:      "{{ .Title }}/{{ .SourceFile }}",
			src:           "docs/guide.md",
			want:          filepath.Join("/output", "test-document", "guide.html"),
		},
		{
			name:     "template cannot escape destination",
			noDirs:   true,
			template: "../../{{ .SourceFile }}",
			src:      "docs/guide.md",
			want:     filepath.Join("/output", "guide.html"),
		},
		{
			name:     "broken template falls back to default",
			noDirs:   true,
			template: "{{ .Missing }",
			src:      "docs/guide.md",
			want:     filepath.Join("/output", "guide.html"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate, common.OutputFmtFragment, tt.template)
			c := setupTestContentForPath(t)

			if got := buildOutputPath(c, tt.src, "/output", env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{path: "file", want: []string{"file"}},
		{path: filepath.Join("a", "b", "c"), want: []string{"a", "b", "c"}},
		{path: filepath.Join("a", "b") + string(filepath.Separator), want: []string{"a", "b"}},
		{path: "", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := splitAndCleanPath(tt.path); !slices.Equal(got, tt.want) {
				t.Errorf("splitAndCleanPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
