package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "documents": [
    {
      "id": "noi_quy",
      "file": "noi_quy.md",
      "title": "Nội quy lao động",
      "description": "Quy định nội bộ",
      "keywords": ["nghỉ phép", "kỷ luật"],
      "sections": [{"id": "nghi_phep", "articles": ["11", "12"]}],
      "effective_date": "2024-01-01"
    },
    {
      "id": "missing",
      "file": "missing.md",
      "title": "Không tồn tại"
    }
  ],
  "query_mappings": {
    "nghỉ phép": ["noi_quy#nghi_phep"]
  }
}`

const testDoc = `# Nội quy lao động

## Điều 11: Nghỉ phép năm

Nhân viên được nghỉ phép năm 12 ngày.`

const testEntities = `{
  "noi_quy": {
    "entities": [
      {
        "class": "LeavePolicy",
        "text": "Nghỉ phép năm 12 ngày",
        "attributes": {"rule_type": "annual_leave", "duration": 12}
      }
    ]
  }
}`

const testTree = `{
  "doc_name": "Nội quy lao động",
  "structure": [
    {"title": "Điều 11", "node_id": "d11", "summary": "Phép năm", "text": "Nội dung điều 11."}
  ]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupCorpus(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	treeDir := filepath.Join(dir, "trees")
	require.NoError(t, os.MkdirAll(treeDir, 0o755))

	writeFile(t, filepath.Join(dir, "index.json"), testManifest)
	writeFile(t, filepath.Join(dir, "noi_quy.md"), testDoc)
	writeFile(t, filepath.Join(dir, "entities.json"), testEntities)
	writeFile(t, filepath.Join(treeDir, "noi_quy_tree.json"), testTree)

	return Paths{
		CorpusDir:    dir,
		EntitiesFile: filepath.Join(dir, "entities.json"),
		TreeDir:      treeDir,
	}
}

func TestLoadFullCorpus(t *testing.T) {
	store, err := Load(setupCorpus(t), nil)
	require.NoError(t, err)

	// The document with a missing file is skipped, not fatal.
	assert.Equal(t, 1, store.DocumentCount())

	doc := store.Document("noi_quy")
	require.NotNil(t, doc)
	assert.Equal(t, "Nội quy lao động", doc.Title)
	assert.NotEmpty(t, doc.Chunks)
	assert.Equal(t, []string{"11", "12"}, doc.Sections[0].Articles)

	assert.Contains(t, store.QueryMappings(), "nghỉ phép")
}

func TestLoadEntitiesStringifiesAttributes(t *testing.T) {
	store, err := Load(setupCorpus(t), nil)
	require.NoError(t, err)

	entities := store.Entities()["noi_quy"]
	require.Len(t, entities, 1)
	assert.Equal(t, "LeavePolicy", entities[0].Class)
	// Numeric attribute values become strings.
	assert.Equal(t, "12", entities[0].Attributes["duration"])
}

func TestLoadTrees(t *testing.T) {
	store, err := Load(setupCorpus(t), nil)
	require.NoError(t, err)

	tree := store.Trees()["noi_quy"]
	require.NotNil(t, tree)
	assert.Equal(t, "Nội quy lao động", tree.DocName)
	require.Len(t, tree.Structure, 1)
	assert.Equal(t, "d11", tree.Structure[0].NodeID)
}

func TestLoadMissingManifest(t *testing.T) {
	store, err := Load(Paths{CorpusDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.Zero(t, store.DocumentCount())
}

func TestLoadMalformedManifestFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.json"), "{not json")

	_, err := Load(Paths{CorpusDir: dir}, nil)
	assert.Error(t, err)
}

func TestLoadYAMLManifestFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.yaml"), `documents:
  - id: noi_quy
    file: noi_quy.md
    title: Nội quy lao động
    keywords:
      - nghỉ phép
query_mappings:
  nghỉ phép:
    - noi_quy
`)
	writeFile(t, filepath.Join(dir, "noi_quy.md"), testDoc)

	store, err := Load(Paths{CorpusDir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.DocumentCount())
	assert.Contains(t, store.QueryMappings(), "nghỉ phép")
}

func TestLoadMalformedEnhancementsNotFatal(t *testing.T) {
	paths := setupCorpus(t)
	writeFile(t, paths.EntitiesFile, "{broken")
	writeFile(t, filepath.Join(paths.TreeDir, "noi_quy_tree.json"), "[broken")

	store, err := Load(paths, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.DocumentCount())
	assert.Empty(t, store.Entities())
	assert.Empty(t, store.Trees())
}

func TestLoadWithoutEnhancementPaths(t *testing.T) {
	paths := setupCorpus(t)
	paths.EntitiesFile = ""
	paths.TreeDir = ""

	store, err := Load(paths, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.DocumentCount())
	assert.Empty(t, store.Entities())
	assert.Empty(t, store.Trees())
}
