// Package corpus loads the on-disk policy corpus into immutable
// in-memory structures: the document manifest and files, the offline
// extraction pipeline's entities file, and the per-document outline
// trees. Missing or malformed enhancement files exclude the affected
// document from that index and are never fatal; the keyword/chunk path
// must stay usable with zero enhancement data.
package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lacviet-ai/quyche/pkg/chunker"
	"github.com/lacviet-ai/quyche/pkg/types"
)

// Paths names the on-disk inputs of one load pass.
type Paths struct {
	// CorpusDir holds index.json (or index.yaml) plus the document files.
	CorpusDir string
	// EntitiesFile is the offline-extracted entities JSON; optional.
	EntitiesFile string
	// TreeDir holds one <doc>_tree.json per document; optional.
	TreeDir string
}

type manifest struct {
	Documents     []manifestDoc       `json:"documents" yaml:"documents"`
	QueryMappings map[string][]string `json:"query_mappings" yaml:"query_mappings"`
}

type manifestDoc struct {
	ID            string          `json:"id" yaml:"id"`
	File          string          `json:"file" yaml:"file"`
	Title         string          `json:"title" yaml:"title"`
	Description   string          `json:"description" yaml:"description"`
	Keywords      []string        `json:"keywords" yaml:"keywords"`
	Sections      []types.Section `json:"sections" yaml:"sections"`
	EffectiveDate string          `json:"effective_date" yaml:"effective_date"`
}

type entitiesFile map[string]struct {
	Entities []rawEntity `json:"entities"`
}

type rawEntity struct {
	Class      string         `json:"class"`
	Text       string         `json:"text"`
	Attributes map[string]any `json:"attributes"`
}

// Load performs one full synchronous load pass. It returns an error
// only when the manifest exists but cannot be parsed; every other
// problem is logged and the affected document is skipped.
func Load(paths Paths, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := &Store{
		docsByID:      make(map[string]*types.Document),
		queryMappings: make(map[string][]string),
		entities:      make(map[string][]types.Entity),
		trees:         make(map[string]*types.DocumentTree),
	}

	man, err := loadManifest(paths.CorpusDir)
	if err != nil {
		return nil, err
	}
	if man == nil {
		logger.Warn("corpus manifest not found, loading empty corpus", "dir", paths.CorpusDir)
		return store, nil
	}

	store.queryMappings = man.QueryMappings
	if store.queryMappings == nil {
		store.queryMappings = make(map[string][]string)
	}

	for _, info := range man.Documents {
		docPath := filepath.Join(paths.CorpusDir, info.File)
		content, err := os.ReadFile(docPath)
		if err != nil {
			logger.Warn("document file missing, skipping", "doc_id", info.ID, "path", docPath, "error", err)
			continue
		}
		doc := &types.Document{
			ID:            info.ID,
			File:          info.File,
			Title:         info.Title,
			Description:   info.Description,
			Keywords:      info.Keywords,
			Sections:      info.Sections,
			EffectiveDate: info.EffectiveDate,
			Content:       string(content),
		}
		doc.Chunks = chunker.Split(doc.Content, doc.ID)
		store.docs = append(store.docs, doc)
		store.docsByID[doc.ID] = doc
	}

	loadEntities(store, paths.EntitiesFile, logger)
	loadTrees(store, paths.TreeDir, logger)

	logger.Info("corpus loaded",
		"documents", store.DocumentCount(),
		"chunks", store.ChunkCount(),
		"entity_docs", len(store.entities),
		"trees", len(store.trees),
	)
	return store, nil
}

// loadManifest reads index.json, falling back to index.yaml. A missing
// manifest returns (nil, nil).
func loadManifest(dir string) (*manifest, error) {
	jsonPath := filepath.Join(dir, "index.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		var man manifest
		if err := json.Unmarshal(data, &man); err != nil {
			return nil, fmt.Errorf("parse %s: %w", jsonPath, err)
		}
		return &man, nil
	}

	yamlPath := filepath.Join(dir, "index.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		var man manifest
		if err := yaml.Unmarshal(data, &man); err != nil {
			return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
		}
		return &man, nil
	}

	return nil, nil
}

func loadEntities(store *Store, path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("entities file not loaded", "path", path, "error", err)
		return
	}
	var parsed entitiesFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		logger.Warn("entities file malformed, skipping", "path", path, "error", err)
		return
	}
	for docID, docData := range parsed {
		if len(docData.Entities) == 0 {
			continue
		}
		list := make([]types.Entity, 0, len(docData.Entities))
		for _, raw := range docData.Entities {
			list = append(list, types.Entity{
				Class:      raw.Class,
				Text:       raw.Text,
				Attributes: stringifyAttributes(raw.Attributes),
			})
		}
		store.entities[docID] = list
	}
}

func loadTrees(store *Store, dir string, logger *slog.Logger) {
	if dir == "" {
		return
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*_tree.json"))
	if err != nil {
		logger.Warn("tree directory not scanned", "dir", dir, "error", err)
		return
	}
	for _, path := range matches {
		docID := strings.TrimSuffix(filepath.Base(path), "_tree.json")
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("tree file not loaded, skipping document", "doc_id", docID, "error", err)
			continue
		}
		var tree types.DocumentTree
		if err := json.Unmarshal(data, &tree); err != nil {
			logger.Warn("tree file malformed, skipping document", "doc_id", docID, "error", err)
			continue
		}
		store.trees[docID] = &tree
	}
}

// stringifyAttributes flattens attribute values to strings the same way
// the extraction pipeline's consumers expect them.
func stringifyAttributes(raw map[string]any) map[string]string {
	attrs := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			attrs[key] = v
		default:
			attrs[key] = fmt.Sprintf("%v", v)
		}
	}
	return attrs
}
