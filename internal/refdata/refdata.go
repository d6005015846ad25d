package refdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"clearout/internal/rules"
	"clearout/internal/taxonomy"
)

//go:embed defaults/keyword_rules.json defaults/taxonomy.json defaults/brand_lexicon.json defaults/rn_registry.json
var defaultsFS embed.FS

const (
	rulesFile      = "keyword_rules.json"
	taxonomyFile   = "taxonomy.json"
	brandsFile     = "brand_lexicon.json"
	rnRegistryFile = "rn_registry.json"
)

// Store lazily loads the reference data the classifier and fusion layers
// consume: keyword rules, the category taxonomy, the brand lexicon, and the
// RN garment registry. Files found in dir override the embedded defaults;
// an empty dir serves defaults only.
type Store struct {
	dir string

	once       sync.Once
	loadErr    error
	rules      []rules.Rule
	classifier *rules.Classifier
	catalog    *taxonomy.Catalog
}

// NewStore returns a store reading overrides from dir. Data is not loaded
// until first use.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) load() {
	var ruleSet []rules.Rule
	if err := s.readAsset(rulesFile, &ruleSet); err != nil {
		s.loadErr = err
		return
	}
	var entries []taxonomy.Entry
	if err := s.readAsset(taxonomyFile, &entries); err != nil {
		s.loadErr = err
		return
	}
	var brands map[string]string
	if err := s.readAsset(brandsFile, &brands); err != nil {
		s.loadErr = err
		return
	}
	var registry map[string]string
	if err := s.readAsset(rnRegistryFile, &registry); err != nil {
		s.loadErr = err
		return
	}

	classifier, err := rules.NewClassifier(ruleSet)
	if err != nil {
		s.loadErr = err
		return
	}

	s.rules = ruleSet
	s.classifier = classifier
	s.catalog = taxonomy.New(entries, brands, registry)
}

func (s *Store) readAsset(name string, target any) error {
	if s.dir != "" {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			if jsonErr := json.Unmarshal(data, target); jsonErr != nil {
				return fmt.Errorf("parse %s: %w", path, jsonErr)
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	data, err := defaultsFS.ReadFile("defaults/" + name)
	if err != nil {
		return fmt.Errorf("read embedded %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse embedded %s: %w", name, err)
	}
	return nil
}

// Rules returns the keyword rule set.
func (s *Store) Rules() ([]rules.Rule, error) {
	s.once.Do(s.load)
	return s.rules, s.loadErr
}

// Classifier returns the compiled keyword classifier.
func (s *Store) Classifier() (*rules.Classifier, error) {
	s.once.Do(s.load)
	return s.classifier, s.loadErr
}

// Catalog returns the taxonomy catalog with brand lexicon and RN registry.
func (s *Store) Catalog() (*taxonomy.Catalog, error) {
	s.once.Do(s.load)
	return s.catalog, s.loadErr
}
