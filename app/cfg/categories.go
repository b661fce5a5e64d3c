package cfg

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// Vocabulary resolves the configured category vocabulary. The BOOK_CATEGORIES
// environment value takes precedence; otherwise the YAML categories file is
// read. Entries are returned in sort order with duplicates removed.
func (c *Cfg) Vocabulary() ([]Category, error) {
	if c.Categories != "" {
		return parseCategoryList(c.Categories), nil
	}

	if c.CategoriesFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(c.CategoriesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	categories := dedupeCategories(file.Categories)
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Sort < categories[j].Sort
	})

	return categories, nil
}

// VocabularyNames returns just the category names, in sort order.
func (c *Cfg) VocabularyNames() ([]string, error) {
	categories, err := c.Vocabulary()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}
	return names, nil
}

func parseCategoryList(list string) []Category {
	var categories []Category
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		categories = append(categories, Category{Name: name, Sort: len(categories)})
	}
	return dedupeCategories(categories)
}

func dedupeCategories(categories []Category) []Category {
	seen := make(map[string]bool, len(categories))
	result := make([]Category, 0, len(categories))
	for _, category := range categories {
		if category.Name == "" || seen[category.Name] {
			continue
		}
		seen[category.Name] = true
		result = append(result, category)
	}
	return result
}
