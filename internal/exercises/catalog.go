// Package exercises serves the riding exercise catalog loaded from a JSON
// file. Lookups support filtering by category and picking a random entry.
package exercises

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"

	"github.com/equitrack/equitrack/internal/conf"
	"github.com/equitrack/equitrack/internal/errors"
	"github.com/equitrack/equitrack/internal/logger"
)

// ErrNoExercises is returned when a random draw has nothing to pick from.
var ErrNoExercises = errors.New("no exercise found")

// Exercise is one catalog entry.
type Exercise struct {
	ID          int    `json:"id"`
	Name        string `json:"nom"`
	Category    string `json:"categorie"`
	Description string `json:"description"`
	Duration    int    `json:"duree"` // minutes
}

// Catalog holds the loaded exercise list.
type Catalog struct {
	mu        sync.RWMutex
	file      string
	exercises []Exercise
	log       logger.Logger
}

// NewCatalog loads the exercise catalog from the configured file.
func NewCatalog(settings conf.ExerciseSettings, log logger.Logger) (*Catalog, error) {
	if log == nil {
		log = logger.Silent()
	}
	c := &Catalog{file: settings.File, log: log}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file, replacing the in-memory list on success.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.file)
	if err != nil {
		return errors.Newf("failed to read exercise catalog: %v", err).
			Component("exercises").
			Category(errors.CategoryConfiguration).
			Context("file", c.file).
			Build()
	}

	var exercises []Exercise
	if err := json.Unmarshal(data, &exercises); err != nil {
		return errors.Newf("failed to parse exercise catalog: %v", err).
			Component("exercises").
			Category(errors.CategoryConfiguration).
			Context("file", c.file).
			Build()
	}

	c.mu.Lock()
	c.exercises = exercises
	c.mu.Unlock()

	c.log.Info("exercise catalog loaded",
		logger.String("file", c.file),
		logger.Int("count", len(exercises)))
	return nil
}

// All returns every exercise in the catalog.
func (c *Catalog) All() []Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Exercise, len(c.exercises))
	copy(out, c.exercises)
	return out
}

// ByCategory returns the exercises matching the given category. The result
// is never nil so an empty match still serializes as a JSON array.
func (c *Catalog) ByCategory(category string) []Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Exercise, 0)
	for _, ex := range c.exercises {
		if ex.Category == category {
			out = append(out, ex)
		}
	}
	return out
}

// Random picks one exercise at random, restricted to a category when one is
// given. Returns ErrNoExercises when the pool is empty.
func (c *Catalog) Random(category string) (Exercise, error) {
	pool := c.All()
	if category != "" {
		pool = c.ByCategory(category)
	}
	if len(pool) == 0 {
		return Exercise{}, fmt.Errorf("%w: category %q", ErrNoExercises, category)
	}
	return pool[rand.Intn(len(pool))], nil
}

// Categories returns the distinct categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, ex := range c.exercises {
		if !seen[ex.Category] {
			seen[ex.Category] = true
			out = append(out, ex.Category)
		}
	}
	sort.Strings(out)
	return out
}
