// Package category holds categories in an arena indexed by ID. Parents are
// referenced by ID only, and a category may never become its own ancestor.
package category

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/rocjay1/rm-finance/internal/models"
)

var (
	ErrCycle         = errors.New("category cycle")
	ErrUnknownParent = errors.New("unknown parent category")
)

// Tree is an arena of categories keyed by ID.
type Tree struct {
	nodes    map[string]models.Category
	children map[string][]string
}

// NewTree indexes categories. Dangling parent references are kept as given;
// they only matter when a write is validated.
func NewTree(categories []models.Category) *Tree {
	t := &Tree{
		nodes:    make(map[string]models.Category, len(categories)),
		children: make(map[string][]string),
	}
	for _, c := range categories {
		t.nodes[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID != "" {
			t.children[c.ParentID] = append(t.children[c.ParentID], c.ID)
		}
	}
	for _, ids := range t.children {
		sort.Strings(ids)
	}
	return t
}

// Get returns the category with id.
func (t *Tree) Get(id string) (models.Category, bool) {
	c, ok := t.nodes[id]
	return c, ok
}

// Children returns the direct children of id, ordered by ID.
func (t *Tree) Children(id string) []models.Category {
	var out []models.Category
	for _, cid := range t.children[id] {
		out = append(out, t.nodes[cid])
	}
	return out
}

// Roots returns the categories with no parent, ordered by ID.
func (t *Tree) Roots() []models.Category {
	var out []models.Category
	for _, c := range t.nodes {
		if c.ParentID == "" {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Ancestors walks from id's parent up to the root. It stops if it meets a
// category twice, so a corrupted arena cannot loop forever.
func (t *Tree) Ancestors(id string) []models.Category {
	var out []models.Category
	seen := map[string]bool{id: true}
	cur, ok := t.nodes[id]
	for ok && cur.ParentID != "" && !seen[cur.ParentID] {
		seen[cur.ParentID] = true
		cur, ok = t.nodes[cur.ParentID]
		if ok {
			out = append(out, cur)
		}
	}
	return out
}

// ValidateParent checks that giving id the parent parentID keeps the arena
// acyclic. An empty parentID is always valid.
func (t *Tree) ValidateParent(id, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == id {
		return fmt.Errorf("%w: category %s cannot be its own parent", ErrCycle, id)
	}
	if _, ok := t.nodes[parentID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
	}
	for _, a := range t.Ancestors(parentID) {
		if a.ID == id {
			return fmt.Errorf("%w: %s is a descendant of %s", ErrCycle, parentID, id)
		}
	}
	return nil
}

// Store is the persistence the category service needs.
type Store interface {
	ListCategories(ctx context.Context, ownerID string) ([]models.Category, error)
	SaveCategory(ctx context.Context, c models.Category) error
}

// Service is the category write path.
type Service struct {
	store Store
}

// NewService creates a category service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Save creates or replaces c after checking its type and that its parent
// keeps the owner's categories acyclic.
func (s *Service) Save(ctx context.Context, c models.Category) (models.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if !c.Type.Valid() {
		return models.Category{}, fmt.Errorf("%w: category type %q", models.ErrInvalidType, c.Type)
	}

	existing, err := s.store.ListCategories(ctx, c.OwnerID)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to list categories: %w", err)
	}
	if err := NewTree(existing).ValidateParent(c.ID, c.ParentID); err != nil {
		return models.Category{}, err
	}

	if err := s.store.SaveCategory(ctx, c); err != nil {
		return models.Category{}, fmt.Errorf("failed to save category: %w", err)
	}
	slog.Info("category saved", "category_id", c.ID, "parent_id", c.ParentID)
	return c, nil
}

// Tree loads the owner's categories into an arena.
func (s *Service) Tree(ctx context.Context, ownerID string) (*Tree, error) {
	all, err := s.store.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return NewTree(all), nil
}
