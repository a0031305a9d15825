// Package sets lets users keep small named lists of strings.
package sets

import (
	"context"
	"fmt"
	"strings"

	"github.com/pscheid92/nano/internal/domain"
	apperrors "github.com/pscheid92/nano/internal/errors"
)

const (
	MaxElements     = 10
	MissingName     = "Couldn't find name"
	FailureMessage  = "An error occured: no name found"
	maxListNameRune = 100
)

type Service struct {
	store domain.SetStore
}

func NewService(store domain.SetStore) *Service {
	return &Service{store: store}
}

func (s *Service) Add(ctx context.Context, owner domain.User, name string, elements []string) (string, error) {
	name, elements, err := normalize(name, elements)
	if err != nil {
		return "", err
	}
	n, err := s.store.Add(ctx, owner.ID, name, elements)
	if err != nil {
		return "", apperrors.InternalError("failed to add elements", err).WithField("list", name)
	}
	return fmt.Sprintf("Successfully added %d elements", n), nil
}

func (s *Service) Remove(ctx context.Context, owner domain.User, name string, elements []string) (string, error) {
	name, elements, err := normalize(name, elements)
	if err != nil {
		return "", err
	}
	n, err := s.store.Remove(ctx, owner.ID, name, elements)
	if err != nil {
		return "", apperrors.InternalError("failed to remove elements", err).WithField("list", name)
	}
	return fmt.Sprintf("Successfully removed %d elements", n), nil
}

// List shows owner's set called name, one element per line.
func (s *Service) List(ctx context.Context, owner domain.User, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ValidationError(MissingName)
	}
	members, err := s.store.Members(ctx, owner.ID, name)
	if err != nil {
		return "", apperrors.InternalError("failed to read list", err).WithField("list", name)
	}

	lines := make([]string, 0, len(members)+1)
	lines = append(lines, name+" values:")
	for _, m := range members {
		lines = append(lines, "- "+m)
	}
	return strings.Join(lines, "\n"), nil
}

func normalize(name string, elements []string) (string, []string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperrors.ValidationError(MissingName)
	}
	if len([]rune(name)) > maxListNameRune {
		return "", nil, apperrors.ValidationError("List names can be at most 100 characters")
	}

	out := make([]string, 0, len(elements))
	for _, e := range elements {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	if len(out) > MaxElements {
		out = out[:MaxElements]
	}
	return name, out, nil
}
