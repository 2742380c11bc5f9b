package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aosagula/adm/internal/domain"
	"github.com/aosagula/adm/internal/jsondiff"
	"github.com/aosagula/adm/internal/port"
)

// VersioningService keeps the append-only configuration history. Every
// snapshot stores the full content plus a unified diff against the previous
// version of the same entity.
type VersioningService struct {
	versions port.VersionStore
}

// NewVersioningService creates a new versioning service.
func NewVersioningService(versions port.VersionStore) *VersioningService {
	return &VersioningService{versions: versions}
}

// CreateVersionInput carries everything needed to snapshot a configuration.
type CreateVersionInput struct {
	ProjectID         string
	ConfigurationType string
	EntityID          string
	Content           json.RawMessage
	ChangesSummary    string
	CreatedBy         string
}

func validConfigurationType(t string) bool {
	switch t {
	case domain.ConfigTypeProject, domain.ConfigTypeAgent, domain.ConfigTypeTemplate, domain.ConfigTypePlatform:
		return true
	}
	return false
}

// CreateVersion appends the next version for the entity. Version numbers are
// dense per (project, type, entity) starting at 1. A concurrent writer that
// grabs the same number first causes a single re-read and retry; a second
// collision surfaces as ErrVersionConflict.
func (s *VersioningService) CreateVersion(ctx context.Context, in CreateVersionInput) (*domain.ConfigurationVersion, error) {
	if in.ProjectID == "" || in.EntityID == "" {
		return nil, fmt.Errorf("project and entity are required: %w", port.ErrInvalid)
	}
	if !validConfigurationType(in.ConfigurationType) {
		return nil, fmt.Errorf("configuration type %q: %w", in.ConfigurationType, port.ErrInvalid)
	}

	canonical, err := jsondiff.Canonical(in.Content)
	if err != nil {
		return nil, fmt.Errorf("canonicalize content: %w: %v", port.ErrSerialization, err)
	}

	v, err := s.appendVersion(ctx, in, canonical)
	if errors.Is(err, port.ErrVersionConflict) {
		slog.Warn("version number taken, retrying",
			"project", in.ProjectID, "type", in.ConfigurationType, "entity", in.EntityID)
		v, err = s.appendVersion(ctx, in, canonical)
	}
	if err != nil {
		return nil, err
	}
	slog.Info("configuration version created",
		"project", v.ProjectID, "type", v.ConfigurationType, "entity", v.EntityID, "version", v.Version)
	return v, nil
}

func (s *VersioningService) appendVersion(ctx context.Context, in CreateVersionInput, canonical string) (*domain.ConfigurationVersion, error) {
	latest, err := s.versions.LatestVersion(ctx, in.ProjectID, in.ConfigurationType, in.EntityID)
	if err != nil {
		return nil, fmt.Errorf("read latest version: %w", err)
	}

	next := 1
	diff := ""
	if latest != nil {
		next = latest.Version + 1
		previous, err := jsondiff.Canonical(latest.Content)
		if err != nil {
			return nil, fmt.Errorf("canonicalize previous version: %w: %v", port.ErrSerialization, err)
		}
		diff, err = jsondiff.Unified("config", previous, canonical)
		if err != nil {
			return nil, fmt.Errorf("diff versions: %w", err)
		}
	}

	return s.versions.InsertVersion(ctx, &domain.ConfigurationVersion{
		ProjectID:         in.ProjectID,
		ConfigurationType: in.ConfigurationType,
		EntityID:          in.EntityID,
		Version:           next,
		Content:           json.RawMessage(canonical),
		Diff:              diff,
		ChangesSummary:    in.ChangesSummary,
		CreatedBy:         in.CreatedBy,
	})
}

// GetVersionHistory returns a project's versions newest-first. An empty
// entityID returns history across all entities in the project.
func (s *VersioningService) GetVersionHistory(ctx context.Context, projectID, entityID string) ([]domain.ConfigurationVersion, error) {
	return s.versions.ListVersions(ctx, projectID, entityID)
}

// GetVersion returns a single version by ID.
func (s *VersioningService) GetVersion(ctx context.Context, id string) (*domain.ConfigurationVersion, error) {
	return s.versions.GetVersion(ctx, id)
}

// VersionComparison is the result of diffing two stored versions.
type VersionComparison struct {
	Version1 *domain.ConfigurationVersion `json:"version1"`
	Version2 *domain.ConfigurationVersion `json:"version2"`
	Diff     string                       `json:"diff"`
}

// CompareVersions diffs two versions in the order given. Swapping the
// arguments inverts the diff; the versions may belong to different entities.
func (s *VersioningService) CompareVersions(ctx context.Context, version1ID, version2ID string) (*VersionComparison, error) {
	v1, err := s.versions.GetVersion(ctx, version1ID)
	if err != nil {
		return nil, fmt.Errorf("load version %s: %w", version1ID, err)
	}
	v2, err := s.versions.GetVersion(ctx, version2ID)
	if err != nil {
		return nil, fmt.Errorf("load version %s: %w", version2ID, err)
	}

	left, err := jsondiff.Canonical(v1.Content)
	if err != nil {
		return nil, fmt.Errorf("canonicalize version %d: %w: %v", v1.Version, port.ErrSerialization, err)
	}
	right, err := jsondiff.Canonical(v2.Content)
	if err != nil {
		return nil, fmt.Errorf("canonicalize version %d: %w: %v", v2.Version, port.ErrSerialization, err)
	}
	diff, err := jsondiff.Unified("config", left, right)
	if err != nil {
		return nil, fmt.Errorf("diff versions: %w", err)
	}

	return &VersionComparison{Version1: v1, Version2: v2, Diff: diff}, nil
}

// RestoreVersion re-applies an old version's content by appending a new
// version with it. History is never rewritten; a restore is just the next
// version with a restore summary.
func (s *VersioningService) RestoreVersion(ctx context.Context, versionID, restoredBy string) (*domain.ConfigurationVersion, error) {
	v, err := s.versions.GetVersion(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("load version %s: %w", versionID, err)
	}
	return s.CreateVersion(ctx, CreateVersionInput{
		ProjectID:         v.ProjectID,
		ConfigurationType: v.ConfigurationType,
		EntityID:          v.EntityID,
		Content:           v.Content,
		ChangesSummary:    fmt.Sprintf("Restored to version %d", v.Version),
		CreatedBy:         restoredBy,
	})
}
