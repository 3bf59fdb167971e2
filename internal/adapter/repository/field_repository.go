package repository

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/wekeepgrowing/semo-upload/internal/domain/entity"
	domainRepo "github.com/wekeepgrowing/semo-upload/internal/domain/repository"
	"gopkg.in/yaml.v3"
)

// fieldSchema 필드 스키마 YAML 파일 구조
type fieldSchema struct {
	Fields []fieldSchemaEntry `yaml:"fields" validate:"dive"`
}

type fieldSchemaEntry struct {
	EntityType  string `yaml:"entity_type" validate:"required"`
	Bundle      string `yaml:"bundle" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	Label       string `yaml:"label"`
	Type        string `yaml:"type" validate:"required"`
	TargetType  string `yaml:"target_type"`
	Cardinality int    `yaml:"cardinality" validate:"min=-1"`
	Required    bool   `yaml:"required"`
	Settings    struct {
		FileExtensions string `yaml:"file_extensions"`
		MaxFilesize    string `yaml:"max_filesize"`
		MaxResolution  string `yaml:"max_resolution"`
		MinResolution  string `yaml:"min_resolution"`
		FileDirectory  string `yaml:"file_directory"`
		URIScheme      string `yaml:"uri_scheme" validate:"omitempty,oneof=public private"`
	} `yaml:"settings"`
}

type fieldRepository struct {
	// "node--article" -> field name -> definition
	definitions map[string]map[string]*entity.FieldDefinition
}

// NewFieldRepositoryFromFile loads field definitions from a YAML schema file
func NewFieldRepositoryFromFile(path string) (domainRepo.FieldRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open field schema: %w", err)
	}
	defer f.Close()
	return NewFieldRepository(f)
}

// NewFieldRepository parses field definitions from YAML
func NewFieldRepository(r io.Reader) (domainRepo.FieldRepository, error) {
	var schema fieldSchema
	if err := yaml.NewDecoder(r).Decode(&schema); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse field schema: %w", err)
	}

	if err := validator.New().Struct(schema); err != nil {
		return nil, fmt.Errorf("invalid field schema: %w", err)
	}

	repo := &fieldRepository{definitions: make(map[string]map[string]*entity.FieldDefinition)}
	for _, e := range schema.Fields {
		key := entity.ResourceTypeName(e.EntityType, e.Bundle)
		if repo.definitions[key] == nil {
			repo.definitions[key] = make(map[string]*entity.FieldDefinition)
		}
		if _, dup := repo.definitions[key][e.Name]; dup {
			return nil, fmt.Errorf("duplicate field %s on %s", e.Name, key)
		}

		cardinality := e.Cardinality
		if cardinality == 0 {
			cardinality = 1
		}
		repo.definitions[key][e.Name] = &entity.FieldDefinition{
			EntityTypeID: e.EntityType,
			Bundle:       e.Bundle,
			Name:         e.Name,
			Label:        e.Label,
			Type:         e.Type,
			TargetType:   e.TargetType,
			Cardinality:  cardinality,
			Required:     e.Required,
			Settings: entity.FileSettings{
				FileExtensions: e.Settings.FileExtensions,
				MaxFilesize:    e.Settings.MaxFilesize,
				MaxResolution:  e.Settings.MaxResolution,
				MinResolution:  e.Settings.MinResolution,
				FileDirectory:  e.Settings.FileDirectory,
				URIScheme:      e.Settings.URIScheme,
			},
		}
	}
	return repo, nil
}

// GetFieldDefinitions returns the field definitions of a bundle, empty if unknown
func (r *fieldRepository) GetFieldDefinitions(_ context.Context, entityTypeID, bundle string) (map[string]*entity.FieldDefinition, error) {
	defs, ok := r.definitions[entity.ResourceTypeName(entityTypeID, bundle)]
	if !ok {
		return map[string]*entity.FieldDefinition{}, nil
	}
	return defs, nil
}
