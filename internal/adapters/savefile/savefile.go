package savefile

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Amund211/milestones/internal/domain"
	"gopkg.in/yaml.v3"
)

// rawRecord keeps every scalar as text so a single bad field only drops its own record
type rawRecord struct {
	Definition     string   `yaml:"definition"`
	Body           string   `yaml:"body,omitempty"`
	Value          string   `yaml:"value,omitempty"`
	Time           string   `yaml:"time,omitempty"`
	Contributor    string   `yaml:"contributor,omitempty"`
	ContributorIDs []string `yaml:"contributor_ids,omitempty"`
}

type rawSave struct {
	Achievements []rawRecord `yaml:"achievements"`
}

type Loader struct {
	finder   domain.DefinitionFinder
	homeBody string
	logger   *slog.Logger
}

func NewLoader(finder domain.DefinitionFinder, homeBody string, logger *slog.Logger) *Loader {
	return &Loader{
		finder:   finder,
		homeBody: homeBody,
		logger:   logger,
	}
}

// Parse decodes a save document. Malformed records are dropped and logged; only a
// document that is not valid YAML at all fails.
func (l *Loader) Parse(data []byte) ([]domain.Instance, error) {
	var save rawSave
	if err := yaml.Unmarshal(data, &save); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedRecord, err)
	}

	instances := make([]domain.Instance, 0, len(save.Achievements))
	for i, raw := range save.Achievements {
		logger := l.logger.With("index", i, "definition", raw.Definition)

		record, err := l.toRecord(raw)
		if err != nil {
			logger.Warn("Dropping malformed achievement record", "error", err.Error())
			continue
		}

		instance := domain.FromRecord(l.finder, record)
		if !instance.Valid() {
			logger.Warn("Dropping achievement record for unknown definition")
			continue
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

func (l *Loader) toRecord(raw rawRecord) (domain.Record, error) {
	if raw.Definition == "" {
		return domain.Record{}, fmt.Errorf("%w: missing definition", domain.ErrMalformedRecord)
	}

	value, err := parseNumber(raw.Value)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: value: %w", domain.ErrMalformedRecord, err)
	}
	universalTime, err := parseNumber(raw.Time)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%w: time: %w", domain.ErrMalformedRecord, err)
	}

	body := raw.Body
	if definition, ok := l.finder.Find(raw.Definition); ok && definition.BodySpecific && body == "" {
		body = l.homeBody
	}

	return domain.Record{
		Definition:     raw.Definition,
		Body:           body,
		Value:          value,
		Time:           universalTime,
		Contributor:    raw.Contributor,
		ContributorIDs: raw.ContributorIDs,
	}, nil
}

func parseNumber(text string) (float64, error) {
	if text == "" {
		return 0, nil
	}
	return strconv.ParseFloat(text, 64)
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// Load reads a save file. A missing file is an empty save.
func (l *Loader) Load(path string) ([]domain.Instance, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		l.logger.Info("No save file found, starting empty", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	return l.Parse(data)
}

// Marshal encodes every valid instance
func Marshal(instances []domain.Instance) ([]byte, error) {
	save := rawSave{Achievements: make([]rawRecord, 0, len(instances))}
	for _, instance := range instances {
		record, ok := domain.ToRecord(instance)
		if !ok {
			continue
		}
		save.Achievements = append(save.Achievements, rawRecord{
			Definition:     record.Definition,
			Body:           record.Body,
			Value:          formatNumber(record.Value),
			Time:           formatNumber(record.Time),
			Contributor:    record.Contributor,
			ContributorIDs: record.ContributorIDs,
		})
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&save); err != nil {
		return nil, fmt.Errorf("failed to marshal save: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal save: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the instances through a temp file in the same directory and renames it into place
func Save(path string, instances []domain.Instance) error {
	data, err := Marshal(instances)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace save file: %w", err)
	}
	return nil
}
