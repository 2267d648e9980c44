package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/tally/pkg/analytics"
)

// ExportSchedule lists the scheduled report exports
type ExportSchedule struct {
	Exports []ExportJob `yaml:"exports"`
}

// ExportJob renders reports for a set of users on a cron schedule
type ExportJob struct {
	Name     string             `yaml:"name"`
	Schedule string             `yaml:"schedule"` // Standard 5 field cron expression
	UserIDs  []int64            `yaml:"users"`
	Period   analytics.Period   `yaml:"period"`
	Interval analytics.Interval `yaml:"interval"`
}

// LoadExportSchedule reads and validates an export schedule file
func LoadExportSchedule(path string) (*ExportSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export schedule: %w", err)
	}
	return ParseExportSchedule(data)
}

// ParseExportSchedule parses and validates an export schedule document
func ParseExportSchedule(data []byte) (*ExportSchedule, error) {
	var schedule ExportSchedule
	if err := yaml.Unmarshal(data, &schedule); err != nil {
		return nil, fmt.Errorf("failed to parse export schedule: %w", err)
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Validate checks every job's schedule, tokens and subjects
func (s *ExportSchedule) Validate() error {
	names := make(map[string]bool, len(s.Exports))
	for i, job := range s.Exports {
		if job.Name == "" {
			return fmt.Errorf("export %d: name is required", i)
		}
		if names[job.Name] {
			return fmt.Errorf("export %s: duplicate name", job.Name)
		}
		names[job.Name] = true

		if _, err := cron.ParseStandard(job.Schedule); err != nil {
			return fmt.Errorf("export %s: invalid schedule %q: %w", job.Name, job.Schedule, err)
		}
		if err := analytics.ValidatePeriod(job.Period); err != nil {
			return fmt.Errorf("export %s: %w", job.Name, err)
		}
		if err := analytics.ValidateInterval(job.Interval); err != nil {
			return fmt.Errorf("export %s: %w", job.Name, err)
		}
		if len(job.UserIDs) == 0 {
			return fmt.Errorf("export %s: at least one user is required", job.Name)
		}
		for _, id := range job.UserIDs {
			if id <= 0 {
				return fmt.Errorf("export %s: invalid user id %d", job.Name, id)
			}
		}
	}
	return nil
}
