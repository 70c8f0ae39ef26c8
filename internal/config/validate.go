package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateRender()
}

func (c *Config) validateExport() error {
	switch c.Export.Quality {
	case QualityHigh, QualityBalanced, QualityFast:
	default:
		return fmt.Errorf("export.quality must be one of high, balanced, fast (got %q)", c.Export.Quality)
	}
	if c.Export.Framerate <= 0 || c.Export.Framerate > 240 {
		return fmt.Errorf("export.framerate must be between 0 and 240 (got %g)", c.Export.Framerate)
	}
	if c.Export.TermGraceSeconds <= 0 {
		return errors.New("export.term_grace_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.Workers < 0 {
		return errors.New("render.workers must be >= 0 (zero selects automatically)")
	}
	if c.Render.MaxWorkers <= 0 {
		return errors.New("render.max_workers must be positive")
	}
	if c.Render.WorkerMemoryMB <= 0 {
		return errors.New("render.worker_memory_mb must be positive")
	}
	if c.Render.Workers > c.Render.MaxWorkers {
		return fmt.Errorf("render.workers must not exceed render.max_workers (%d > %d)", c.Render.Workers, c.Render.MaxWorkers)
	}
	return nil
}
