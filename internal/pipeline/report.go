package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/scrumpilot/internal/domain"
	"github.com/mrz1836/scrumpilot/internal/errors"
)

// reportFileMode keeps run reports readable by the owning user only; they
// can contain transcript-derived text.
const reportFileMode = 0o600

// writeReport persists the run summary as a YAML artifact named by run ID.
func writeReport(dir string, summary *domain.BatchSummary) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, "create reports directory")
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "marshal run report")
	}

	path := filepath.Join(dir, fmt.Sprintf("run-%s.yaml", summary.RunID))
	if err := os.WriteFile(path, data, reportFileMode); err != nil {
		return errors.Wrap(err, "write run report")
	}
	return nil
}
