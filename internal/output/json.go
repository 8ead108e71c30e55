package output

import (
	"encoding/json"

	"github.com/jhandl/finance/internal/domain"
)

// JSONFormatter renders the full run as indented JSON
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(run *domain.RunResult) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
