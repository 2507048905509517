package export

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/laneflow/pkg/layout"
)

// ToJSON dumps the layout model as indented JSON for programmatic
// consumers; the shape matches the model's json tags exactly.
func ToJSON(m *layout.Model) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout: %w", err)
	}
	return append(data, '\n'), nil
}
