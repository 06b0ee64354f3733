package campai

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/les-ev/membersync/internal/model"
)

// WriteSnapshot stores a member snapshot as JSON, mainly to iterate on
// sync behaviour without hammering the API.
func WriteSnapshot(path string, members []model.Member) error {
	data, err := json.MarshalIndent(members, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads a member snapshot previously written by WriteSnapshot.
func ReadSnapshot(path string) ([]model.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var members []model.Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return members, nil
}
