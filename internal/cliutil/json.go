package cliutil

import (
	"encoding/json"
	"os"
)

// Result is the JSON envelope offcli emits when -json is set, trimmed
// from the teacher's
// _examples/TheEntropyCollective-noisefs/pkg/util/json_output.go
// JSONOutput down to the
// success/error/data shape every subcommand needs, without any of the
// altruistic-cache or descriptor-specific result types it also defined.
type Result struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// PrintJSONError writes a failed Result to stdout.
func PrintJSONError(err error) {
	json.NewEncoder(os.Stdout).Encode(Result{Success: false, Error: err.Error()})
}

// PrintJSONSuccess writes a successful Result carrying data to stdout.
func PrintJSONSuccess(data map[string]interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.Encode(Result{Success: true, Data: data})
}
