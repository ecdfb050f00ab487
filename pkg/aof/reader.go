package aof

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/kass/spatio/pkg/geometry"
)

// RecoveryError records one log line that could not be decoded,
// validated, or (for INSERT) whose GeoJSON failed to parse.
type RecoveryError struct {
	Line   int
	Raw    string
	Reason string
}

// RecoveryResult is the outcome of replaying a log file.
type RecoveryResult struct {
	Commands []Command
	Errors   []RecoveryError
}

// SuccessRate returns the fraction of lines that decoded cleanly. An
// empty file reports a perfect rate.
func (r RecoveryResult) SuccessRate() float64 {
	total := len(r.Commands) + len(r.Errors)
	if total == 0 {
		return 1
	}
	return float64(len(r.Commands)) / float64(total)
}

// Recover reads path line by line, tolerating corrupt lines: each is
// recorded as a RecoveryError rather than aborting recovery, per
// spec.md §4.4. A missing file is reported as an empty, successful
// recovery.
func Recover(path string) (RecoveryResult, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return RecoveryResult{}, nil
	}
	if err != nil {
		return RecoveryResult{}, err
	}
	defer f.Close()

	var result RecoveryResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		var cmd Command
		if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
			result.Errors = append(result.Errors, RecoveryError{Line: lineNo, Raw: raw, Reason: err.Error()})
			continue
		}
		if err := cmd.Validate(); err != nil {
			result.Errors = append(result.Errors, RecoveryError{Line: lineNo, Raw: raw, Reason: err.Error()})
			continue
		}
		if cmd.Cmd == KindInsert {
			if _, err := geometry.ParseGeoJSON([]byte(cmd.GeoJSON)); err != nil {
				result.Errors = append(result.Errors, RecoveryError{Line: lineNo, Raw: raw, Reason: err.Error()})
				continue
			}
		}
		result.Commands = append(result.Commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		return result, err
	}
	return result, nil
}
