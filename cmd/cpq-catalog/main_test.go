package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "Should print counts for a valid catalog",
			args:       []string{"../../internal/catalog/testdata/valid"},
			wantCode:   0,
			wantStdout: []string{"is valid", "categories:   3", "options:      5", "rules:        6 (5 active)", "settings:     1"},
		},
		{
			name:     "Should list every integrity problem",
			args:     []string{"../../internal/catalog/testdata/dangling"},
			wantCode: 1,
			wantStderr: []string{
				"- Duplicate category id 'cpu'",
				"- Option 'gpu-x' references unknown category 'gpu'",
			},
		},
		{
			name:       "Should report a malformed record",
			args:       []string{"../../internal/catalog/testdata/malformed"},
			wantCode:   1,
			wantStderr: []string{"rules.jsonl:2"},
		},
		{
			name:       "Should print usage without a directory",
			args:       nil,
			wantCode:   2,
			wantStderr: []string{"usage: cpq-catalog <data-dir>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.wantCode, code)
			for _, s := range tt.wantStdout {
				assert.Contains(t, stdout.String(), s)
			}
			for _, s := range tt.wantStderr {
				assert.Contains(t, stderr.String(), s)
			}
		})
	}
}
