package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mypyPattern = `^(?<file>[^:\s]+):(?<line>\d+):(?:(?<col>\d+):)?\s*(?<severity>error|warning|note):\s*(?<message>.*)$`

func TestCompile(t *testing.T) {
	t.Run("valid pattern", func(t *testing.T) {
		m, err := Compile("mypy", mypyPattern)
		require.NoError(t, err)
		assert.Equal(t, "mypy", m.Name())
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := Compile("broken", "(?<unclosed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `matcher "broken"`)
	})

	t.Run("lookahead syntax accepted", func(t *testing.T) {
		_, err := Compile("look", `^(?!ignore)(?<file>\S+): (?<message>.*)$`)
		assert.NoError(t, err)
	})
}

func TestScan(t *testing.T) {
	m, err := Compile("mypy", mypyPattern)
	require.NoError(t, err)

	output := "app/models.py:12:5: error: Incompatible return value type\n" +
		"app/cli.py:40: warning: unused 'type: ignore' comment\n" +
		"Found 2 errors in 2 files (checked 14 source files)\n" +
		"\n"

	diags := m.Scan(output)
	require.Len(t, diags, 2)

	assert.Equal(t, Diagnostic{
		File:     "app/models.py",
		Line:     12,
		Col:      5,
		Severity: "error",
		Message:  "Incompatible return value type",
	}, diags[0])

	assert.Equal(t, Diagnostic{
		File:     "app/cli.py",
		Line:     40,
		Severity: "warning",
		Message:  "unused 'type: ignore' comment",
	}, diags[1])
}

func TestScanNoMatches(t *testing.T) {
	m, err := Compile("mypy", mypyPattern)
	require.NoError(t, err)

	assert.Empty(t, m.Scan("all checks passed\n"))
	assert.Empty(t, m.Scan(""))
}

func TestScanHandlesCRLF(t *testing.T) {
	m, err := Compile("mypy", mypyPattern)
	require.NoError(t, err)

	diags := m.Scan("a.py:1: error: boom\r\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "boom", diags[0].Message)
}

func TestScanFallsBackToLineAsMessage(t *testing.T) {
	m, err := Compile("bare", `^(?<file>\S+\.py)$`)
	require.NoError(t, err)

	diags := m.Scan("broken.py\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "broken.py", diags[0].File)
	assert.Equal(t, "broken.py", diags[0].Message)
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		name string
		diag Diagnostic
		want string
	}{
		{
			name: "full location with severity",
			diag: Diagnostic{File: "a.py", Line: 3, Col: 7, Severity: "error", Message: "boom"},
			want: "a.py:3:7: error: boom",
		},
		{
			name: "line without column",
			diag: Diagnostic{File: "a.py", Line: 3, Severity: "note", Message: "see above"},
			want: "a.py:3: note: see above",
		},
		{
			name: "no severity",
			diag: Diagnostic{File: "a.py", Line: 3, Message: "boom"},
			want: "a.py:3: boom",
		},
		{
			name: "file only",
			diag: Diagnostic{File: "a.py", Message: "boom"},
			want: "a.py: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diag.String())
		})
	}
}
