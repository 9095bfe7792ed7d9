package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "week3.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRecords(t *testing.T) {
	path := writeInput(t, strings.Join([]string{
		"ID,Date,Subject,URL",
		"1,2025-04-01,HW1,https://github.com/alice/hw1",
		"2,2025-04-01,HW1,",
		"3,2025-04-02,HW1, git@github.com:bob/hw1.git ",
	}, "\n"))

	records, err := ReadRecords(path)
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, Record{ID: "1", Date: "2025-04-01", Subject: "HW1", URL: "https://github.com/alice/hw1", Row: 2}, records[0])
	assert.Equal(t, "git@github.com:bob/hw1.git", records[1].URL)
	assert.Equal(t, 4, records[1].Row)
	assert.Equal(t, []string{"https://github.com/alice/hw1", "git@github.com:bob/hw1.git"}, URLs(records))
}

func TestReadRecords_HeaderVariants(t *testing.T) {
	path := writeInput(t, "\ufeffurl , subject\nhttps://github.com/alice/hw1,HW2\n")

	records, err := ReadRecords(path)
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, "HW2", records[0].Subject)
	assert.Empty(t, records[0].ID)
}

func TestReadRecords_StatusGate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		want    int
	}{
		{
			name:    "全行ready",
			content: "URL,Status\nhttps://github.com/a/b,ready\nhttps://github.com/c/d,Ready\n",
			want:    2,
		},
		{
			name:    "未完了の行がある",
			content: "URL,Status\nhttps://github.com/a/b,ready\nhttps://github.com/c/d,pending\n",
			wantErr: ErrNotReady,
		},
		{
			name:    "Status空欄",
			content: "URL,Status\nhttps://github.com/a/b,\n",
			wantErr: ErrNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ReadRecords(writeInput(t, tt.content))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.want)
		})
	}
}

func TestReadRecords_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "空ファイル", content: "", wantErr: ErrInvalidFormat},
		{name: "URL列なし", content: "ID,Repository\n1,https://github.com/a/b\n", wantErr: ErrInvalidFormat},
		{name: "URLが空の行のみ", content: "ID,URL\n1,\n2,  \n", wantErr: ErrNoRecords},
		{name: "ヘッダーのみ", content: "URL\n", wantErr: ErrNoRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRecords(writeInput(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReadRecords_NotFound(t *testing.T) {
	_, err := ReadRecords(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorIs(t, err, ErrInputNotFound)
}
