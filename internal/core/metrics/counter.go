package metrics

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decode はファイル内容を文字列に変換する
// UTF-8 として不正な場合は ISO-8859-1 として解釈する
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode as UTF-8 or ISO-8859-1: %w", err)
	}
	return string(decoded), nil
}

// CountNonBlankLines は前後の空白を除いて空でない行の数を返す
// コメント行も 1 行として数える
func CountNonBlankLines(text string) int {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// readFile はファイルを読み込み、非空行数と内容を返す
func readFile(path string) (int, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read file: %w", err)
	}

	text, err := decode(data)
	if err != nil {
		return 0, nil, err
	}
	return CountNonBlankLines(text), data, nil
}
