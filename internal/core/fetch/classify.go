package fetch

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Classify はクローン時のエラーを FailureKind に分類する
// go-git のセンチネルエラーとネットワークエラーを優先し、残りはメッセージで判定する
func Classify(err error) FailureKind {
	if err == nil {
		return KindNone
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return KindNotFound
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return KindAccessDenied
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetworkError
	}

	return ClassifyMessage(err.Error())
}

// ClassifyMessage はエラーメッセージの部分一致（大文字小文字を区別しない）で分類する
func ClassifyMessage(message string) FailureKind {
	msg := strings.ToLower(message)

	switch {
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"):
		return KindNotFound
	case strings.Contains(msg, "403"), strings.Contains(msg, "forbidden"):
		return KindAccessDenied
	case strings.Contains(msg, "timeout"):
		return KindTimeout
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"):
		return KindNetworkError
	default:
		return KindUnknown
	}
}

// describe は分類ごとの利用者向けメッセージを返す
func describe(kind FailureKind) string {
	switch kind {
	case KindNotFound:
		return "Repository not found or deleted"
	case KindAccessDenied:
		return "Private repository - access denied"
	case KindTimeout:
		return "Clone timeout"
	case KindNetworkError:
		return "Network connection failed"
	case KindInvalidIdentifier:
		return "Invalid repository URL format"
	default:
		return "Git error"
	}
}
