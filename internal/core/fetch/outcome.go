package fetch

// FailureKind は取得失敗の分類
type FailureKind int

const (
	// KindNone は失敗していないこと（取得成功）を表す
	KindNone FailureKind = iota
	// KindNotFound はリポジトリが存在しない
	KindNotFound
	// KindAccessDenied はアクセスが拒否された（非公開リポジトリなど）
	KindAccessDenied
	// KindTimeout は試行あたりの制限時間を超過した
	KindTimeout
	// KindNetworkError はネットワーク接続に失敗した
	KindNetworkError
	// KindInvalidIdentifier は識別子の形式が不正
	KindInvalidIdentifier
	// KindUnknown は原因を特定できない失敗
	KindUnknown
)

func (k FailureKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindTimeout:
		return "timeout"
	case KindNetworkError:
		return "network_error"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	default:
		return "unknown"
	}
}

// Transient はリトライで回復する見込みのある失敗かどうかを返す
func (k FailureKind) Transient() bool {
	return k == KindTimeout || k == KindNetworkError
}

// Outcome は 1 つの識別子に対する取得結果
// Kind が KindNone の場合のみ LocalPath が有効
type Outcome struct {
	LocalPath string
	Kind      FailureKind
	Message   string
	Attempts  int
}

// Acquired は取得に成功した結果を作成する
func Acquired(localPath string, attempts int) Outcome {
	return Outcome{LocalPath: localPath, Kind: KindNone, Attempts: attempts}
}

// Failed は失敗した結果を作成する
func Failed(kind FailureKind, message string, attempts int) Outcome {
	if kind == KindNone {
		kind = KindUnknown
	}
	return Outcome{Kind: kind, Message: message, Attempts: attempts}
}

// Acquired は取得に成功したかどうかを返す
func (o Outcome) Acquired() bool {
	return o.Kind == KindNone
}
