// Package toast はプロセス全体で共有する一時通知キューを提供する。
//
// 通知は作成時に一意なIDを割り当てられ、指定時間の経過後に自動で削除される。
// 利用側は一覧を参照するだけで、キューを直接変更しない。
package toast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/storefront/internal/metrics"
	"github.com/hitoshi/storefront/internal/security"
)

// Severity は通知の重要度を表す。
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// DefaultDuration は通知の既定表示時間。
const DefaultDuration = 5 * time.Second

// Toast は通知1件を表す。
type Toast struct {
	ID        string
	Message   string
	Severity  Severity
	Duration  time.Duration
	CreatedAt time.Time
}

// Notifier は通知キューを管理する。
type Notifier struct {
	mu              sync.Mutex
	toasts          []Toast
	timers          map[string]*time.Timer
	observers       []func(Toast)
	defaultDuration time.Duration
	sanitizer       security.MessageSanitizer
	metrics         metrics.Recorder
	logger          *slog.Logger
	closed          bool
}

// Option はNotifierの生成オプション。
type Option func(*Notifier)

// WithDefaultDuration は既定表示時間を変更する。0以下の場合はDefaultDurationのまま。
func WithDefaultDuration(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.defaultDuration = d
		}
	}
}

// WithSanitizer はメッセージのサニタイザを設定する。
func WithSanitizer(s security.MessageSanitizer) Option {
	return func(n *Notifier) { n.sanitizer = s }
}

// WithMetrics はメトリクスの記録先を設定する。
func WithMetrics(rec metrics.Recorder) Option {
	return func(n *Notifier) { n.metrics = rec }
}

// NewNotifier は新しいNotifierを生成する。
func NewNotifier(logger *slog.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		timers:          make(map[string]*time.Timer),
		defaultDuration: DefaultDuration,
		sanitizer:       security.NewMessageSanitizer(),
		metrics:         metrics.Nop{},
		logger:          logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add は通知をキューに追加し、そのIDを返す。
// durationが0の場合は既定表示時間を使い、負の場合は自動削除しない。
func (n *Notifier) Add(message string, severity Severity, duration time.Duration) string {
	if duration == 0 {
		duration = n.defaultDuration
	}

	t := Toast{
		ID:        uuid.NewString(),
		Message:   n.sanitizer.Sanitize(message),
		Severity:  severity,
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return t.ID
	}
	n.toasts = append(n.toasts, t)
	if duration > 0 {
		id := t.ID
		n.timers[id] = time.AfterFunc(duration, func() { n.Remove(id) })
	}
	observers := append(([]func(Toast))(nil), n.observers...)
	n.mu.Unlock()

	for _, fn := range observers {
		fn(t)
	}

	n.metrics.RecordToast(string(severity))
	n.logger.Debug("toast added",
		slog.String("toast_id", t.ID),
		slog.String("severity", string(severity)),
		slog.String("message", t.Message),
	)

	return t.ID
}

// Success は成功通知を追加する。
func (n *Notifier) Success(message string) string {
	return n.Add(message, SeveritySuccess, 0)
}

// Error はエラー通知を追加する。
func (n *Notifier) Error(message string) string {
	return n.Add(message, SeverityError, 0)
}

// Info は情報通知を追加する。
func (n *Notifier) Info(message string) string {
	return n.Add(message, SeverityInfo, 0)
}

// Warning は警告通知を追加する。
func (n *Notifier) Warning(message string) string {
	return n.Add(message, SeverityWarning, 0)
}

// Remove は指定IDの通知を削除する。存在しない場合は何もしない。
func (n *Notifier) Remove(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if timer, ok := n.timers[id]; ok {
		timer.Stop()
		delete(n.timers, id)
	}
	for i, t := range n.toasts {
		if t.ID == id {
			n.toasts = append(n.toasts[:i], n.toasts[i+1:]...)
			return
		}
	}
}

// Clear はすべての通知を削除する。
func (n *Notifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.stopTimersLocked()
	n.toasts = nil
}

// List は現在の通知のコピーを追加順で返す。
func (n *Notifier) List() []Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

// Observe は通知が追加されるたびにfnを呼び出すよう登録する。
// fnはAddを呼んだゴルーチンでロックの外から同期的に呼ばれるため、通知を取りこぼさない。
func (n *Notifier) Observe(fn func(Toast)) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.observers = append(n.observers, fn)
}

// Close は保留中のタイマーを停止し、登録済みのobserverを解除する。
// Close後のAddはキューに追加されない。
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	n.stopTimersLocked()
	n.observers = nil
}

func (n *Notifier) stopTimersLocked() {
	for id, timer := range n.timers {
		timer.Stop()
		delete(n.timers, id)
	}
}
