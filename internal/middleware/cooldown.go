package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 操作冷却限流器
// 防止用户频繁触发 AI 定级等高成本操作
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &CooldownLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *CooldownLimiter {
	return globalLimiter
}

// ==================== 冷却检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行，允许时立即记一次执行
// key: 限流键，如 "user:123:ai_grade"
// interval: 冷却间隔
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{
		Allowed:    true,
		RetryAfter: 0,
	}
}

// CheckOnly 仅检查，不更新时间
func (r *CooldownLimiter) CheckOnly(key string, interval time.Duration) CheckResult {
	actual, ok := r.locks.Load(key)
	if !ok {
		return CheckResult{Allowed: true}
	}

	entry := actual.(*lockEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	elapsed := time.Since(entry.lastTime)
	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	return CheckResult{Allowed: true}
}

// Reset 重置指定 key 的冷却
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// OpType 受冷却保护的操作类型
type OpType string

const (
	OpTypeAIGrade OpType = "ai_grade"
	OpTypePublish OpType = "publish"
)

// UserOpKey 生成用户级操作 Key
func UserOpKey(userID int64, op OpType) string {
	return fmt.Sprintf("user:%d:%s", userID, op)
}

// ==================== 默认冷却间隔 ====================

// DefaultIntervals 默认冷却间隔配置
var DefaultIntervals = map[OpType]time.Duration{
	OpTypeAIGrade: 30 * time.Second, // AI 定级调用成本高
	OpTypePublish: 3 * time.Second,  // 防连点
}

// GetInterval 获取操作类型的默认间隔
func GetInterval(op OpType) time.Duration {
	if interval, ok := DefaultIntervals[op]; ok {
		return interval
	}
	return 10 * time.Second
}
