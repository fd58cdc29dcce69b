// Package circuitbreaker 实现熔断器模式（Circuit Breaker Pattern）
//
// 熔断器核心思想：
// 1. 统计对下游（如OpenLibrary搜索接口）调用的失败情况
// 2. 失败达到阈值时打开熔断器，后续调用立即失败
// 3. 超时后进入半开状态，放少量请求探测下游是否恢复
//
// 状态转换：CLOSED → OPEN → HALF_OPEN → CLOSED（探测成功）/ OPEN（探测失败）
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/xiebiao/bookcatalog/pkg/metrics"
)

// State 熔断器状态
type State int

const (
	// StateClosed 关闭状态（正常），统计失败次数，达到阈值时转为OPEN
	StateClosed State = iota

	// StateOpen 打开状态（熔断），所有请求快速失败，timeout后转为HALF_OPEN
	StateOpen

	// StateHalfOpen 半开状态（探测），允许MaxRequests个请求通过
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// MaxRequests 半开状态下允许的最大请求数
	MaxRequests uint32

	// Interval 关闭状态下的统计窗口，过期后清零统计；0表示不清零
	Interval time.Duration

	// Timeout OPEN状态持续时间，过后转为HALF_OPEN
	Timeout time.Duration

	// ReadyToTrip 根据当前统计判断是否应该打开熔断器
	// 为nil时使用连续失败5次的默认策略
	ReadyToTrip func(counts Counts) bool

	// IsSuccessful 判断一次调用结果是否计为成功
	// 为nil时只有err == nil计为成功。
	// 调用方可以把"下游明确拒绝"（如4xx）视为成功，避免误熔断。
	IsSuccessful func(err error) bool
}

// DefaultConfig 默认配置：连续失败5次熔断，30秒后半开
func DefaultConfig() Config {
	return Config{
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	}
}

// Counts 统计数据
type Counts struct {
	Requests             uint32 // 总请求数
	TotalSuccesses       uint32 // 总成功数
	TotalFailures        uint32 // 总失败数
	ConsecutiveSuccesses uint32 // 连续成功数
	ConsecutiveFailures  uint32 // 连续失败数
}

// FailureRate 失败率
func (c *Counts) FailureRate() float64 {
	if c.Requests == 0 {
		return 0
	}
	return float64(c.TotalFailures) / float64(c.Requests)
}

// Reset 清零
func (c *Counts) Reset() {
	*c = Counts{}
}

func (c *Counts) onSuccess() {
	// Requests已在beforeRequest中递增
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) onFailure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// CircuitBreaker 熔断器
type CircuitBreaker struct {
	name          string
	maxRequests   uint32
	interval      time.Duration
	timeout       time.Duration
	readyToTrip   func(counts Counts) bool
	isSuccessful  func(err error) bool
	onStateChange func(name string, from State, to State)

	mu         sync.Mutex
	state      State
	generation uint64    // 每次状态切换递增，丢弃跨代的请求结果
	counts     Counts    // 当前代的统计
	expiry     time.Time // CLOSED: 统计窗口结束；OPEN: 转HALF_OPEN的时间
}

// ErrOpenState 熔断器打开（或半开状态请求数已满）
var ErrOpenState = errors.New("circuit breaker is open")

// NewCircuitBreaker 创建熔断器
func NewCircuitBreaker(name string, config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:          name,
		maxRequests:   config.MaxRequests,
		interval:      config.Interval,
		timeout:       config.Timeout,
		readyToTrip:   config.ReadyToTrip,
		isSuccessful:  config.IsSuccessful,
		onStateChange: func(name string, from State, to State) {},
	}

	if cb.maxRequests == 0 {
		cb.maxRequests = 1
	}
	if cb.timeout <= 0 {
		cb.timeout = 30 * time.Second
	}
	if cb.readyToTrip == nil {
		cb.readyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		}
	}
	if cb.isSuccessful == nil {
		cb.isSuccessful = func(err error) bool { return err == nil }
	}

	cb.setState(StateClosed, time.Now())
	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(StateClosed))
	return cb
}

// Name 熔断器名称
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// SetStateChangeCallback 设置状态变化回调（在持有锁时调用，回调内不要再访问熔断器）
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(name string, from State, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Execute 在熔断器保护下执行req
//
// 熔断器打开时直接返回ErrOpenState，不调用req。
func (cb *CircuitBreaker) Execute(req func() error) error {
	generation, err := cb.beforeRequest()
	if err != nil {
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": cb.name, "result": "rejected"})
		return err
	}

	err = req()

	success := cb.isSuccessful(err)
	cb.afterRequest(generation, success)

	result := "success"
	if !success {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": cb.name, "result": result})

	return err
}

// ExecuteContext 同Execute，调用前检查ctx是否已取消
// 已取消的ctx不计入统计。
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, req func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return cb.Execute(func() error {
		return req(ctx)
	})
}

func (cb *CircuitBreaker) beforeRequest() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	if state == StateOpen {
		return generation, ErrOpenState
	} else if state == StateHalfOpen && cb.counts.Requests >= cb.maxRequests {
		return generation, ErrOpenState
	}

	cb.counts.Requests++
	return generation, nil
}

func (cb *CircuitBreaker) afterRequest(before uint64, success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()
	state, generation := cb.currentState(now)

	// 状态已切换，丢弃旧代的结果
	if generation != before {
		return
	}

	if success {
		cb.onSuccess(state, now)
	} else {
		cb.onFailure(state, now)
	}
}

func (cb *CircuitBreaker) onSuccess(state State, now time.Time) {
	cb.counts.onSuccess()

	if state == StateHalfOpen {
		cb.setState(StateClosed, now)
	}
}

func (cb *CircuitBreaker) onFailure(state State, now time.Time) {
	cb.counts.onFailure()

	switch state {
	case StateClosed:
		if cb.readyToTrip(cb.counts) {
			cb.setState(StateOpen, now)
		}
	case StateHalfOpen:
		cb.setState(StateOpen, now)
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) (State, uint64) {
	switch cb.state {
	case StateClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.counts.Reset()
			cb.expiry = now.Add(cb.interval)
		}
	case StateOpen:
		if cb.expiry.Before(now) {
			cb.setState(StateHalfOpen, now)
		}
	}

	return cb.state, cb.generation
}

func (cb *CircuitBreaker) setState(state State, now time.Time) {
	prev := cb.state
	changed := prev != state

	cb.state = state
	cb.generation++
	cb.counts.Reset()

	switch state {
	case StateClosed:
		if cb.interval > 0 {
			cb.expiry = now.Add(cb.interval)
		} else {
			cb.expiry = time.Time{}
		}
	case StateOpen:
		cb.expiry = now.Add(cb.timeout)
	case StateHalfOpen:
		cb.expiry = time.Time{}
	}

	if !changed {
		return
	}

	metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": cb.name}, float64(state))
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, prev, state)
	}
}

// State 获取当前状态
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state, _ := cb.currentState(time.Now())
	return state
}

// Counts 获取当前统计数据
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}
