package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

func newTestBreaker() *CircuitBreaker {
	return New("test", Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     50 * time.Millisecond,
		ReadyToTrip: func(counts Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// TestCircuitBreaker_ClosedState 测试关闭状态（正常）
func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := newTestBreaker()

	// 执行成功请求
	for i := 0; i < 10; i++ {
		err := cb.Execute(func() error {
			return nil
		})
		if err != nil {
			t.Fatalf("期望成功，实际失败: %v", err)
		}
	}

	// 验证状态
	if cb.State() != StateClosed {
		t.Errorf("期望状态为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_OpenState 测试打开状态（熔断）
func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := newTestBreaker()

	// 连续失败5次触发熔断
	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("cache unavailable")
		})
	}

	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 熔断打开后请求直接被拒绝，不执行fn
	executed := false
	err := cb.Execute(func() error {
		executed = true
		return nil
	})
	if !errors.Is(err, ErrOpenState) {
		t.Errorf("期望ErrOpenState，实际%v", err)
	}
	if executed {
		t.Error("熔断打开时不应执行请求")
	}
}

// TestCircuitBreaker_HalfOpenRecovery 测试半开状态恢复
func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("cache unavailable")
		})
	}
	if cb.State() != StateOpen {
		t.Fatalf("期望状态为OPEN，实际%s", cb.State())
	}

	// 等待Timeout后进入半开状态，成功MaxRequests次后恢复关闭
	time.Sleep(60 * time.Millisecond)

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error {
			return nil
		})
		if err != nil {
			t.Fatalf("半开状态下探测请求应放行: %v", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("期望恢复为CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenFailure 测试半开状态失败后重新熔断
func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("cache unavailable")
		})
	}

	time.Sleep(60 * time.Millisecond)

	// 半开状态下第一次探测失败，立即回到打开状态
	_ = cb.Execute(func() error {
		return errors.New("still unavailable")
	})

	if cb.State() != StateOpen {
		t.Errorf("期望重新熔断为OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenTooManyRequests 测试半开状态限流
func TestCircuitBreaker_HalfOpenTooManyRequests(t *testing.T) {
	cb := newTestBreaker()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("cache unavailable")
		})
	}

	time.Sleep(60 * time.Millisecond)

	// 占满MaxRequests个在途探测名额（fn不返回则请求一直在途）
	block := make(chan struct{})
	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			_ = cb.Execute(func() error {
				<-block
				return nil
			})
			done <- struct{}{}
		}()
	}
	// 等待探测请求进入在途状态
	time.Sleep(20 * time.Millisecond)

	err := cb.Execute(func() error {
		return nil
	})
	if !errors.Is(err, ErrTooManyRequests) {
		t.Errorf("期望ErrTooManyRequests，实际%v", err)
	}

	close(block)
	for i := 0; i < 3; i++ {
		<-done
	}
}

// TestCircuitBreaker_StateChangeCallback 测试状态变更回调
func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := newTestBreaker()

	var transitions []State
	cb.OnStateChange(func(name string, from, to State) {
		if name != "test" {
			t.Errorf("期望名称test，实际%s", name)
		}
		transitions = append(transitions, to)
	})

	for i := 0; i < 5; i++ {
		_ = cb.Execute(func() error {
			return errors.New("cache unavailable")
		})
	}

	if len(transitions) != 1 || transitions[0] != StateOpen {
		t.Errorf("期望一次CLOSED→OPEN变更，实际%v", transitions)
	}
}

// TestCounts_FailureRate 测试失败率计算
func TestCounts_FailureRate(t *testing.T) {
	c := Counts{Requests: 10, TotalFailures: 3}
	if got := c.FailureRate(); got != 0.3 {
		t.Errorf("期望失败率0.3，实际%f", got)
	}

	empty := Counts{}
	if got := empty.FailureRate(); got != 0 {
		t.Errorf("无请求时失败率应为0，实际%f", got)
	}
}
