package interfaces

import "time"

// Clock 时间源接口，调度器通过注入获取"现在"，测试时可替换为固定时间
type Clock interface {
	Now() time.Time
}

// RealClock 真实系统时间
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock 固定时间（测试用，模拟"现在是周一早上09:00:30"之类的场景）
type FixedClock struct {
	T time.Time
}

func (f FixedClock) Now() time.Time { return f.T }
