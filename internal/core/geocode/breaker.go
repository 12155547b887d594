package geocode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"places-api/internal/domain"
)

var breakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{Name: "geocode_circuit_breaker_state", Help: "0=closed 1=half-open 2=open"},
	[]string{"name"},
)

func init() { prometheus.MustRegister(breakerState) }

type BreakerOptions struct {
	Name        string
	MaxRequests uint32        // half-open 状态允许的探测请求数
	Interval    time.Duration // closed 状态计数重置周期
	Timeout     time.Duration // open -> half-open 等待时间
	MinRequests uint32
	FailureRate float64
}

func (o *BreakerOptions) defaults() {
	if o.Name == "" {
		o.Name = "geocoder"
	}
	if o.MaxRequests == 0 {
		o.MaxRequests = 1
	}
	if o.Interval == 0 {
		o.Interval = time.Minute
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MinRequests == 0 {
		o.MinRequests = 5
	}
	if o.FailureRate == 0 {
		o.FailureRate = 0.6
	}
}

// Breaker 熔断包装；"地址无结果" 属于正常业务结果，不计入失败
type Breaker struct {
	next Geocoder
	cb   *gobreaker.CircuitBreaker[domain.Location]
	name string
}

func NewBreaker(next Geocoder, o BreakerOptions, l *zap.Logger) *Breaker {
	o.defaults()
	if l == nil {
		l = zap.NewNop()
	}
	breakerState.WithLabelValues(o.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[domain.Location](gobreaker.Settings{
		Name:        o.Name,
		MaxRequests: o.MaxRequests,
		Interval:    o.Interval,
		Timeout:     o.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.Requests < o.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) >= o.FailureRate
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("geocoder breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || domain.IsKind(err, domain.KindGeocoding) || errors.Is(err, context.Canceled)
		},
	})
	return &Breaker{next: next, cb: cb, name: o.Name}
}

func (b *Breaker) Lookup(ctx context.Context, address string) (domain.Location, error) {
	loc, err := b.cb.Execute(func() (domain.Location, error) {
		return b.next.Lookup(ctx, address)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.Location{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return loc, err
}

// State 当前熔断状态
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
